package writer

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkworks/atelier/internal/agent"
)

var questionTemplates = []string{
	"What is the primary purpose of %s?",
	"Which of the following best describes %s?",
	"In %s, what is the most important concept?",
	"How does %s relate to modern applications?",
	"What makes %s unique compared to alternatives?",
	"Which statement about %s is correct?",
	"What is a key characteristic of %s?",
	"When working with %s, what should you prioritize?",
	"Which approach is recommended for %s?",
	"What is the fundamental principle behind %s?",
}

var optionPrefixes = []string{
	"It enables", "It provides", "It allows", "It supports",
	"The key is", "The focus is", "The goal is", "The benefit is",
	"This involves", "This requires", "This includes", "This ensures",
}

var optionSuffixes = []string{
	"efficient processing", "better performance", "improved reliability",
	"enhanced functionality", "greater flexibility", "optimal results",
	"seamless integration", "robust solutions", "scalable architecture",
	"maintainable code", "clear structure", "effective patterns",
}

// QuizGenerator produces a quiz with multiple-choice questions from the
// topic, num_questions, and difficulty context keys.
func QuizGenerator() agent.Generator {
	return agent.GeneratorFunc(func(_ context.Context, _ *agent.Task, _ string, merged map[string]any) (map[string]any, error) {
		topic := stringParam(merged, "topic", "general knowledge")
		numQuestions := intParam(merged, "num_questions", 5)
		difficulty := stringParam(merged, "difficulty", "medium")

		questions := make([]map[string]any, 0, numQuestions)
		for i := 0; i < numQuestions; i++ {
			question := fmt.Sprintf(pick(questionTemplates, topic, i), topic)
			correct := i % 4

			options := make([]string, 4)
			for j := range options {
				prefix := pick(optionPrefixes, topic, i*4+j)
				suffix := pick(optionSuffixes, topic, i*7+j)
				if j == correct {
					options[j] = fmt.Sprintf("%s %s in %s", prefix, suffix, topic)
				} else {
					options[j] = fmt.Sprintf("%s %s", prefix, suffix)
				}
			}

			questions = append(questions, map[string]any{
				"question":       question,
				"options":        options,
				"correct_answer": correct,
				"explanation": fmt.Sprintf(
					"This answer correctly identifies the core aspect of %s that %s.",
					topic, strings.ToLower(options[correct])),
				"difficulty": difficulty,
			})
		}

		return map[string]any{
			"title":         fmt.Sprintf("%s Quiz", titleCase(topic)),
			"description":   fmt.Sprintf("Test your knowledge about %s", topic),
			"questions":     questions,
			"passing_score": intParam(merged, "passing_score", 70),
		}, nil
	})
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
