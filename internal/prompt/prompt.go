package prompt

import (
	"fmt"
	"strings"
)

// Substitute resolves {name} and {a.b.c} placeholders in template against ctx.
// Dotted names walk nested map[string]any values. Placeholders that cannot be
// resolved — absent keys, or a dotted path that hits a non-map mid-walk — are
// left verbatim in the output. There is no escape syntax for literal braces.
func Substitute(template string, ctx map[string]any) string {
	var b strings.Builder
	b.Grow(len(template))

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			b.WriteString(rest)
			return b.String()
		}
		close += open

		b.WriteString(rest[:open])
		name := rest[open+1 : close]
		if v, ok := lookup(ctx, name); ok {
			b.WriteString(stringify(v))
		} else {
			b.WriteString(rest[open : close+1])
		}
		rest = rest[close+1:]
	}
}

// Placeholders returns every placeholder name in template, in order of
// appearance. Duplicates are preserved.
func Placeholders(template string) []string {
	var names []string
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return names
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			return names
		}
		close += open
		if name := rest[open+1 : close]; name != "" {
			names = append(names, name)
		}
		rest = rest[close+1:]
	}
}

// Validate reports whether every placeholder in template resolves against
// ctx, and which names are missing. It is advisory only: callers are free to
// proceed with partial context.
func Validate(template string, ctx map[string]any) (bool, []string) {
	var missing []string
	seen := make(map[string]bool)
	for _, name := range Placeholders(template) {
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := lookup(ctx, name); !ok {
			missing = append(missing, name)
		}
	}
	return len(missing) == 0, missing
}

func lookup(ctx map[string]any, name string) (any, bool) {
	if !strings.Contains(name, ".") {
		v, ok := ctx[name]
		return v, ok
	}

	var cur any = ctx
	for _, part := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
