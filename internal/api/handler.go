// Package api exposes the runtime registry over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/inkworks/atelier/internal/agent"
	"github.com/inkworks/atelier/internal/runtime"
	"github.com/inkworks/atelier/internal/workflow"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	registry *runtime.Registry
	logger   *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(registry *runtime.Registry, logger *zap.Logger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)

		r.Get("/agents", h.listAgents)
		r.Post("/agents", h.createAgent)
		r.Get("/agents/{id}/state", h.agentState)
		r.Get("/agents/{id}/runs", h.agentRuns)
		r.Post("/agents/{id}/reset", h.resetAgent)
		r.Post("/agents/{id}/tasks", h.executeTask)

		r.Get("/teams", h.listTeams)
		r.Post("/teams", h.createTeam)
		r.Get("/teams/{name}", h.getTeam)

		r.Get("/workflows", h.listWorkflows)
		r.Post("/workflows/{name}/execute", h.executeWorkflow)
		r.Post("/workflows/{name}/team", h.linkTeam)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "studio": "atelier"})
}

func (h *Handler) listAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"agents": h.registry.ListAgents()})
}

func (h *Handler) createAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role is required"})
		return
	}

	a, err := h.registry.CreateAgent(req.ID, req.Role)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runtime.ErrUnknownRole) || errors.Is(err, runtime.ErrNoGenerator) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": a.ID(), "role": a.Role()})
}

func (h *Handler) agentState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, ok := h.registry.AgentState(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "agent not found"})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) agentRuns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	runs, ok := h.registry.AgentRuns(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "agent not found"})
		return
	}
	if runs == nil {
		runs = []agent.TaskRun{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"agent": id, "runs": runs})
}

func (h *Handler) resetAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.registry.ResetAgent(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "agent not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "reset"})
}

func (h *Handler) executeTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Task   agent.Task     `json:"task"`
		Params map[string]any `json:"parameters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Task.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "task id is required"})
		return
	}

	result, err := h.registry.ExecuteTask(r.Context(), id, &req.Task, req.Params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runtime.ErrAgentNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"teams": h.registry.ListTeams()})
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var team runtime.Team
	if err := json.NewDecoder(r.Body).Decode(&team); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if team.Name == "" || len(team.Roles) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and roles are required"})
		return
	}

	members, err := h.registry.CreateTeam(&team)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runtime.ErrUnknownRole) || errors.Is(err, runtime.ErrNoGenerator) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"team":   team,
		"agents": len(members),
	})
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	team, ok := h.registry.Team(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "team not found"})
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *Handler) listWorkflows(w http.ResponseWriter, r *http.Request) {
	scope := workflow.Scope(r.URL.Query().Get("scope"))
	writeJSON(w, http.StatusOK, map[string]any{"workflows": h.registry.ListWorkflows(scope)})
}

func (h *Handler) executeWorkflow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var input map[string]any
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.registry.ExecuteWorkflow(r.Context(), name, input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runtime.ErrWorkflowNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (h *Handler) linkTeam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req struct {
		Team string `json:"team"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Team == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "team is required"})
		return
	}

	if err := h.registry.LinkTeam(name, req.Team); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runtime.ErrWorkflowNotFound) || errors.Is(err, runtime.ErrTeamNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"workflow": name, "team": req.Team})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
