package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/inkworks/atelier/internal/agent"
	"github.com/inkworks/atelier/internal/runtime"
	"github.com/inkworks/atelier/internal/workflow"
)

// SaveConfig upserts a role configuration.
func (s *Store) SaveConfig(ctx context.Context, cfg agent.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config %s: %w", cfg.Role, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO agent_configs (role, config, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (role) DO UPDATE SET
			config = EXCLUDED.config,
			updated_at = EXCLUDED.updated_at`,
		cfg.Role, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save config %s: %w", cfg.Role, err)
	}
	return nil
}

// GetConfig retrieves a role configuration.
func (s *Store) GetConfig(ctx context.Context, role string) (agent.Config, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT config FROM agent_configs WHERE role = $1`, role).Scan(&data)
	if err == pgx.ErrNoRows {
		return agent.Config{}, fmt.Errorf("config %s: %w", role, ErrNotFound)
	}
	if err != nil {
		return agent.Config{}, fmt.Errorf("get config %s: %w", role, err)
	}
	var cfg agent.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return agent.Config{}, fmt.Errorf("unmarshal config %s: %w", role, err)
	}
	return cfg, nil
}

// ListConfigs returns all stored role configurations keyed by role.
func (s *Store) ListConfigs(ctx context.Context) (map[string]agent.Config, error) {
	rows, err := s.db.Query(ctx, `SELECT config FROM agent_configs ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	defer rows.Close()

	configs := make(map[string]agent.Config)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		var cfg agent.Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
		configs[cfg.Role] = cfg
	}
	return configs, rows.Err()
}

// SaveTeam upserts a team definition.
func (s *Store) SaveTeam(ctx context.Context, team *runtime.Team) error {
	roles, err := json.Marshal(team.Roles)
	if err != nil {
		return fmt.Errorf("marshal team roles: %w", err)
	}
	agentIDs, err := json.Marshal(team.AgentIDs)
	if err != nil {
		return fmt.Errorf("marshal team agent ids: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO teams (name, scope, description, roles, agent_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			scope = EXCLUDED.scope,
			description = EXCLUDED.description,
			roles = EXCLUDED.roles,
			agent_ids = EXCLUDED.agent_ids`,
		team.Name, team.Scope, team.Description, roles, agentIDs, team.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save team %s: %w", team.Name, err)
	}
	return nil
}

// GetTeam retrieves a team definition by name.
func (s *Store) GetTeam(ctx context.Context, name string) (*runtime.Team, error) {
	var (
		team     runtime.Team
		roles    []byte
		agentIDs []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT name, scope, COALESCE(description,''), roles, agent_ids, created_at
		FROM teams WHERE name = $1`, name).
		Scan(&team.Name, &team.Scope, &team.Description, &roles, &agentIDs, &team.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get team %s: %w", name, err)
	}
	if err := json.Unmarshal(roles, &team.Roles); err != nil {
		return nil, fmt.Errorf("unmarshal team roles: %w", err)
	}
	if err := json.Unmarshal(agentIDs, &team.AgentIDs); err != nil {
		return nil, fmt.Errorf("unmarshal team agent ids: %w", err)
	}
	return &team, nil
}

// ListTeams returns all stored team names.
func (s *Store) ListTeams(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveWorkflow upserts a workflow definition. Only metadata is persisted;
// agents and condition functions are reattached at load time.
func (s *Store) SaveWorkflow(ctx context.Context, meta workflow.Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal workflow %s: %w", meta.Name, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO workflow_defs (name, pattern, scope, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (name) DO UPDATE SET
			pattern = EXCLUDED.pattern,
			scope = EXCLUDED.scope,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at`,
		meta.Name, string(meta.Pattern), string(meta.Scope), data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save workflow %s: %w", meta.Name, err)
	}
	return nil
}

// GetWorkflow retrieves a workflow definition by name.
func (s *Store) GetWorkflow(ctx context.Context, name string) (workflow.Metadata, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT metadata FROM workflow_defs WHERE name = $1`, name).Scan(&data)
	if err == pgx.ErrNoRows {
		return workflow.Metadata{}, fmt.Errorf("workflow %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return workflow.Metadata{}, fmt.Errorf("get workflow %s: %w", name, err)
	}
	var meta workflow.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return workflow.Metadata{}, fmt.Errorf("unmarshal workflow %s: %w", name, err)
	}
	return meta, nil
}

// ListWorkflows returns stored workflow definitions, optionally filtered by
// scope.
func (s *Store) ListWorkflows(ctx context.Context, scope workflow.Scope) ([]workflow.Metadata, error) {
	query := `SELECT metadata FROM workflow_defs ORDER BY name`
	args := []any{}
	if scope != "" {
		query = `SELECT metadata FROM workflow_defs WHERE scope = $1 ORDER BY name`
		args = append(args, string(scope))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var metas []workflow.Metadata
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		var meta workflow.Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("unmarshal workflow: %w", err)
		}
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// RecordTaskRun appends one task execution record.
func (s *Store) RecordTaskRun(ctx context.Context, run agent.TaskRun) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO task_runs (run_id, task_id, agent_id, status, started_at, completed_at, error)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`,
		run.RunID, run.TaskID, run.AgentID, string(run.Status),
		run.StartedAt, run.CompletedAt, run.Error,
	)
	if err != nil {
		return fmt.Errorf("record task run %s: %w", run.RunID, err)
	}
	return nil
}

// ListTaskRuns returns an agent's task execution history, newest first.
func (s *Store) ListTaskRuns(ctx context.Context, agentID string, limit int) ([]agent.TaskRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT run_id, task_id, agent_id, status, started_at, completed_at, COALESCE(error, '')
		FROM task_runs WHERE agent_id = $1
		ORDER BY started_at DESC LIMIT $2`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list task runs: %w", err)
	}
	defer rows.Close()

	var runs []agent.TaskRun
	for rows.Next() {
		var run agent.TaskRun
		var status string
		if err := rows.Scan(&run.RunID, &run.TaskID, &run.AgentID, &status,
			&run.StartedAt, &run.CompletedAt, &run.Error); err != nil {
			return nil, fmt.Errorf("scan task run: %w", err)
		}
		run.Status = agent.Status(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
