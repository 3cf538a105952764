package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/districting/internal/districting"
	"github.com/banshee-data/districting/internal/districting/distance"
)

// RunParams are the inputs a solution was built with.
type RunParams struct {
	InstanceID string `json:"instance_id"`
	K          int    `json:"k"`
	Strategy   string `json:"strategy"`
	Seed       int64  `json:"seed"`
	Formula    string `json:"formula"`
}

// Run is a stored solution.
type Run struct {
	RunID string `json:"run_id"`
	RunParams
	CreatedAt  int64                        `json:"created_at"`
	Objectives []districting.ObjectiveValue `json:"objectives"`
	Clusters   []RunCluster                 `json:"clusters"`
}

// RunCluster is one stored cluster. Members[0] is the center.
type RunCluster struct {
	Index    int         `json:"index"`
	CenterID int         `json:"center_id"`
	Load     float64     `json:"load"`
	Members  []RunMember `json:"members"`
}

// RunMember is one stored cluster member.
type RunMember struct {
	PointID        int     `json:"point_id"`
	CenterDistance float64 `json:"center_distance"`
}

// RunSummary is a run header as returned by ListRuns.
type RunSummary struct {
	RunID string `json:"run_id"`
	RunParams
	CreatedAt int64 `json:"created_at"`
}

// SaveRun stores sol together with every objective value in one transaction
// and returns the new run id. The instance must already be stored.
func (s *Store) SaveRun(ctx context.Context, params RunParams, sol *districting.Solution) (string, error) {
	values, err := sol.EvaluateAll()
	if err != nil {
		return "", fmt.Errorf("evaluate run: %w", err)
	}
	runID := uuid.New().String()
	now := s.clock.Now().UnixNano()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO runs (run_id, instance_id, k, strategy, seed, formula, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, params.InstanceID, params.K, params.Strategy, params.Seed, params.Formula, now); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, ov := range values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_objectives (run_id, objective, value) VALUES (?, ?, ?)`,
				runID, ov.Objective.String(), ov.Value); err != nil {
				return fmt.Errorf("insert objective %s: %w", ov.Objective, err)
			}
		}

		memberStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_members (run_id, cluster_index, position, point_id, center_distance)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare member insert: %w", err)
		}
		defer memberStmt.Close()

		for ci, c := range sol.Clusters {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO run_clusters (run_id, cluster_index, center_id, load, size)
				VALUES (?, ?, ?, ?, ?)`,
				runID, ci, c.Center.ID, c.Load, c.Size()); err != nil {
				return fmt.Errorf("insert cluster %d: %w", ci, err)
			}
			for pos, m := range c.Members {
				var d float64
				if pos < len(c.CenterDistances) {
					d = c.CenterDistances[pos]
				}
				if _, err := memberStmt.ExecContext(ctx, runID, ci, pos, m.ID, d); err != nil {
					return fmt.Errorf("insert member %d of cluster %d: %w", m.ID, ci, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// GetRun reads a run with its objectives, clusters and members.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	run := Run{RunID: runID}
	err := s.db.QueryRowContext(ctx, `
		SELECT instance_id, k, strategy, seed, formula, created_at
		FROM runs WHERE run_id = ?`, runID).Scan(
		&run.InstanceID, &run.K, &run.Strategy, &run.Seed, &run.Formula, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	if run.Objectives, err = s.runObjectives(ctx, runID); err != nil {
		return nil, err
	}
	if run.Clusters, err = s.runClusters(ctx, runID); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) runObjectives(ctx context.Context, runID string) ([]districting.ObjectiveValue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT objective, value FROM run_objectives WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query objectives: %w", err)
	}
	defer rows.Close()

	byObjective := make(map[districting.Objective]float64)
	for rows.Next() {
		var name string
		var v float64
		if err := rows.Scan(&name, &v); err != nil {
			return nil, fmt.Errorf("scan objective: %w", err)
		}
		obj, err := districting.ParseObjective(name)
		if err != nil {
			return nil, err
		}
		byObjective[obj] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]districting.ObjectiveValue, 0, len(byObjective))
	for _, obj := range districting.AllObjectives() {
		if v, ok := byObjective[obj]; ok {
			out = append(out, districting.ObjectiveValue{Objective: obj, Value: v})
		}
	}
	return out, nil
}

func (s *Store) runClusters(ctx context.Context, runID string) ([]RunCluster, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cluster_index, center_id, load
		FROM run_clusters WHERE run_id = ?
		ORDER BY cluster_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query clusters: %w", err)
	}
	var clusters []RunCluster
	for rows.Next() {
		var c RunCluster
		if err := rows.Scan(&c.Index, &c.CenterID, &c.Load); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		clusters = append(clusters, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	members, err := s.db.QueryContext(ctx, `
		SELECT cluster_index, point_id, center_distance
		FROM run_members WHERE run_id = ?
		ORDER BY cluster_index, position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer members.Close()

	for members.Next() {
		var ci int
		var m RunMember
		if err := members.Scan(&ci, &m.PointID, &m.CenterDistance); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		if ci < 0 || ci >= len(clusters) {
			return nil, fmt.Errorf("member references unknown cluster %d", ci)
		}
		clusters[ci].Members = append(clusters[ci].Members, m)
	}
	return clusters, members.Err()
}

// ListRuns returns the runs for an instance, newest first. An empty
// instanceID lists every run.
func (s *Store) ListRuns(ctx context.Context, instanceID string) ([]RunSummary, error) {
	query := `
		SELECT run_id, instance_id, k, strategy, seed, formula, created_at
		FROM runs`
	var args []interface{}
	if instanceID != "" {
		query += ` WHERE instance_id = ?`
		args = append(args, instanceID)
	}
	query += ` ORDER BY created_at DESC, run_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.InstanceID, &r.K, &r.Strategy, &r.Seed, &r.Formula, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Solution rebuilds the stored run over the points of in. Member distances
// are not stored, so the run's formula is used to rebuild the distance table
// and every cluster's measures are derived again from it. A run without a
// known formula cannot be rebuilt.
func (r *Run) Solution(in *districting.Instance) (*districting.Solution, error) {
	formula, err := distance.ParseFormula(r.Formula)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", r.RunID, err)
	}

	byID := make(map[int]districting.DemandPoint, len(in.Points))
	for _, p := range in.Points {
		byID[p.ID] = p
	}
	lookup := func(id int) (districting.DemandPoint, error) {
		p, ok := byID[id]
		if !ok {
			return p, fmt.Errorf("run %s references point %d: %w", r.RunID, id, districting.ErrInvalidInstance)
		}
		return p, nil
	}

	clusters := make([]*districting.Cluster, 0, len(r.Clusters))
	for _, rc := range r.Clusters {
		center, err := lookup(rc.CenterID)
		if err != nil {
			return nil, err
		}
		c := &districting.Cluster{Center: center}
		for _, m := range rc.Members {
			p, err := lookup(m.PointID)
			if err != nil {
				return nil, err
			}
			c.Members = append(c.Members, p)
		}
		clusters = append(clusters, c)
	}

	table, err := distance.BuildTable(in.Points, formula)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", r.RunID, err)
	}
	for i, c := range clusters {
		if err := c.ComputeMeasures(table); err != nil {
			return nil, fmt.Errorf("run %s cluster %d: %w", r.RunID, i, err)
		}
	}

	sol := districting.NewSolution(clusters...)
	if strategy, err := districting.ParseStrategy(r.Strategy); err == nil {
		sol.Strategy = strategy
	}
	return sol, nil
}
