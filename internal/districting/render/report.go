package render

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/banshee-data/districting/internal/districting"
)

// RunInfo describes how a solution was produced.
type RunInfo struct {
	Instance string `json:"instance"`
	K        int    `json:"k"`
	Strategy string `json:"strategy"`
	Formula  string `json:"formula,omitempty"`
	Seed     int64  `json:"seed"`
	Starts   int    `json:"starts,omitempty"`
	RunID    string `json:"run_id,omitempty"`
}

// ClusterSummary is the per-cluster part of a Report.
type ClusterSummary struct {
	Index             int     `json:"index"`
	CenterID          int     `json:"center_id"`
	Size              int     `json:"size"`
	Load              float64 `json:"load"`
	SumCenterDistance float64 `json:"sum_center_distance"`
	Members           []int   `json:"members"`
}

// Report is a printable summary of a solution and all of its objective values.
type Report struct {
	RunInfo
	PointCount int                          `json:"point_count"`
	Objectives []districting.ObjectiveValue `json:"objectives"`
	Clusters   []ClusterSummary             `json:"clusters"`
}

// NewReport evaluates every objective on sol.
func NewReport(info RunInfo, sol *districting.Solution) (*Report, error) {
	values, err := sol.EvaluateAll()
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	r := &Report{
		RunInfo:    info,
		PointCount: sol.PointCount(),
		Objectives: values,
		Clusters:   make([]ClusterSummary, 0, len(sol.Clusters)),
	}
	for i, c := range sol.Clusters {
		r.Clusters = append(r.Clusters, ClusterSummary{
			Index:             i,
			CenterID:          c.Center.ID,
			Size:              c.Size(),
			Load:              c.Load,
			SumCenterDistance: c.SumCenterDistances(),
			Members:           c.MemberIDs(),
		})
	}
	return r, nil
}

// KeepObjectives drops objective values not listed in objs. An empty list
// keeps everything.
func (r *Report) KeepObjectives(objs []districting.Objective) {
	if len(objs) == 0 {
		return
	}
	keep := make(map[districting.Objective]bool, len(objs))
	for _, o := range objs {
		keep[o] = true
	}
	filtered := r.Objectives[:0]
	for _, ov := range r.Objectives {
		if keep[ov.Objective] {
			filtered = append(filtered, ov)
		}
	}
	r.Objectives = filtered
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes a human-readable table.
func (r *Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "instance: %s\n", r.Instance)
	if r.RunID != "" {
		fmt.Fprintf(w, "run: %s\n", r.RunID)
	}
	fmt.Fprintf(w, "k=%d strategy=%s formula=%s seed=%d points=%d\n\n",
		r.K, r.Strategy, r.Formula, r.Seed, r.PointCount)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OBJECTIVE\tVALUE")
	for _, ov := range r.Objectives {
		fmt.Fprintf(tw, "%s\t%.4f\n", ov.Objective, ov.Value)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CLUSTER\tCENTER\tSIZE\tLOAD\tSUM TO CENTER")
	for _, c := range r.Clusters {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.2f\t%.4f\n", c.Index, c.CenterID, c.Size, c.Load, c.SumCenterDistance)
	}
	return tw.Flush()
}
