// Package flagger grades recorded expansion runs against configured thresholds.
package flagger

import (
	"fmt"

	"wilhelm/internal/database/relational"
)

const (
	SeverityOK       = 0
	SeverityWarning  = 2
	SeverityCritical = 3
)

// Service implements relational.RunFlagger.
type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

var _ relational.RunFlagger = (*Service)(nil)

// Flag sets run.Severity and run.Flags. A failed run is always critical.
func (s *Service) Flag(run *relational.Run) {
	severity := SeverityOK
	var explanations []string

	check := func(name string, value float64, t Thresholds) {
		switch {
		case t.Critical > 0 && value > t.Critical:
			severity = SeverityCritical
			explanations = append(explanations, fmt.Sprintf("%s critical: %.0f", name, value))
		case t.Warning > 0 && value > t.Warning:
			severity = max(severity, SeverityWarning)
			explanations = append(explanations, fmt.Sprintf("%s warning: %.0f", name, value))
		}
	}

	if run.Error != "" {
		severity = SeverityCritical
		explanations = append(explanations, "expansion failed")
	}
	check("duration ms", float64(run.DurationMS), s.cfg.DurationMS)
	check("round trips", float64(run.RoundTrips), s.cfg.RoundTrips)
	check("nodes", float64(run.NodeCount), s.cfg.Nodes)

	run.Severity = severity
	run.Flags = ""
	if len(explanations) > 0 {
		// first explanation is the primary one
		run.Flags = explanations[0]
		if len(explanations) > 1 {
			run.Flags += fmt.Sprintf(" (+%d more)", len(explanations)-1)
		}
	}
}
