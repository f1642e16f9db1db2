package metrics

import (
	"github.com/2beens/formcheck/internal/exercise"
)

const (
	ModeStreaming = "streaming"
	ModeBatch     = "batch"
)

// ObserveAnalysis records one streaming result. repsAdded is the rep count delta
// caused by this frame.
func (m *Manager) ObserveAnalysis(res exercise.AnalysisResult, repsAdded int) {
	exType := string(res.Exercise)
	m.CounterFramesAnalyzed.WithLabelValues(exType, ModeStreaming).Inc()
	if repsAdded > 0 {
		m.CounterRepsCounted.WithLabelValues(exType).Add(float64(repsAdded))
	}
	if !res.Supported {
		m.CounterUnsupportedExercises.WithLabelValues(exType).Inc()
	}
}

// ObserveIssues counts issues per severity.
func (m *Manager) ObserveIssues(exType exercise.Type, issues []exercise.FormIssue) {
	for severity, n := range exercise.CountBySeverity(issues) {
		if n > 0 {
			m.CounterFormIssues.WithLabelValues(string(exType), string(severity)).Add(float64(n))
		}
	}
}
