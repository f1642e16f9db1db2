package exercise

import (
	"time"
)

// CheckID names the geometric check that produced an issue.
// Frame scoring deductions are keyed by it.
type CheckID string

// FormIssue is a detected deviation from the ideal movement geometry.
type FormIssue struct {
	Check         CheckID   `json:"check"`
	Severity      Severity  `json:"severity"`
	Message       string    `json:"message"`
	Suggestion    string    `json:"suggestion"`
	AffectedParts []string  `json:"affected_landmarks"`
	DetectedAt    time.Time `json:"detected_at"`
}

// issueLog is append-only; reads go through a recency filter.
type issueLog struct {
	issues []FormIssue
}

func (l *issueLog) add(issue FormIssue) {
	l.issues = append(l.issues, issue)
}

// recent returns issues strictly younger than window, oldest first.
func (l *issueLog) recent(now time.Time, window time.Duration) []FormIssue {
	recent := make([]FormIssue, 0)
	for _, issue := range l.issues {
		if now.Sub(issue.DetectedAt) < window {
			recent = append(recent, issue)
		}
	}
	return recent
}

// prune drops issues older than maxAge. Only used when a max age is configured.
func (l *issueLog) prune(now time.Time, maxAge time.Duration) {
	kept := l.issues[:0]
	for _, issue := range l.issues {
		if now.Sub(issue.DetectedAt) < maxAge {
			kept = append(kept, issue)
		}
	}
	// clear the tail so pruned issues can be collected
	for i := len(kept); i < len(l.issues); i++ {
		l.issues[i] = FormIssue{}
	}
	l.issues = kept
}

func (l *issueLog) len() int {
	return len(l.issues)
}

func (l *issueLog) reset() {
	l.issues = nil
}

const (
	feedbackCriticalBanner = "⚠️ CRITICAL: Fix your form immediately!"
	feedbackWarningBanner  = "⚡ Form improvements needed:"
	feedbackAllGood        = "✅ Great form! Keep it up!"
	feedbackMaxPerSeverity = 2
)

// Feedback turns issues into display lines: critical issues first, then warnings,
// at most two of each. Info issues never produce lines.
func Feedback(issues []FormIssue) []string {
	feedback := make([]string, 0)
	if len(issues) == 0 {
		return append(feedback, feedbackAllGood)
	}

	var critical, warning []FormIssue
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityCritical:
			critical = append(critical, issue)
		case SeverityWarning:
			warning = append(warning, issue)
		}
	}

	if len(critical) > 0 {
		feedback = append(feedback, feedbackCriticalBanner)
		for i := 0; i < len(critical) && i < feedbackMaxPerSeverity; i++ {
			feedback = append(feedback, "• "+critical[i].Message)
		}
	}

	if len(warning) > 0 {
		feedback = append(feedback, feedbackWarningBanner)
		for i := 0; i < len(warning) && i < feedbackMaxPerSeverity; i++ {
			feedback = append(feedback, "• "+warning[i].Message)
		}
	}

	return feedback
}

// CountBySeverity returns totals for all three severities, zero-filled.
func CountBySeverity(issues []FormIssue) map[Severity]int {
	counts := map[Severity]int{
		SeverityCritical: 0,
		SeverityWarning:  0,
		SeverityInfo:     0,
	}
	for _, issue := range issues {
		if issue.Severity.IsValid() {
			counts[issue.Severity]++
		}
	}
	return counts
}
