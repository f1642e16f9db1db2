package exercise

const (
	MaxFormScore = 100.0
	MinFormScore = 0.0
)

// fallback deductions for issues whose check is not in the table
var severityDeductions = map[Severity]float64{
	SeverityCritical: 25,
	SeverityWarning:  10,
	SeverityInfo:     5,
}

var deductions = buildDeductionTable()

func buildDeductionTable() map[CheckID]float64 {
	table := make(map[CheckID]float64)
	add := func(rules *ruleSet) {
		for _, c := range rules.checks {
			table[c.id] = c.deduction
		}
	}
	for _, rules := range streamingRules {
		add(rules)
	}
	for _, rules := range batchRules {
		add(rules)
	}
	add(genericRules)
	return table
}

// Deduction returns the points an issue costs a frame.
func Deduction(issue FormIssue) float64 {
	if d, ok := deductions[issue.Check]; ok {
		return d
	}
	return severityDeductions[issue.Severity]
}

// Score starts a frame at 100 and subtracts one deduction per issue, never going below 0.
func Score(issues []FormIssue) float64 {
	score := MaxFormScore
	for _, issue := range issues {
		score -= Deduction(issue)
	}
	if score < MinFormScore {
		return MinFormScore
	}
	return score
}
