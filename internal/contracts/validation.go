package contracts

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ValidationIssue is one finding produced by the dataset validator.
// Issues are data, never raised as errors; a full row count is retained
// while SampleRows keeps at most five row indices for display.
type ValidationIssue struct {
	Kind         string   `json:"kind"`
	Column       string   `json:"column,omitempty"`
	Message      string   `json:"message"`
	Severity     Severity `json:"severity"`
	AffectedRows int      `json:"affected_rows"`
	SampleRows   []int    `json:"sample_rows"`
}

// ValidationResult is the validator's verdict on a dataset.
type ValidationResult struct {
	Issues   []ValidationIssue `json:"issues"`
	Accepted bool              `json:"accepted"`
}

// Count returns the number of issues with the given severity.
func (r *ValidationResult) Count(sev Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// Errors returns the error-severity issues.
func (r *ValidationResult) Errors() []ValidationIssue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r *ValidationResult) Warnings() []ValidationIssue {
	return r.filter(SeverityWarning)
}

// Infos returns the info-severity issues.
func (r *ValidationResult) Infos() []ValidationIssue {
	return r.filter(SeverityInfo)
}

func (r *ValidationResult) filter(sev Severity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}
	return out
}
