package validation

import "github.com/demandcast/backend/internal/contracts"

// sampleSize caps how many affected row indices an issue displays; the full
// count is always retained.
const sampleSize = 5

// report accumulates issues as the stages run. It is a plain value threaded
// through the stage functions so each stage stays independently testable.
type report struct {
	errors   []contracts.ValidationIssue
	warnings []contracts.ValidationIssue
	infos    []contracts.ValidationIssue
}

func newReport() *report {
	return &report{}
}

func (r *report) addError(kind, column, message string, rows []int) {
	r.errors = append(r.errors, newIssue(kind, column, message, contracts.SeverityError, rows))
}

func (r *report) addWarning(kind, column, message string, rows []int) {
	r.warnings = append(r.warnings, newIssue(kind, column, message, contracts.SeverityWarning, rows))
}

func (r *report) addInfo(kind, column, message string) {
	r.infos = append(r.infos, newIssue(kind, column, message, contracts.SeverityInfo, nil))
}

func (r *report) hasErrors() bool {
	return len(r.errors) > 0
}

// result flattens the accumulated issues, errors first, then warnings,
// then infos. Accepted is false iff any error-severity issue exists.
func (r *report) result() *contracts.ValidationResult {
	issues := make([]contracts.ValidationIssue, 0, len(r.errors)+len(r.warnings)+len(r.infos))
	issues = append(issues, r.errors...)
	issues = append(issues, r.warnings...)
	issues = append(issues, r.infos...)

	return &contracts.ValidationResult{
		Issues:   issues,
		Accepted: !r.hasErrors(),
	}
}

func newIssue(kind, column, message string, sev contracts.Severity, rows []int) contracts.ValidationIssue {
	sample := rows
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	// Copy so later appends cannot alias the issue's sample.
	sampleCopy := make([]int, len(sample))
	copy(sampleCopy, sample)

	return contracts.ValidationIssue{
		Kind:         kind,
		Column:       column,
		Message:      message,
		Severity:     sev,
		AffectedRows: len(rows),
		SampleRows:   sampleCopy,
	}
}
