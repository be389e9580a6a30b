package validation

import (
	"time"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/dataset"
	"github.com/demandcast/backend/pkg/logger"
)

// Business thresholds of the content stages.
const (
	// minRows below which forecasting is considered unreliable.
	minRows = 30
	// staleYear: dates before January 1st of this year warn as stale.
	staleYear = 2020
	// gapDays: consecutive-date gaps above this many days are reported.
	gapDays = 60
	// maxGapItems caps how many items the gap scan inspects.
	maxGapItems = 10
	// stockRatioLimit: current_stock above this multiple of quantity_sold
	// warns as excessive stock.
	stockRatioLimit = 100
	// missingPctLimit: columns with more missing cells than this percentage
	// warn in the quality summary.
	missingPctLimit = 5.0
	// minItemRecords: items with fewer records are reported as sparse.
	minItemRecords = 10
)

// numericRange is the plausible value range of a numeric column.
type numericRange struct {
	column   string
	min, max float64
}

// Plausible ranges of the four numeric columns.
var numericRanges = []numericRange{
	{contracts.ColUnitPrice, 0, 100000},
	{contracts.ColQuantitySold, 0, 10000},
	{contracts.ColCurrentStock, 0, 50000},
	{contracts.ColLeadTimeDays, 1, 365},
}

var binaryColumns = []string{
	contracts.ColPromotion,
	contracts.ColHoliday,
	contracts.ColSunday,
	contracts.ColStoreClosed,
}

// Season values outside this set warn rather than error, to tolerate
// localized datasets.
var validSeasons = map[string]bool{
	"Summer":   true,
	"Autumn":   true,
	"Winter":   true,
	"Spring":   true,
	"All Year": true,
}

// Validator runs the multi-stage dataset checks. Findings are returned as
// data; the validator itself never fails.
type Validator struct {
	log *logger.Logger
	now func() time.Time
}

// New creates a validator.
func New(log *logger.Logger) *Validator {
	return &Validator{
		log: log.WithField("component", "validation"),
		now: time.Now,
	}
}

// Validate runs all stages against the dataset and returns the issue list
// plus the accept/reject verdict. Severity assignment does not depend on
// strict; the flag is carried for callers that want to accept datasets
// with errors (a caller-side policy).
func (v *Validator) Validate(ds *dataset.Dataset, strict bool) *contracts.ValidationResult {
	v.log.WithFields(map[string]interface{}{
		"rows":   ds.Len(),
		"strict": strict,
	}).Debug("starting dataset validation")

	rep := newReport()

	// Stage 1: structure. If the shape is wrong nothing else can be
	// checked, so the content stages are skipped entirely.
	if ok := checkStructure(ds, rep); !ok {
		result := rep.result()
		v.log.WithField("issues", len(result.Issues)).Warn("dataset failed structural validation")
		return result
	}

	checkVolume(ds, rep)

	dates := parseDateColumn(ds)
	checkDates(ds, dates, v.now(), rep)
	checkNumericColumns(ds, rep)
	checkBinaryColumns(ds, rep)
	checkCategoricalColumns(ds, rep)
	checkDuplicates(ds, rep)
	checkTemporalGaps(ds, dates, rep)
	checkBusinessRules(ds, rep)
	checkQuality(ds, rep)

	result := rep.result()
	if result.Accepted {
		v.log.WithFields(map[string]interface{}{
			"warnings": result.Count(contracts.SeverityWarning),
		}).Info("dataset accepted")
	} else {
		v.log.WithFields(map[string]interface{}{
			"errors": result.Count(contracts.SeverityError),
		}).Warn("dataset rejected")
	}

	return result
}
