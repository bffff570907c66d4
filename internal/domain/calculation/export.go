package calculation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ehr/calcfhir/internal/domain/interchange"
	"github.com/ehr/calcfhir/pkg/fhirmodels"
)

const (
	// LOINC 89545-0: Systemic inflammatory response syndrome (SIRS) criteria panel.
	SIRSLoincCode = "89545-0"
	SIRSName      = "SIRS Criteria Assessment"

	resultTemperature     = "temperature"
	resultHeartRate       = "heart rate"
	resultRespiratoryRate = "respiratory rate"
	resultWBC             = "wbc"
	resultSIRSMet         = "sirs met"
)

var displayNames = map[string]string{
	resultTemperature:     "Body temperature",
	resultHeartRate:       "Heart rate",
	resultRespiratoryRate: "Respiratory rate",
	resultWBC:             "Leukocytes [#/volume] in Blood",
	resultSIRSMet:         "SIRS criteria met",
}

// UCUM units; the display unit and the code are the same.
var units = map[string]string{
	resultTemperature:     "Cel",
	resultHeartRate:       "/min",
	resultRespiratoryRate: "/min",
	resultWBC:             "10*3/uL",
}

func bound(f float64) *float64 { return &f }

// Normal ranges; a value outside them meets the corresponding SIRS criterion.
var sirsRanges = map[string]interchange.ReferenceRange{
	resultTemperature:     interchange.BoundedRange(bound(36), bound(38)),
	resultHeartRate:       interchange.BoundedRange(nil, bound(90)),
	resultRespiratoryRate: interchange.BoundedRange(nil, bound(20)),
	resultWBC:             interchange.BoundedRange(bound(4), bound(12)),
}

var flagMeanings = map[string]string{
	fhirmodels.InterpretationLow:    "Low",
	fhirmodels.InterpretationHigh:   "High",
	fhirmodels.InterpretationNormal: "Normal",
}

// ToRecord maps a stored calculation onto a calculator record: the criteria
// count becomes the score and each vital sign a component with its SIRS
// reference range and an L/H/N flag.
func ToRecord(c *Calculation) *interchange.Record {
	score := float64(c.CriteriaCount)
	rec := &interchange.Record{
		CalculatorCode:       SIRSLoincCode,
		CalculatorName:       SIRSName,
		ObservationDateTime:  c.CreatedAt.UTC().Format(time.RFC3339Nano),
		Score:                &score,
		ScoreUnit:            "criteria",
		ScoreUnitCode:        "{criteria}",
		Results:              interchange.ResultSet{},
		Units:                copyStrings(units),
		UnitCodes:            copyStrings(units),
		DisplayNames:         copyStrings(displayNames),
		ReferenceRanges:      copyRanges(sirsRanges),
		AbnormalFlags:        map[string]string{},
		AbnormalFlagMeanings: copyStrings(flagMeanings),
	}
	if c.CreatedAt.IsZero() {
		rec.ObservationDateTime = ""
	}

	if c.SIRSMet {
		rec.ScoreInterpretation = "SIRS criteria met"
		rec.ScoreInterpretationCode = "POS"
	} else {
		rec.ScoreInterpretation = "SIRS criteria not met"
		rec.ScoreInterpretationCode = "NEG"
	}

	vitals := []struct {
		name  string
		value float64
	}{
		{resultTemperature, c.Temperature},
		{resultHeartRate, float64(c.HeartRate)},
		{resultRespiratoryRate, float64(c.RespiratoryRate)},
		{resultWBC, c.WBC},
	}
	for _, v := range vitals {
		rec.Results = rec.Results.Add(v.name, interchange.Number(v.value))
		rec.AbnormalFlags[v.name] = flag(v.value, sirsRanges[v.name])
	}
	rec.Results = rec.Results.Add(resultSIRSMet, interchange.Bool(c.SIRSMet))

	if met := c.MetCriteria(); len(met) > 0 {
		sort.Strings(met)
		rec.Notes = fmt.Sprintf("Criteria met (%d of %d): %s", c.CriteriaCount, MaxCriteria, strings.Join(met, ", "))
	}
	return rec
}

// The lookup tables above are shared; records get their own copies so callers
// may edit a record without touching later exports.
func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyRanges(m map[string]interchange.ReferenceRange) map[string]interchange.ReferenceRange {
	out := make(map[string]interchange.ReferenceRange, len(m))
	for k, r := range m {
		if r.Low != nil {
			r.Low = bound(*r.Low)
		}
		if r.High != nil {
			r.High = bound(*r.High)
		}
		out[k] = r
	}
	return out
}

func flag(v float64, r interchange.ReferenceRange) string {
	switch {
	case r.Low != nil && v < *r.Low:
		return fhirmodels.InterpretationLow
	case r.High != nil && v > *r.High:
		return fhirmodels.InterpretationHigh
	}
	return fhirmodels.InterpretationNormal
}

// ResourceID is the Observation id used when exporting calculation id.
func ResourceID(id int64) string {
	return fmt.Sprintf("sirs-calculation-%d", id)
}
