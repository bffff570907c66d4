package interchange

import (
	"math"
	"time"

	"github.com/ehr/calcfhir/internal/platform/fhir"
	"github.com/ehr/calcfhir/pkg/fhirmodels"
)

func buildObservation(rec *Record, o Options, id string, now time.Time, subject, encounter *fhir.Reference) *fhir.Observation {
	obs := fhir.NewObservation(id)
	obs.Status = fhirmodels.ObservationStatusFinal
	obs.Category = []fhir.CodeableConcept{{
		Coding: []fhir.Coding{{
			System:  fhirmodels.SystemObservationCategory,
			Code:    o.Category,
			Display: o.CategoryDisplay,
		}},
	}}
	obs.Code = fhir.CodeableConcept{
		Coding: []fhir.Coding{{
			System:  o.CodeSystem,
			Code:    firstNonEmpty(rec.CalculatorCode, defaultCalculatorCode),
			Display: firstNonEmpty(rec.CalculatorName, defaultCalculatorName),
		}},
	}
	obs.Subject = subject
	obs.Encounter = encounter

	issued := now
	obs.Issued = &issued
	if eff, ok := effectiveDateTime(rec.ObservationDateTime); ok {
		obs.EffectiveDateTime = eff
	} else {
		obs.EffectiveDateTime = now.Format(time.RFC3339Nano)
	}

	if rec.PerformerID != "" {
		obs.Performer = []fhir.Reference{{
			Reference: fhir.FormatReference("Practitioner", rec.PerformerID),
			Display:   rec.PerformerName,
		}}
	}

	// Zero is a real score; only nil (absent) suppresses the value.
	if rec.Score != nil && !math.IsNaN(*rec.Score) && !math.IsInf(*rec.Score, 0) {
		obs.ValueQuantity = &fhir.Quantity{
			Value:  *rec.Score,
			Unit:   firstNonEmpty(rec.ScoreUnit, defaultScoreUnit),
			System: fhirmodels.SystemUCUM,
			Code:   firstNonEmpty(rec.ScoreUnitCode, defaultScoreUnitCode),
		}
		if rec.ScoreInterpretation != "" {
			obs.Interpretation = []fhir.CodeableConcept{{
				Coding: []fhir.Coding{{
					System:  fhirmodels.SystemObservationInterpretation,
					Code:    firstNonEmpty(rec.ScoreInterpretationCode, fhirmodels.InterpretationIndeterminate),
					Display: rec.ScoreInterpretation,
				}},
				Text: rec.ScoreInterpretation,
			}}
		}
	}

	if rec.Notes != "" {
		obs.Note = []fhir.Annotation{{Text: rec.Notes}}
	}
	return obs
}
