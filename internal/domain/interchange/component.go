package interchange

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/ehr/calcfhir/internal/platform/fhir"
	"github.com/ehr/calcfhir/pkg/fhirmodels"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// flagInterpretations maps HL7 v2 abnormal flags (OBX-8) onto
// v3-ObservationInterpretation codes. Unknown flags are indeterminate.
var flagInterpretations = map[string]string{
	"L":  fhirmodels.InterpretationLow,
	"H":  fhirmodels.InterpretationHigh,
	"LL": fhirmodels.InterpretationCriticalLow,
	"HH": fhirmodels.InterpretationCriticalHigh,
	"N":  fhirmodels.InterpretationNormal,
}

// InterpretationCode returns the interpretation code for an abnormal flag.
func InterpretationCode(flag string) string {
	if code, ok := flagInterpretations[flag]; ok {
		return code
	}
	return fhirmodels.InterpretationIndeterminate
}

// ComponentCode derives a component code from a result name: lower-cased,
// with each whitespace run replaced by a hyphen.
func ComponentCode(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

func encodeComponents(rec *Record, o Options) []fhir.ObservationComponent {
	components := make([]fhir.ObservationComponent, 0, len(rec.Results))
	for _, r := range rec.Results {
		components = append(components, encodeComponent(rec, o, r))
	}
	return components
}

func encodeComponent(rec *Record, o Options, r Result) fhir.ObservationComponent {
	unit := firstNonEmpty(rec.Units[r.Name], defaultComponentUnit)
	comp := fhir.ObservationComponent{
		Code: fhir.CodeableConcept{
			Coding: []fhir.Coding{{
				System:  o.ComponentCodeSystem,
				Code:    ComponentCode(r.Name),
				Display: firstNonEmpty(rec.DisplayNames[r.Name], r.Name),
			}},
		},
	}

	switch v := r.Value; v.Kind() {
	case KindNumber:
		if f := v.Float(); !math.IsNaN(f) && !math.IsInf(f, 0) {
			comp.ValueQuantity = &fhir.Quantity{
				Value:  f,
				Unit:   unit,
				System: fhirmodels.SystemUCUM,
				Code:   firstNonEmpty(rec.UnitCodes[r.Name], defaultComponentUnit),
			}
		} else {
			s := v.String()
			comp.ValueString = &s
		}
	case KindBoolean:
		b := v.Boolean()
		comp.ValueBoolean = &b
	case KindDateTime:
		comp.ValueDateTime = v.Time().UTC().Format(time.RFC3339Nano)
	default:
		s := v.String()
		comp.ValueString = &s
	}

	if rr, ok := rec.ReferenceRanges[r.Name]; ok && rr.present() {
		rng := fhir.ObservationReferenceRange{Text: rr.DisplayText()}
		if rr.Structured {
			if rr.Low != nil {
				rng.Low = &fhir.Quantity{Value: *rr.Low, Unit: unit}
			}
			if rr.High != nil {
				rng.High = &fhir.Quantity{Value: *rr.High, Unit: unit}
			}
		}
		comp.ReferenceRange = []fhir.ObservationReferenceRange{rng}
	}

	if flag := rec.AbnormalFlags[r.Name]; flag != "" {
		comp.Interpretation = []fhir.CodeableConcept{{
			Coding: []fhir.Coding{{
				System:  fhirmodels.SystemObservationInterpretation,
				Code:    InterpretationCode(flag),
				Display: firstNonEmpty(rec.AbnormalFlagMeanings[flag], flag),
			}},
		}}
	}
	return comp
}
