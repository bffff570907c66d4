package interchange

import "github.com/ehr/calcfhir/pkg/fhirmodels"

// Options tunes bundle construction. Every empty field falls back to the
// documented default, so a nil *Options and &Options{} build identical bundles.
type Options struct {
	// ResourceID overrides the generated Observation id.
	ResourceID string `json:"resourceId,omitempty"`
	// PatientIDSystem overrides the Patient.identifier system URI.
	PatientIDSystem     string `json:"patientIdSystem,omitempty"`
	Category            string `json:"category,omitempty"`
	CategoryDisplay     string `json:"categoryDisplay,omitempty"`
	CodeSystem          string `json:"codeSystem,omitempty"`
	ComponentCodeSystem string `json:"componentCodeSystem,omitempty"`
}

const (
	defaultCategoryDisplay = "Survey"
	defaultCalculatorCode  = "score"
	defaultCalculatorName  = "Medical Calculator Score"
	defaultScoreUnit       = "score"
	defaultScoreUnitCode   = "{score}"
	defaultComponentUnit   = "unit"
)

// resolve returns a copy of o with every default applied.
func (o *Options) resolve() Options {
	var r Options
	if o != nil {
		r = *o
	}
	r.PatientIDSystem = firstNonEmpty(r.PatientIDSystem, fhirmodels.SystemDefaultPatientIdentifier)
	r.Category = firstNonEmpty(r.Category, fhirmodels.ObsCategorySurvey)
	r.CategoryDisplay = firstNonEmpty(r.CategoryDisplay, defaultCategoryDisplay)
	r.CodeSystem = firstNonEmpty(r.CodeSystem, fhirmodels.SystemLOINC)
	r.ComponentCodeSystem = firstNonEmpty(r.ComponentCodeSystem, fhirmodels.SystemLOINC)
	return r
}

// Merge layers override on top of o: non-empty fields in override win.
func (o Options) Merge(override Options) Options {
	return Options{
		ResourceID:          firstNonEmpty(override.ResourceID, o.ResourceID),
		PatientIDSystem:     firstNonEmpty(override.PatientIDSystem, o.PatientIDSystem),
		Category:            firstNonEmpty(override.Category, o.Category),
		CategoryDisplay:     firstNonEmpty(override.CategoryDisplay, o.CategoryDisplay),
		CodeSystem:          firstNonEmpty(override.CodeSystem, o.CodeSystem),
		ComponentCodeSystem: firstNonEmpty(override.ComponentCodeSystem, o.ComponentCodeSystem),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
