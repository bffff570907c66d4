package interchange

import (
	"strings"

	"github.com/ehr/calcfhir/internal/platform/fhir"
	"github.com/ehr/calcfhir/pkg/fhirmodels"
)

// buildPatient returns nil unless rec carries a patient id.
func buildPatient(rec *Record, o Options) *fhir.Patient {
	if rec.PatientID == "" {
		return nil
	}
	p := fhir.NewPatient("patient-" + rec.PatientID)
	p.Identifier = []fhir.Identifier{{
		System: o.PatientIDSystem,
		Value:  rec.PatientID,
	}}

	if parts := strings.Fields(rec.PatientName); len(parts) > 0 {
		p.Name = []fhir.HumanName{{
			Use:    fhirmodels.NameUseOfficial,
			Family: parts[0],
			Given:  append([]string{}, parts[1:]...),
		}}
	}
	if rec.Gender != "" {
		p.Gender = strings.ToLower(rec.Gender)
	}
	if d, ok := calendarDate(rec.DateOfBirth); ok {
		p.BirthDate = d
	}
	if rec.PhoneNumber != "" {
		p.Telecom = []fhir.ContactPoint{{
			System: fhirmodels.ContactSystemPhone,
			Value:  rec.PhoneNumber,
			Use:    fhirmodels.UseHome,
		}}
	}
	if rec.Address != "" {
		p.Address = []fhir.Address{{
			Text: rec.Address,
			Use:  fhirmodels.UseHome,
		}}
	}
	return p
}

// buildEncounter returns nil unless rec carries a visit number. subject is
// the Patient reference already placed in the bundle, or nil.
func buildEncounter(rec *Record, subject *fhir.Reference) *fhir.Encounter {
	if rec.VisitNumber == "" {
		return nil
	}
	enc := fhir.NewEncounter("encounter-" + rec.VisitNumber)
	enc.Status = fhirmodels.EncounterStatusFinished

	display := "Ambulatory"
	if rec.PatientClass == fhirmodels.EncounterClassInpatient {
		display = "Inpatient"
	}
	enc.Class = fhir.Coding{
		System:  fhirmodels.SystemActCode,
		Code:    firstNonEmpty(rec.PatientClass, fhirmodels.EncounterClassAmbulatory),
		Display: display,
	}
	if subject != nil {
		ref := *subject
		enc.Subject = &ref
	}
	if start, ok := instant(rec.AdmitDateTime); ok {
		enc.Period = &fhir.Period{Start: start}
	}
	return enc
}
