package fhirmodels

// Common FHIR value set constants used when assembling calculator bundles.

// Code system URIs.
const (
	SystemLOINC                     = "http://loinc.org"
	SystemUCUM                      = "http://unitsofmeasure.org"
	SystemObservationCategory       = "http://terminology.hl7.org/CodeSystem/observation-category"
	SystemObservationInterpretation = "http://terminology.hl7.org/CodeSystem/v3-ObservationInterpretation"
	SystemActCode                   = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
	SystemDefaultPatientIdentifier  = "http://hospital.example.org/identifiers/patient"
)

// BundleType values per FHIR R4.
const (
	BundleTypeCollection = "collection"
)

// EncounterStatus values per FHIR R4.
const (
	EncounterStatusFinished = "finished"
)

// EncounterClass codes per FHIR R4 v3-ActCode. The calculator input marks
// inpatient stays with the HL7 v2 PV1-2 code "I".
const (
	EncounterClassAmbulatory = "AMB"
	EncounterClassInpatient  = "I"
)

// ObservationStatus values.
const (
	ObservationStatusFinal = "final"
)

// ObservationCategory codes.
const (
	ObsCategorySurvey = "survey"
)

// ObservationInterpretation codes (v3-ObservationInterpretation).
const (
	InterpretationLow           = "L"
	InterpretationHigh          = "H"
	InterpretationCriticalLow   = "LL"
	InterpretationCriticalHigh  = "HH"
	InterpretationNormal        = "N"
	InterpretationIndeterminate = "IND"
)

// ContactPoint and address use codes.
const (
	ContactSystemPhone = "phone"
	UseHome            = "home"
	NameUseOfficial    = "official"
)

