package fhir

import "time"

// Resource is the base FHIR resource representation. It is embedded in every
// concrete resource so that resourceType and id lead the JSON object.
type Resource struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}

// Reference returns the relative "Type/id" reference for the resource.
func (r Resource) Reference() string {
	return FormatReference(r.ResourceType, r.ID)
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Identifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

// HumanName keeps Given without omitempty: a single-token name is rendered
// with an explicit empty given list.
type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Family string   `json:"family"`
	Given  []string `json:"given"`
}

// Address carries the free-text form only.
type Address struct {
	Use  string `json:"use,omitempty"`
	Text string `json:"text,omitempty"`
}

type ContactPoint struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
	Use    string `json:"use,omitempty"`
}

type Period struct {
	Start *time.Time `json:"start,omitempty"`
}

// Quantity is a measured amount. Value is always serialised, including zero.
type Quantity struct {
	Value  float64 `json:"value"`
	Unit   string  `json:"unit,omitempty"`
	System string  `json:"system,omitempty"`
	Code   string  `json:"code,omitempty"`
}

type Annotation struct {
	Text string `json:"text"`
}

// ObservationReferenceRange is Observation.referenceRange / component.referenceRange.
type ObservationReferenceRange struct {
	Low  *Quantity `json:"low,omitempty"`
	High *Quantity `json:"high,omitempty"`
	Text string    `json:"text,omitempty"`
}

// Patient is the subset of the FHIR R4 Patient resource emitted by this service.
type Patient struct {
	Resource
	Identifier []Identifier   `json:"identifier,omitempty"`
	Name       []HumanName    `json:"name,omitempty"`
	Telecom    []ContactPoint `json:"telecom,omitempty"`
	Gender     string         `json:"gender,omitempty"`
	BirthDate  string         `json:"birthDate,omitempty"`
	Address    []Address      `json:"address,omitempty"`
}

func NewPatient(id string) *Patient {
	return &Patient{Resource: Resource{ResourceType: "Patient", ID: id}}
}

// Encounter is the subset of the FHIR R4 Encounter resource emitted by this service.
type Encounter struct {
	Resource
	Status  string     `json:"status"`
	Class   Coding     `json:"class"`
	Subject *Reference `json:"subject,omitempty"`
	Period  *Period    `json:"period,omitempty"`
}

func NewEncounter(id string) *Encounter {
	return &Encounter{Resource: Resource{ResourceType: "Encounter", ID: id}}
}

// Observation is the subset of the FHIR R4 Observation resource emitted by
// this service. At most one value[x] is set.
type Observation struct {
	Resource
	Status            string                 `json:"status"`
	Category          []CodeableConcept      `json:"category,omitempty"`
	Code              CodeableConcept        `json:"code"`
	Subject           *Reference             `json:"subject,omitempty"`
	Encounter         *Reference             `json:"encounter,omitempty"`
	EffectiveDateTime string                 `json:"effectiveDateTime,omitempty"`
	Issued            *time.Time             `json:"issued,omitempty"`
	Performer         []Reference            `json:"performer,omitempty"`
	ValueQuantity     *Quantity              `json:"valueQuantity,omitempty"`
	Interpretation    []CodeableConcept      `json:"interpretation,omitempty"`
	Note              []Annotation           `json:"note,omitempty"`
	Component         []ObservationComponent `json:"component"`
}

func NewObservation(id string) *Observation {
	return &Observation{
		Resource:  Resource{ResourceType: "Observation", ID: id},
		Component: []ObservationComponent{},
	}
}

// ObservationComponent is Observation.component. Exactly one value[x] is set.
type ObservationComponent struct {
	Code           CodeableConcept             `json:"code"`
	ValueQuantity  *Quantity                   `json:"valueQuantity,omitempty"`
	ValueBoolean   *bool                       `json:"valueBoolean,omitempty"`
	ValueDateTime  string                      `json:"valueDateTime,omitempty"`
	ValueString    *string                     `json:"valueString,omitempty"`
	ReferenceRange []ObservationReferenceRange `json:"referenceRange,omitempty"`
	Interpretation []CodeableConcept           `json:"interpretation,omitempty"`
}
