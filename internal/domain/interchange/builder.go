package interchange

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/calcfhir/internal/platform/fhir"
)

// Builder turns calculator records into collection bundles. It holds no
// mutable state; one Builder may serve concurrent callers.
type Builder struct {
	// NewID yields opaque unique tokens for the bundle and, when no
	// ResourceID option is given, for the Observation.
	NewID func() string
	// Now is read once per Build.
	Now func() time.Time
}

// NewBuilder returns a Builder backed by random UUIDs and the wall clock.
func NewBuilder() *Builder {
	return &Builder{NewID: uuid.NewString, Now: time.Now}
}

var defaultBuilder = NewBuilder()

// BuildBundle builds a bundle with the default Builder.
func BuildBundle(rec *Record, opts *Options) (*fhir.Bundle, error) {
	return defaultBuilder.Build(rec, opts)
}

// Build assembles Patient (when patientId is set), Encounter (when
// visitNumber is set) and the score Observation, in that order. It fails only
// when rec is nil; every optional field is presence-gated.
func (b *Builder) Build(rec *Record, opts *Options) (*fhir.Bundle, error) {
	if rec == nil {
		return nil, ErrInvalidInput
	}
	o := opts.resolve()
	now := b.now().UTC()

	resourceID := o.ResourceID
	if resourceID == "" {
		resourceID = b.newID()
	}
	bundle := fhir.NewCollectionBundle(b.newID(), now)

	var subject, encounter *fhir.Reference
	if patient := buildPatient(rec, o); patient != nil {
		bundle.AddEntry(fhir.URN(patient.ID), patient)
		subject = &fhir.Reference{Reference: patient.Reference()}
	}
	if enc := buildEncounter(rec, subject); enc != nil {
		bundle.AddEntry(fhir.URN(enc.ID), enc)
		encounter = &fhir.Reference{Reference: enc.Reference()}
	}

	obs := buildObservation(rec, o, resourceID, now, subject, encounter)
	obs.Component = encodeComponents(rec, o)
	bundle.AddEntry(fhir.URN(obs.ID), obs)

	return bundle, nil
}

func (b *Builder) newID() string {
	if b.NewID == nil {
		return uuid.NewString()
	}
	return b.NewID()
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}
