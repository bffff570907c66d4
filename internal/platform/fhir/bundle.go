package fhir

import (
	"fmt"
	"time"

	"github.com/ehr/calcfhir/pkg/fhirmodels"
)

// Bundle represents a FHIR Bundle resource.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
	Total        *int          `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry"`
}

// EntryResource is any resource that can be placed in a bundle entry.
// Patient, Encounter and Observation satisfy it through the embedded Resource.
type EntryResource interface {
	Reference() string
}

type BundleEntry struct {
	FullURL  string        `json:"fullUrl,omitempty"`
	Resource EntryResource `json:"resource,omitempty"`
}

// NewCollectionBundle creates an empty collection Bundle stamped with ts.
func NewCollectionBundle(id string, ts time.Time) *Bundle {
	ts = ts.UTC()
	return &Bundle{
		ResourceType: "Bundle",
		ID:           id,
		Type:         fhirmodels.BundleTypeCollection,
		Timestamp:    &ts,
		Entry:        []BundleEntry{},
	}
}

// AddEntry appends r under the local reference fullURL.
func (b *Bundle) AddEntry(fullURL string, r EntryResource) {
	b.Entry = append(b.Entry, BundleEntry{FullURL: fullURL, Resource: r})
}

// FindEntry returns the first entry whose resource has the given relative
// reference ("Patient/patient-123").
func (b *Bundle) FindEntry(reference string) (*BundleEntry, bool) {
	for i := range b.Entry {
		if b.Entry[i].Resource != nil && b.Entry[i].Resource.Reference() == reference {
			return &b.Entry[i], true
		}
	}
	return nil, false
}

// Observation returns the first Observation in the bundle.
func (b *Bundle) Observation() (*Observation, bool) {
	for _, e := range b.Entry {
		if obs, ok := e.Resource.(*Observation); ok {
			return obs, true
		}
	}
	return nil, false
}

// Patient returns the Patient entry, if any.
func (b *Bundle) Patient() (*Patient, bool) {
	for _, e := range b.Entry {
		if p, ok := e.Resource.(*Patient); ok {
			return p, true
		}
	}
	return nil, false
}

// Encounter returns the Encounter entry, if any.
func (b *Bundle) Encounter() (*Encounter, bool) {
	for _, e := range b.Entry {
		if enc, ok := e.Resource.(*Encounter); ok {
			return enc, true
		}
	}
	return nil, false
}

// FormatReference creates a FHIR reference string like "Patient/123".
func FormatReference(resourceType, id string) string {
	return fmt.Sprintf("%s/%s", resourceType, id)
}

// URN returns the urn:uuid: local reference used as an entry fullUrl.
func URN(id string) string {
	return "urn:uuid:" + id
}
