package calculation

import (
	"testing"
	"time"

	"github.com/ehr/calcfhir/internal/domain/interchange"
	"github.com/ehr/calcfhir/pkg/fhirmodels"
)

func TestToRecord(t *testing.T) {
	c := septicCalculation()
	c.ID = 7
	c.SIRSMet = true
	c.CreatedAt = time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))

	rec := ToRecord(c)
	if rec.CalculatorCode != SIRSLoincCode || rec.CalculatorName != SIRSName {
		t.Errorf("unexpected calculator coding: %s %s", rec.CalculatorCode, rec.CalculatorName)
	}
	if rec.Score == nil || *rec.Score != 2 {
		t.Fatalf("expected score 2, got %v", rec.Score)
	}
	if rec.ScoreInterpretationCode != "POS" {
		t.Errorf("expected POS, got %s", rec.ScoreInterpretationCode)
	}
	if rec.ObservationDateTime != "2024-03-01T11:30:00Z" {
		t.Errorf("expected UTC created_at, got %s", rec.ObservationDateTime)
	}

	wantOrder := []string{"temperature", "heart rate", "respiratory rate", "wbc", "sirs met"}
	if len(rec.Results) != len(wantOrder) {
		t.Fatalf("expected %d results, got %d", len(wantOrder), len(rec.Results))
	}
	for i, name := range wantOrder {
		if rec.Results[i].Name != name {
			t.Errorf("result %d: expected %s, got %s", i, name, rec.Results[i].Name)
		}
	}
	if v := rec.Results[4].Value; v.Kind() != interchange.KindBoolean || !v.Boolean() {
		t.Error("expected sirs met to be boolean true")
	}
	if rec.Notes != "Criteria met (2 of 4): heart_rate, temperature" {
		t.Errorf("unexpected notes: %q", rec.Notes)
	}
}

func TestToRecord_NotMet(t *testing.T) {
	c := &Calculation{ID: 1, Temperature: 37, HeartRate: 70, RespiratoryRate: 12, WBC: 6}
	rec := ToRecord(c)

	if rec.ScoreInterpretationCode != "NEG" {
		t.Errorf("expected NEG, got %s", rec.ScoreInterpretationCode)
	}
	if rec.Score == nil || *rec.Score != 0 {
		t.Error("expected a zero score to be present")
	}
	if rec.Notes != "" {
		t.Errorf("expected no notes, got %q", rec.Notes)
	}
	if rec.ObservationDateTime != "" {
		t.Errorf("expected no observation time for zero created_at, got %s", rec.ObservationDateTime)
	}
}

func TestToRecord_Flags(t *testing.T) {
	c := &Calculation{Temperature: 35.2, HeartRate: 95, RespiratoryRate: 20, WBC: 4}
	rec := ToRecord(c)

	want := map[string]string{
		"temperature":      fhirmodels.InterpretationLow,
		"heart rate":       fhirmodels.InterpretationHigh,
		"respiratory rate": fhirmodels.InterpretationNormal,
		"wbc":              fhirmodels.InterpretationNormal,
	}
	for name, flag := range want {
		if got := rec.AbnormalFlags[name]; got != flag {
			t.Errorf("%s: expected flag %s, got %s", name, flag, got)
		}
	}
	if _, ok := rec.AbnormalFlags["sirs met"]; ok {
		t.Error("expected no flag on sirs met")
	}
}

func TestToRecord_TablesNotShared(t *testing.T) {
	c := septicCalculation()
	first := ToRecord(c)
	first.Units[resultTemperature] = "[degF]"
	first.UnitCodes[resultTemperature] = "[degF]"
	first.DisplayNames[resultTemperature] = "Temp"
	first.AbnormalFlagMeanings[fhirmodels.InterpretationHigh] = "Elevated"
	*first.ReferenceRanges[resultTemperature].Low = 0
	delete(first.ReferenceRanges, resultWBC)

	second := ToRecord(c)
	if second.Units[resultTemperature] != "Cel" || second.UnitCodes[resultTemperature] != "Cel" {
		t.Errorf("expected Cel, got %s / %s", second.Units[resultTemperature], second.UnitCodes[resultTemperature])
	}
	if second.DisplayNames[resultTemperature] != "Body temperature" {
		t.Errorf("unexpected display name: %s", second.DisplayNames[resultTemperature])
	}
	if second.AbnormalFlagMeanings[fhirmodels.InterpretationHigh] != "High" {
		t.Errorf("unexpected flag meaning: %s", second.AbnormalFlagMeanings[fhirmodels.InterpretationHigh])
	}
	if got := second.ReferenceRanges[resultTemperature].DisplayText(); got != "36-38" {
		t.Errorf("expected range 36-38, got %s", got)
	}
	if _, ok := second.ReferenceRanges[resultWBC]; !ok {
		t.Error("expected wbc range to survive")
	}
	if second.AbnormalFlags[resultTemperature] != fhirmodels.InterpretationHigh {
		t.Errorf("expected high temperature flag, got %s", second.AbnormalFlags[resultTemperature])
	}
}

func TestToRecord_Bundle(t *testing.T) {
	c := septicCalculation()
	c.ID = 3
	c.SIRSMet = true
	c.CreatedAt = fixedNow

	o := interchange.Options{ResourceID: ResourceID(c.ID)}
	bundle, err := newTestBuilder().Build(ToRecord(c), &o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obs, ok := bundle.Observation()
	if !ok {
		t.Fatal("expected Observation")
	}
	if obs.ValueQuantity == nil || obs.ValueQuantity.Code != "{criteria}" {
		t.Errorf("expected criteria score quantity, got %+v", obs.ValueQuantity)
	}

	temp := obs.Component[0]
	if temp.Code.Coding[0].Code != "temperature" || temp.Code.Coding[0].Display != "Body temperature" {
		t.Errorf("unexpected temperature coding: %+v", temp.Code.Coding[0])
	}
	if temp.ValueQuantity == nil || temp.ValueQuantity.Value != 38.6 || temp.ValueQuantity.Unit != "Cel" {
		t.Errorf("unexpected temperature quantity: %+v", temp.ValueQuantity)
	}
	if len(temp.ReferenceRange) != 1 || temp.ReferenceRange[0].Text != "36-38" {
		t.Errorf("unexpected temperature range: %+v", temp.ReferenceRange)
	}
	if temp.Interpretation[0].Coding[0].Code != fhirmodels.InterpretationHigh {
		t.Errorf("expected high interpretation, got %s", temp.Interpretation[0].Coding[0].Code)
	}

	hr := obs.Component[1]
	if hr.Code.Coding[0].Code != "heart-rate" {
		t.Errorf("expected heart-rate code, got %s", hr.Code.Coding[0].Code)
	}
	if hr.ReferenceRange[0].Text != "<=90" || hr.ReferenceRange[0].Low != nil {
		t.Errorf("unexpected heart rate range: %+v", hr.ReferenceRange[0])
	}

	met := obs.Component[4]
	if met.ValueBoolean == nil || !*met.ValueBoolean {
		t.Error("expected sirs met valueBoolean true")
	}
	if met.ReferenceRange != nil || met.Interpretation != nil {
		t.Error("expected no range or interpretation on sirs met")
	}
}

func TestResourceID(t *testing.T) {
	if got := ResourceID(12); got != "sirs-calculation-12" {
		t.Errorf("unexpected resource id: %s", got)
	}
}
