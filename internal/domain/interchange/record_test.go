package interchange

import (
	"errors"
	"testing"
)

func TestDecodeRecord_NonObject(t *testing.T) {
	for _, input := range []string{"", "   ", "null", "42", `"text"`, "[]", "true", "{"} {
		_, err := DecodeRecord([]byte(input))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("DecodeRecord(%q): expected ErrInvalidInput, got %v", input, err)
		}
	}
}

func TestDecodeRecord_EmptyObject(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Score != nil || rec.Results != nil || rec.PatientID != "" {
		t.Errorf("expected empty record, got %+v", rec)
	}
}

func TestDecodeRecord_Fields(t *testing.T) {
	data := `{
		"patientId": 12345,
		"visitNumber": "V-1",
		"patientName": "Smith John",
		"gender": "M",
		"dateOfBirth": "1970-01-01",
		"patientClass": "I",
		"calculatorCode": "89545-0",
		"calculatorName": "SIRS Criteria Assessment",
		"score": "3",
		"scoreInterpretation": "SIRS criteria met",
		"notes": "septic workup",
		"units": {"wbc": "10*3/uL", "bad": {}},
		"displayNames": {"wbc": "WBC"},
		"abnormalFlags": {"wbc": "H"},
		"abnormalFlagMeanings": {"H": "High"}
	}`
	rec, err := DecodeRecord([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.PatientID != "12345" {
		t.Errorf("expected numeric patientId to be stringified, got %q", rec.PatientID)
	}
	if rec.VisitNumber != "V-1" || rec.PatientName != "Smith John" || rec.PatientClass != "I" {
		t.Errorf("unexpected identity fields: %+v", rec)
	}
	if rec.Score == nil || *rec.Score != 3 {
		t.Errorf("expected score 3, got %v", rec.Score)
	}
	if rec.CalculatorCode != "89545-0" || rec.Notes != "septic workup" {
		t.Errorf("unexpected fields: %+v", rec)
	}
	if rec.Units["wbc"] != "10*3/uL" {
		t.Errorf("unexpected units: %v", rec.Units)
	}
	if _, ok := rec.Units["bad"]; ok {
		t.Error("expected non-scalar unit to be dropped")
	}
	if rec.DisplayNames["wbc"] != "WBC" || rec.AbnormalFlags["wbc"] != "H" || rec.AbnormalFlagMeanings["H"] != "High" {
		t.Errorf("unexpected maps: %+v", rec)
	}
}

func TestDecodeRecord_WrongTypesDropped(t *testing.T) {
	data := `{
		"patientId": {"nested": true},
		"patientName": ["a", "b"],
		"score": "high",
		"results": [1, 2],
		"units": "mg",
		"referenceRanges": 7
	}`
	rec, err := DecodeRecord([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.PatientID != "" || rec.PatientName != "" {
		t.Errorf("expected wrong-typed strings to be dropped, got %+v", rec)
	}
	if rec.Score != nil {
		t.Errorf("expected non-numeric score to be dropped, got %v", *rec.Score)
	}
	if rec.Results != nil || rec.Units != nil || rec.ReferenceRanges != nil {
		t.Errorf("expected wrong-typed collections to be dropped, got %+v", rec)
	}
}

func TestDecodeRecord_NullScore(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"score": null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Score != nil {
		t.Error("expected null score to be absent")
	}

	rec, err = DecodeRecord([]byte(`{"score": 0}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Score == nil || *rec.Score != 0 {
		t.Error("expected score 0 to be present")
	}
}

func TestDecodeRecord_ResultsKeepOrder(t *testing.T) {
	data := `{"results": {
		"temperature": 38.4,
		"heartRate": 102,
		"sirsMet": true,
		"stage": "II",
		"missing": null,
		"details": {"a": 1, "b": [true, false]},
		"heartRate": 110
	}}`
	rec, err := DecodeRecord([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantNames := []string{"temperature", "heartRate", "sirsMet", "stage", "missing", "details"}
	if len(rec.Results) != len(wantNames) {
		t.Fatalf("expected %d results, got %d", len(wantNames), len(rec.Results))
	}
	for i, r := range rec.Results {
		if r.Name != wantNames[i] {
			t.Errorf("result %d: expected %s, got %s", i, wantNames[i], r.Name)
		}
	}

	if v := rec.Results[0].Value; v.Kind() != KindNumber || v.Float() != 38.4 {
		t.Errorf("unexpected temperature: %+v", v)
	}
	if v := rec.Results[1].Value; v.Kind() != KindNumber || v.Float() != 110 {
		t.Errorf("expected duplicate key to keep last value, got %v", v.Float())
	}
	if v := rec.Results[2].Value; v.Kind() != KindBoolean || !v.Boolean() {
		t.Errorf("unexpected sirsMet: %+v", v)
	}
	if v := rec.Results[3].Value; v.Kind() != KindString || v.String() != "II" {
		t.Errorf("unexpected stage: %+v", v)
	}
	if v := rec.Results[4].Value; v.Kind() != KindString || v.String() != "null" {
		t.Errorf("unexpected null result: %+v", v)
	}
	if v := rec.Results[5].Value; v.String() != `{"a":1,"b":[true,false]}` {
		t.Errorf("unexpected object result: %s", v.String())
	}
}

func TestDecodeRecord_ReferenceRanges(t *testing.T) {
	data := `{"referenceRanges": {
		"temperature": "36-38",
		"hr": {"high": 90},
		"wbc": {"low": 4, "high": "12", "text": "4-12 K/uL"},
		"blank": "",
		"empty": {},
		"rr": 20
	}}`
	rec, err := DecodeRecord([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rr := rec.ReferenceRanges["temperature"]; rr.Structured || rr.Text != "36-38" {
		t.Errorf("unexpected temperature range: %+v", rr)
	}
	hr := rec.ReferenceRanges["hr"]
	if !hr.Structured || hr.Low != nil || hr.High == nil || *hr.High != 90 {
		t.Errorf("unexpected hr range: %+v", hr)
	}
	if hr.DisplayText() != "<=90" {
		t.Errorf("unexpected hr display: %s", hr.DisplayText())
	}
	wbc := rec.ReferenceRanges["wbc"]
	if *wbc.Low != 4 || *wbc.High != 12 || wbc.Text != "4-12 K/uL" {
		t.Errorf("unexpected wbc range: %+v", wbc)
	}
	if _, ok := rec.ReferenceRanges["blank"]; ok {
		t.Error("expected blank range to be skipped")
	}
	if rr := rec.ReferenceRanges["rr"]; rr.Text != "20" {
		t.Errorf("expected numeric range text, got %+v", rr)
	}
	// Kept on the record, but present() is false so no component range is emitted.
	empty, ok := rec.ReferenceRanges["empty"]
	if !ok || !empty.Structured || empty.Low != nil || empty.High != nil || empty.present() {
		t.Errorf("unexpected empty range: %+v", empty)
	}
}

func TestResultValue_String(t *testing.T) {
	tests := []struct {
		v    ResultValue
		want string
	}{
		{Number(13.2), "13.2"},
		{Number(100), "100"},
		{Bool(false), "false"},
		{Text("abc"), "abc"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDecodeRecord_BuildsScenarioBundle(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"score": 5, "results": {"wbc": 13.2}, "units": {"wbc": "10*3/uL"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := mustBuild(t, rec, nil)
	if len(b.Entry) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(b.Entry))
	}
	obs := mustObservation(t, b)
	if obs.ValueQuantity.Value != 5 || obs.Component[0].ValueQuantity.Unit != "10*3/uL" {
		t.Errorf("unexpected observation: %+v", obs)
	}
}
