package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Record is the sparse calculator result handed to the builder. Every field
// is optional; an empty string (or nil pointer/map) means absent.
type Record struct {
	PatientID     string
	VisitNumber   string
	PerformerID   string
	PerformerName string

	PatientName string
	Gender      string
	DateOfBirth string
	PhoneNumber string
	Address     string

	PatientClass  string
	AdmitDateTime string

	CalculatorCode          string
	CalculatorName          string
	ObservationDateTime     string
	Score                   *float64
	ScoreUnit               string
	ScoreUnitCode           string
	ScoreInterpretation     string
	ScoreInterpretationCode string
	Notes                   string

	Results              ResultSet
	Units                map[string]string
	UnitCodes            map[string]string
	DisplayNames         map[string]string
	ReferenceRanges      map[string]ReferenceRange
	AbnormalFlags        map[string]string
	AbnormalFlagMeanings map[string]string
}

// Result is one named calculator output.
type Result struct {
	Name  string
	Value ResultValue
}

// ResultSet keeps results in the order they were supplied.
type ResultSet []Result

// Add appends a named result and returns the extended set.
func (rs ResultSet) Add(name string, v ResultValue) ResultSet {
	return append(rs, Result{Name: name, Value: v})
}

// ValueKind tags the variant held by a ResultValue.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBoolean
	KindDateTime
)

// ResultValue holds exactly one of a number, boolean, instant or string.
type ResultValue struct {
	kind ValueKind
	num  float64
	b    bool
	t    time.Time
	s    string
}

func Number(v float64) ResultValue     { return ResultValue{kind: KindNumber, num: v} }
func Bool(v bool) ResultValue          { return ResultValue{kind: KindBoolean, b: v} }
func DateTime(v time.Time) ResultValue { return ResultValue{kind: KindDateTime, t: v} }
func Text(v string) ResultValue        { return ResultValue{kind: KindString, s: v} }

func (v ResultValue) Kind() ValueKind { return v.kind }
func (v ResultValue) Float() float64  { return v.num }
func (v ResultValue) Boolean() bool   { return v.b }
func (v ResultValue) Time() time.Time { return v.t }

// String renders the value the way a valueString carries it.
func (v ResultValue) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindDateTime:
		return v.t.UTC().Format(time.RFC3339Nano)
	default:
		return v.s
	}
}

// ReferenceRange is either free text or a structured low/high pair.
type ReferenceRange struct {
	Text       string
	Low        *float64
	High       *float64
	Structured bool
}

// TextRange is a free-text reference range such as "4.0-11.0".
func TextRange(text string) ReferenceRange {
	return ReferenceRange{Text: text}
}

// BoundedRange is a structured range; either bound may be nil.
func BoundedRange(low, high *float64) ReferenceRange {
	return ReferenceRange{Low: low, High: high, Structured: true}
}

// DisplayText returns the free text carried on the component, deriving it
// from the bounds when a structured range has none.
func (r ReferenceRange) DisplayText() string {
	if r.Text != "" || !r.Structured {
		return r.Text
	}
	switch {
	case r.Low != nil && r.High != nil:
		return formatNumber(*r.Low) + "-" + formatNumber(*r.High)
	case r.Low != nil:
		return ">=" + formatNumber(*r.Low)
	case r.High != nil:
		return "<=" + formatNumber(*r.High)
	}
	return ""
}

// present reports whether the range yields any referenceRange content. A
// structured {} has neither bounds nor text and is dropped.
func (r ReferenceRange) present() bool {
	return r.DisplayText() != "" || r.Low != nil || r.High != nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// DecodeRecord parses a JSON input record. It fails with ErrInvalidInput when
// data is empty, null, or any JSON value other than an object. Optional
// fields of the wrong type are dropped rather than rejected.
func DecodeRecord(data []byte) (*Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrInvalidInput
	}
	var rec Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &rec, nil
}

// UnmarshalJSON decodes the camelCase wire form of a Record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return ErrInvalidInput
	}

	strs := map[string]*string{
		"patientId":               &r.PatientID,
		"visitNumber":             &r.VisitNumber,
		"performerId":             &r.PerformerID,
		"performerName":           &r.PerformerName,
		"patientName":             &r.PatientName,
		"gender":                  &r.Gender,
		"dateOfBirth":             &r.DateOfBirth,
		"phoneNumber":             &r.PhoneNumber,
		"address":                 &r.Address,
		"patientClass":            &r.PatientClass,
		"admitDateTime":           &r.AdmitDateTime,
		"calculatorCode":          &r.CalculatorCode,
		"calculatorName":          &r.CalculatorName,
		"observationDateTime":     &r.ObservationDateTime,
		"scoreUnit":               &r.ScoreUnit,
		"scoreUnitCode":           &r.ScoreUnitCode,
		"scoreInterpretation":     &r.ScoreInterpretation,
		"scoreInterpretationCode": &r.ScoreInterpretationCode,
		"notes":                   &r.Notes,
	}
	for key, dst := range strs {
		if raw, ok := fields[key]; ok {
			*dst, _ = scalarString(raw)
		}
	}

	if raw, ok := fields["score"]; ok {
		if f, ok := scalarNumber(raw); ok {
			r.Score = &f
		}
	}

	if raw, ok := fields["results"]; ok {
		results, err := decodeResults(raw)
		if err == nil {
			r.Results = results
		}
	}

	r.Units = decodeStringMap(fields["units"])
	r.UnitCodes = decodeStringMap(fields["unitCodes"])
	r.DisplayNames = decodeStringMap(fields["displayNames"])
	r.AbnormalFlags = decodeStringMap(fields["abnormalFlags"])
	r.AbnormalFlagMeanings = decodeStringMap(fields["abnormalFlagMeanings"])
	r.ReferenceRanges = decodeRanges(fields["referenceRanges"])
	return nil
}

// scalarString accepts JSON strings, numbers and booleans. Anything else,
// including null, reports absent.
func scalarString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case 't', 'f':
		return string(raw), true
	case 'n', '{', '[':
		return "", false
	default:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return formatNumber(f), true
		}
		return "", false
	}
}

// scalarNumber accepts JSON numbers and numeric strings.
func scalarNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil && isFinite(f)
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	return f, err == nil && isFinite(f)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// decodeResults walks the results object token by token so that the
// original key order survives.
func decodeResults(raw json.RawMessage) (ResultSet, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("results must be an object")
	}

	results := ResultSet{}
	seen := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected results key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		// A repeated key keeps its first position and its last value.
		if i, dup := seen[name]; dup {
			results[i].Value = decodeValue(value)
			continue
		}
		seen[name] = len(results)
		results = results.Add(name, decodeValue(value))
	}
	return results, nil
}

func decodeValue(raw json.RawMessage) ResultValue {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Text("")
	}
	switch raw[0] {
	case '"':
		var s string
		_ = json.Unmarshal(raw, &s)
		return Text(s)
	case 't':
		return Bool(true)
	case 'f':
		return Bool(false)
	case 'n':
		return Text("null")
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return Text(string(raw))
		}
		return Text(buf.String())
	default:
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			return Number(f)
		}
		return Text(string(raw))
	}
}

func decodeStringMap(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := scalarString(v); ok {
			out[k] = s
		}
	}
	return out
}

type rangeWire struct {
	Low  json.RawMessage `json:"low"`
	High json.RawMessage `json:"high"`
	Text json.RawMessage `json:"text"`
}

func decodeRanges(raw json.RawMessage) map[string]ReferenceRange {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil
	}
	out := make(map[string]ReferenceRange, len(m))
	for k, v := range m {
		v = bytes.TrimSpace(v)
		if len(v) == 0 {
			continue
		}
		if v[0] != '{' {
			if s, ok := scalarString(v); ok && s != "" {
				out[k] = TextRange(s)
			}
			continue
		}
		var w rangeWire
		if err := json.Unmarshal(v, &w); err != nil {
			continue
		}
		rr := ReferenceRange{Structured: true}
		if f, ok := scalarNumber(w.Low); ok {
			rr.Low = &f
		}
		if f, ok := scalarNumber(w.High); ok {
			rr.High = &f
		}
		rr.Text, _ = scalarString(w.Text)
		out[k] = rr
	}
	return out
}
