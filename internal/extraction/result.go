package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Invoice field names requested by InvoicePrompt
const (
	FieldVendorName    = "vendor_name"
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceAmount = "invoice_amount"
	FieldInvoiceDate   = "invoice_date"
)

// InvoiceFields lists the fields InvoicePrompt asks for, in prompt order
var InvoiceFields = []string{FieldVendorName, FieldInvoiceNumber, FieldInvoiceAmount, FieldInvoiceDate}

// FieldState tells apart a field the model left out from one it set to null
type FieldState int

const (
	FieldMissing FieldState = iota
	FieldNull
	FieldPresent
)

func (s FieldState) String() string {
	switch s {
	case FieldNull:
		return "null"
	case FieldPresent:
		return "present"
	default:
		return "missing"
	}
}

// Result is the JSON object returned by the model. It is passed through as
// received: no field is required and unknown fields are kept.
type Result struct {
	raw    json.RawMessage
	fields map[string]json.RawMessage
}

func parseResult(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, &ParseError{Err: errors.New("empty response")}
	}
	if !json.Valid(data) {
		return nil, &ParseError{Err: fmt.Errorf("invalid JSON: %q", truncate(string(data), 200))}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, &ParseError{Err: errors.New("expected a JSON object")}
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, data); err != nil {
		return nil, &ParseError{Err: err}
	}

	return &Result{raw: compacted.Bytes(), fields: fields}, nil
}

// State reports whether the field is missing, null or carries a value
func (r *Result) State(field string) FieldState {
	value, ok := r.fields[field]
	if !ok {
		return FieldMissing
	}
	if string(value) == "null" {
		return FieldNull
	}
	return FieldPresent
}

// Fields returns the names of every field in the result, sorted
func (r *Result) Fields() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MissingFields returns the invoice fields the model did not report at all
func (r *Result) MissingFields() []string {
	var missing []string
	for _, name := range InvoiceFields {
		if r.State(name) == FieldMissing {
			missing = append(missing, name)
		}
	}
	return missing
}

// StringField returns the field as a string. ok is false when the field is
// missing, null, or not a JSON string.
func (r *Result) StringField(field string) (string, bool) {
	if r.State(field) != FieldPresent {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r.fields[field], &s); err != nil {
		return "", false
	}
	return s, true
}

// NumberField returns the field as a float64. ok is false when the field is
// missing, null, or not a JSON number.
func (r *Result) NumberField(field string) (float64, bool) {
	if r.State(field) != FieldPresent {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(r.fields[field], &n); err != nil {
		return 0, false
	}
	return n, true
}

func (r *Result) VendorName() (string, bool) {
	return r.StringField(FieldVendorName)
}

func (r *Result) InvoiceNumber() (string, bool) {
	return r.StringField(FieldInvoiceNumber)
}

func (r *Result) InvoiceAmount() (float64, bool) {
	return r.NumberField(FieldInvoiceAmount)
}

// InvoiceDate returns the date string as reported; the YYYY-MM-DD format is
// not enforced.
func (r *Result) InvoiceDate() (string, bool) {
	return r.StringField(FieldInvoiceDate)
}

// AsMap decodes the result into generic JSON values
func (r *Result) AsMap() (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(r.raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return m, nil
}

// MarshalJSON writes the object exactly as the model returned it
func (r *Result) MarshalJSON() ([]byte, error) {
	return r.raw, nil
}

func (r *Result) MarshalYAML() (interface{}, error) {
	return r.AsMap()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
