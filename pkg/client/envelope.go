package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RouteKey is the request parameter holding the resource name. Routed
// submissions and default poll handles both read it.
const RouteKey = "datasetName"

// Request is the json object sent as the body of a submission.
type Request map[string]any

func (r Request) Name() string {
	if r == nil {
		return ""
	}
	switch v := r[RouteKey].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

// Handle identifies a pending operation. It is only meaningful to the
// microservice that issued it.
type Handle string

func (h Handle) String() string {
	return string(h)
}

// Envelope is a decoded microservice response. The result field is kept raw
// because it is a message on submissions and a record array on polls; every
// other top level field is preserved as is.
type Envelope struct {
	Result json.RawMessage
	Fields map[string]json.RawMessage
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("envelope must be a json object")
	}

	e.Result = fields["result"]
	delete(fields, "result")
	e.Fields = fields

	return nil
}

func (e *Envelope) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(e.Fields)+1)
	for k, v := range e.Fields { // nosemgrep: range-over-map
		fields[k] = v
	}
	if e.Result != nil {
		fields["result"] = e.Result
	}

	return json.Marshal(fields)
}

// Message returns the result field when it is a json string.
func (e *Envelope) Message() (string, bool) {
	if e == nil || len(e.Result) == 0 {
		return "", false
	}

	var message string
	if err := json.Unmarshal(e.Result, &message); err != nil {
		return "", false
	}

	return message, true
}

// Records decodes the result field as an array of status records.
func (e *Envelope) Records() ([]Record, error) {
	if e == nil || len(e.Result) == 0 {
		return nil, fmt.Errorf("result field is missing")
	}

	var records []Record
	if err := json.Unmarshal(e.Result, &records); err != nil {
		return nil, fmt.Errorf("result field is not a record array: %w", err)
	}

	return records, nil
}

// Record is one status entry of a poll response.
type Record struct {
	DatasetName string   `json:"datasetName"`
	Fields      []string `json:"fields"`
	Finished    Flag     `json:"finished"`
	TimeCreated string   `json:"timeCreated"`
	Type        string   `json:"type"`
	URL         string   `json:"url"`
}

// Flag is the "true"/"false" string the backend uses for booleans. A json
// boolean is accepted as well and normalized.
type Flag string

const (
	FlagTrue  Flag = "true"
	FlagFalse Flag = "false"
)

func (f Flag) True() bool {
	return f == FlagTrue
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch string(data) {
	case "true":
		*f = FlagTrue
		return nil
	case "false":
		*f = FlagFalse
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("finished must be a string or boolean: %w", err)
	}

	*f = Flag(s)
	return nil
}
