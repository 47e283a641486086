package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"call-transcriber/internal/domain/model"
)

// JSON Schema the summary model output must satisfy before it is accepted.
// Every field is a string or null; the model sometimes emits numbers for
// unit counts, which the schema rejects so the caller can surface a
// summarization failure instead of storing a malformed row.
const summarySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "Configuration":    {"type": ["string", "null"]},
    "Size_Range":       {"type": ["string", "null"]},
    "BSP":              {"type": ["string", "null"]},
    "Total_Units":      {"type": ["string", "null"]},
    "Units_available":  {"type": ["string", "null"]},
    "Completion_Date":  {"type": ["string", "null"]},
    "Additional_Notes": {"type": ["string", "null"]},
    "Notes":            {"type": ["string", "null"]}
  },
  "additionalProperties": true
}`

var summarySchema = jsonschema.MustCompileString("call_summary.json", summarySchemaJSON)

// decodeSummary parses and validates the raw JSON returned by the summary
// model. The model may wrap the fields in a top-level "dto" object, as the
// prompt requests, or emit them bare.
func decodeSummary(raw string) (*model.CallSummary, error) {
	payload := []byte(raw)

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return nil, fmt.Errorf("not a JSON object: %v", err)
	}
	if dto, ok := wrapper["dto"]; ok {
		payload = dto
	}

	var generic interface{}
	if err := json.Unmarshal(payload, &generic); err != nil {
		return nil, fmt.Errorf("decode summary: %v", err)
	}
	if _, ok := generic.(map[string]interface{}); !ok {
		return nil, fmt.Errorf("summary is not an object")
	}
	if err := summarySchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("summary does not match schema: %v", err)
	}

	var s model.CallSummary
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode summary fields: %v", err)
	}
	normalizeSummary(&s)
	return &s, nil
}

// normalizeSummary trims whitespace and folds empty strings to nil so
// "unset" is always represented as JSON null downstream.
func normalizeSummary(s *model.CallSummary) {
	fields := []**string{
		&s.Configuration, &s.SizeRange, &s.BSP, &s.TotalUnits,
		&s.UnitsAvailable, &s.CompletionDate, &s.AdditionalNotes, &s.Notes,
	}
	for _, f := range fields {
		if *f == nil {
			continue
		}
		v := strings.TrimSpace(**f)
		if v == "" {
			*f = nil
		} else {
			**f = v
		}
	}
}
