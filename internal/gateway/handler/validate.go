package handler

import (
	"bytes"
	"encoding/json"
	"errors"

	arch "archrelay/internal/architecture"
)

// FieldError is one entry of a 422 response.
type FieldError struct {
	Type string `json:"type"`
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
}

const (
	msgFieldRequired = "Field required"
	msgStringType    = "Input should be a valid string"
	msgJSONInvalid   = "JSON decode error"
	msgObjectType    = "Input should be a valid dictionary or object to extract fields from"
)

// decodeArchitectureRequest checks every field and reports all problems at
// once, in declaration order.
func decodeArchitectureRequest(body []byte) (arch.Request, []FieldError) {
	if len(bytes.TrimSpace(body)) == 0 {
		return arch.Request{}, []FieldError{{Type: "missing", Loc: []any{"body"}, Msg: msgFieldRequired}}
	}
	var scratch any
	if err := json.Unmarshal(body, &scratch); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return arch.Request{}, []FieldError{jsonInvalid(syntaxErr.Offset)}
		}
		return arch.Request{}, []FieldError{jsonInvalid(0)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return arch.Request{}, []FieldError{{Type: "model_attributes_type", Loc: []any{"body"}, Msg: msgObjectType}}
	}

	var (
		req  arch.Request
		errs []FieldError
	)
	if fe := stringField(fields, "app_name", &req.AppName); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := stringField(fields, "system_description", &req.SystemDescription); fe != nil {
		errs = append(errs, *fe)
	}
	return req, errs
}

// jsonInvalid reports a decode failure at the byte offset where it stopped.
func jsonInvalid(offset int64) FieldError {
	return FieldError{Type: "json_invalid", Loc: []any{"body", offset}, Msg: msgJSONInvalid}
}

func stringField(fields map[string]json.RawMessage, name string, dst *string) *FieldError {
	raw, ok := fields[name]
	if !ok {
		return &FieldError{Type: "missing", Loc: []any{"body", name}, Msg: msgFieldRequired}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return &FieldError{Type: "string_type", Loc: []any{"body", name}, Msg: msgStringType}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &FieldError{Type: "string_type", Loc: []any{"body", name}, Msg: msgStringType}
	}
	return nil
}
