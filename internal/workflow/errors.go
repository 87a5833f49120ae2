package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for workflow parsing. Every *ParseError matches exactly one
// of them with errors.Is.
var (
	// ErrEmptyInput indicates the workflow text was empty or whitespace only.
	ErrEmptyInput = errors.New("empty workflow file")
	// ErrMalformedSyntax indicates the YAML decoder rejected the text.
	ErrMalformedSyntax = errors.New("invalid YAML")
	// ErrNotAMapping indicates the root or an item was not a YAML mapping.
	ErrNotAMapping = errors.New("not a mapping")
	// ErrMissingField indicates a required field is absent, empty, or mistyped.
	ErrMissingField = errors.New("required field missing")
	// ErrInvalidEnum indicates a field value outside its closed set.
	ErrInvalidEnum = errors.New("invalid enum value")
)

// ErrorKind classifies a parse failure for programmatic handling.
type ErrorKind string

const (
	KindEmptyInput      ErrorKind = "empty_input"
	KindMalformedSyntax ErrorKind = "malformed_syntax"
	KindNotAMapping     ErrorKind = "not_a_mapping"
	KindMissingField    ErrorKind = "missing_field"
	KindInvalidEnum     ErrorKind = "invalid_enum"
)

var kindSentinels = map[ErrorKind]error{
	KindEmptyInput:      ErrEmptyInput,
	KindMalformedSyntax: ErrMalformedSyntax,
	KindNotAMapping:     ErrNotAMapping,
	KindMissingField:    ErrMissingField,
	KindInvalidEnum:     ErrInvalidEnum,
}

// ParseError records why a workflow file was rejected. ItemID and Field are
// set when the failure can be attributed to an item or field; Value holds the
// offending value for InvalidEnum failures.
type ParseError struct {
	Kind   ErrorKind
	ItemID string
	Field  string
	Value  string
	Err    error // underlying decoder error, if any

	msg string
}

// Error returns a human-readable message naming the item and field.
func (e *ParseError) Error() string {
	return e.msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *ParseError) Unwrap() []error {
	errs := []error{kindSentinels[e.Kind]}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func errEmptyInput() *ParseError {
	return &ParseError{Kind: KindEmptyInput, msg: "empty workflow file"}
}

func errMalformed(cause error) *ParseError {
	return &ParseError{
		Kind: KindMalformedSyntax,
		Err:  cause,
		msg:  "invalid YAML: " + cause.Error(),
	}
}

func errRootNotMapping() *ParseError {
	return &ParseError{Kind: KindNotAMapping, msg: "workflow YAML root is not a mapping"}
}

func errItemNotMapping() *ParseError {
	return &ParseError{Kind: KindNotAMapping, Field: "items", msg: "item is not a mapping"}
}

func errWorkflowMissingID() *ParseError {
	return &ParseError{Kind: KindMissingField, Field: "id", msg: "workflow missing id"}
}

func errWorkflowPhase(value string) *ParseError {
	return &ParseError{
		Kind:  KindMissingField,
		Field: "phase",
		Value: value,
		msg:   fmt.Sprintf("workflow has invalid phase: %q", value),
	}
}

func errItemMissing(itemID, field string) *ParseError {
	if itemID == "" {
		return &ParseError{Kind: KindMissingField, Field: field, msg: "item missing " + field}
	}
	return &ParseError{
		Kind:   KindMissingField,
		ItemID: itemID,
		Field:  field,
		msg:    fmt.Sprintf("item %q missing %s", itemID, field),
	}
}

func errItemInvalid(itemID, field, value string) *ParseError {
	return &ParseError{
		Kind:   KindInvalidEnum,
		ItemID: itemID,
		Field:  field,
		Value:  value,
		msg:    fmt.Sprintf("item %q has invalid %s: %q", itemID, field, value),
	}
}
