package treecodec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/treecodec/i18n"
	"github.com/reoring/treecodec/tree"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeShapeMismatch    = "shape_mismatch"
	CodeUnknownKey       = "unknown_key"
	CodeValueConversion  = "value_conversion"
	CodeMissingResult    = "missing_result"
	CodeAlreadyHasResult = "already_has_result"
	CodeNoCodec          = "no_codec"
	CodeInlineMismatch   = "inline_mismatch"
)

var (
	// ErrMissingResult is returned when a result is forced from an outcome
	// that has none.
	ErrMissingResult = errors.New("outcome has no result")
	// ErrAlreadyHasResult is returned by Partial on an outcome that already
	// holds a result.
	ErrAlreadyHasResult = errors.New("outcome already has a result")
	// ErrPartialResult marks the diagnostic of an outcome that still holds
	// a best-effort result.
	ErrPartialResult = errors.New("partial result")
	// ErrRegistryFrozen is returned when registering into a frozen registry.
	ErrRegistryFrozen = errors.New("registry is frozen")
)

// OutcomeError is the Go error form of an outcome's diagnostic text.
type OutcomeError struct {
	Message string
	kind    error
}

func (e *OutcomeError) Error() string {
	if e.Message == "" {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.Message
}

func (e *OutcomeError) Unwrap() error { return e.kind }

func shapeMismatch(expected string, got tree.Value) string {
	return i18n.T(CodeShapeMismatch, map[string]string{"expected": expected, "found": got.Describe()})
}

func unknownKey(key string) string {
	return i18n.T(CodeUnknownKey, map[string]string{"key": key})
}

func conversionFailure(input tree.Value, typ string, cause error) string {
	return i18n.T(CodeValueConversion, map[string]string{
		"input": input.Text(),
		"type":  typ,
		"cause": causeText(cause),
	})
}

func causeText(cause error) string {
	if cause == nil {
		return "unknown cause"
	}
	return cause.Error()
}

// nest labels a child diagnostic:
//
//	Errors in 'port':
//	  - Failed to convert 'x' to int: ...
//
// Continuation lines of msg are indented under the bullet.
func nest(header, msg string) string {
	return header + "\n  - " + strings.ReplaceAll(msg, "\n", "\n    ")
}

func fieldErrors(field, msg string) string {
	return nest(i18n.T("field_errors", map[string]string{"field": field}), msg)
}

func keyErrors(key, msg string) string {
	return nest(i18n.T("key_errors", map[string]string{"key": key}), msg)
}

func joinErrors(errs []string) string { return strings.Join(errs, "\n") }

// recovered formats a value recovered from a panic in caller code.
func recovered(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}
