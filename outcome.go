package treecodec

import (
	"fmt"

	"github.com/reoring/treecodec/i18n"
)

// Outcome carries the result of a decode: a value, a diagnostic, or both.
//
// An outcome with both is partial: a best-effort value plus the errors met
// while building it. Container codecs use this to keep whatever decoded
// instead of failing on the first bad child. Callers choose whether a
// partial is acceptable by checking HasError next to HasResult.
type Outcome[T any] struct {
	result    T
	hasResult bool
	err       string
	hasErr    bool
}

// Success returns an outcome holding v.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{result: v, hasResult: true}
}

// Fail returns an error-only outcome.
func Fail[T any](msg string) Outcome[T] {
	return Outcome[T]{err: msg, hasErr: true}
}

// Failf is Fail with fmt formatting.
func Failf[T any](format string, args ...any) Outcome[T] {
	return Fail[T](fmt.Sprintf(format, args...))
}

// PartialOf returns an outcome holding both v and msg.
func PartialOf[T any](v T, msg string) Outcome[T] {
	return Outcome[T]{result: v, hasResult: true, err: msg, hasErr: true}
}

// Result returns the value and whether one is present.
func (o Outcome[T]) Result() (T, bool) { return o.result, o.hasResult }

// Err returns the diagnostic and whether one is present.
func (o Outcome[T]) Err() (string, bool) { return o.err, o.hasErr }

func (o Outcome[T]) HasResult() bool { return o.hasResult }
func (o Outcome[T]) HasError() bool  { return o.hasErr }

// IsSuccess reports a result without any error.
func (o Outcome[T]) IsSuccess() bool { return o.hasResult && !o.hasErr }

// IsPartial reports a result together with an error.
func (o Outcome[T]) IsPartial() bool { return o.hasResult && o.hasErr }

// OrDefault returns the result, or d when there is none.
func (o Outcome[T]) OrDefault(d T) T {
	if o.hasResult {
		return o.result
	}
	return d
}

// Get returns the result. Without one the error wraps ErrMissingResult and
// carries the diagnostic.
func (o Outcome[T]) Get() (T, error) {
	if !o.hasResult {
		var zero T
		return zero, &OutcomeError{Message: o.err, kind: ErrMissingResult}
	}
	return o.result, nil
}

// MustGet is Get that panics.
func (o Outcome[T]) MustGet() T {
	v, err := o.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// AsError returns the diagnostic as a Go error, nil without one. The error
// wraps ErrPartialResult when a result is present and ErrMissingResult
// otherwise.
func (o Outcome[T]) AsError() error {
	if !o.hasErr {
		return nil
	}
	kind := ErrMissingResult
	if o.hasResult {
		kind = ErrPartialResult
	}
	return &OutcomeError{Message: o.err, kind: kind}
}

// Partial attaches v to an error-only outcome, keeping its diagnostic.
func (o Outcome[T]) Partial(v T) (Outcome[T], error) {
	if o.hasResult {
		return o, &OutcomeError{Message: i18n.T(CodeAlreadyHasResult, nil), kind: ErrAlreadyHasResult}
	}
	return Outcome[T]{result: v, hasResult: true, err: o.err, hasErr: o.hasErr}, nil
}

// WithError returns o with msg appended to its diagnostic.
func (o Outcome[T]) WithError(msg string) Outcome[T] {
	if o.hasErr && o.err != "" {
		o.err = o.err + "\n" + msg
	} else {
		o.err = msg
	}
	o.hasErr = true
	return o
}

func (o Outcome[T]) String() string {
	switch {
	case o.hasResult && o.hasErr:
		return fmt.Sprintf("Partial[%v, %s]", o.result, o.err)
	case o.hasResult:
		return fmt.Sprintf("Success[%v]", o.result)
	default:
		return fmt.Sprintf("Error[%s]", o.err)
	}
}

// Propagate re-types an outcome's diagnostic, dropping any result.
func Propagate[R, T any](o Outcome[T]) Outcome[R] {
	if o.hasErr {
		return Fail[R](o.err)
	}
	return Fail[R](i18n.T("map_null", nil))
}

// FlatMap chains f on the result. Without a result f is not called and the
// diagnostic is propagated. A partial input joins its diagnostic in front of
// whatever f reports. A panic in f becomes an error outcome.
func FlatMap[T, R any](o Outcome[T], f func(T) Outcome[R]) (out Outcome[R]) {
	if !o.hasResult {
		return Propagate[R](o)
	}
	defer func() {
		if r := recover(); r != nil {
			out = Fail[R](i18n.T("map_result", nil) + ": " + recovered(r))
		}
	}()
	next := f(o.result)
	if !o.hasErr {
		return next
	}
	if next.hasErr {
		next.err = o.err + "\n" + next.err
		return next
	}
	next.err, next.hasErr = o.err, true
	return next
}

// MapValue applies f to the result, keeping any diagnostic alongside. A
// panic in f becomes an error outcome.
func MapValue[T, R any](o Outcome[T], f func(T) R) (out Outcome[R]) {
	if !o.hasResult {
		return Propagate[R](o)
	}
	defer func() {
		if r := recover(); r != nil {
			out = Fail[R](i18n.T("map_value", nil) + ": " + recovered(r))
		}
	}()
	return Outcome[R]{result: f(o.result), hasResult: true, err: o.err, hasErr: o.hasErr}
}
