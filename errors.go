package prism

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrInvalidTag indicates a struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrNotStruct indicates a type that cannot carry projection metadata.
	ErrNotStruct = errors.New("not a struct type")

	// ErrInvalidConfig indicates a Config value is out of range.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrMissingMasker indicates a required masker was not registered.
	ErrMissingMasker = errors.New("missing masker")

	// ErrMissingHasher indicates a required hasher was not registered.
	ErrMissingHasher = errors.New("missing hasher")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrProject indicates projecting one element failed. It is only ever
	// reported through signals; Project itself never returns it.
	ErrProject = errors.New("projection failed")

	// ErrHash indicates hashing of a field failed.
	ErrHash = errors.New("hash failed")

	// ErrMaskedWrite indicates an inbound value still carries a masked form
	// and no stored value exists to restore it from.
	ErrMaskedWrite = errors.New("masked value written")

	// ErrUnexportedEmbed indicates a type embeds a pointer to a struct
	// through an unexported field. Serializers emit the promoted fields but
	// projection cannot copy them, so such types are rejected.
	ErrUnexportedEmbed = errors.New("unexported embedded pointer")
)

// errMaxDepth is the cause recorded for models nested beyond Config.MaxDepth.
var errMaxDepth = errors.New("max depth exceeded")

// Tag validation causes.
var (
	errMaskNeedsString = errors.New("send.mask requires a string, *string or []string field")
	errHashNeedsString = errors.New("receive.hash requires a string field")
	errUnknownHashAlgo = errors.New("unknown hash algorithm")
)

// ConfigError represents a type or processor configuration error.
// It wraps a sentinel error with context about the field and tag value.
type ConfigError struct {
	Err   error  // Underlying sentinel error (ErrInvalidTag, ErrMissingMasker, etc.)
	Field string // Field that triggered the error, with its description if any
	Value string // Tag value, kind, or algorithm that was missing/invalid
	Cause error  // Detail of what is wrong with Value
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Value != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Value)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %s)", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransformError represents an error during field transformation.
// It wraps a sentinel error with context about which field and operation failed.
type TransformError struct {
	Err       error  // Underlying sentinel error (ErrHash, ErrMaskedWrite, ErrProject)
	Field     string // Field name that failed
	Operation string // Operation that failed (hash, restore, project)
	Cause     error  // Original error from the underlying operation
}

func (e *TransformError) Error() string {
	if e.Field == "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
		}
		return e.Err.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s field %s: %v", e.Operation, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s field %s: %v", e.Operation, e.Field, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newConfigError creates a ConfigError for invalid or missing configuration.
func newConfigError(sentinel error, value, field string, cause error) error {
	return &ConfigError{
		Err:   sentinel,
		Field: field,
		Value: value,
		Cause: cause,
	}
}

// newTransformError creates a TransformError for field transformation failures.
func newTransformError(sentinel error, operation, field string, cause error) error {
	return &TransformError{
		Err:       sentinel,
		Field:     field,
		Operation: operation,
		Cause:     cause,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
