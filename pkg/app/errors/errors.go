// Package errors contains the error kinds shared by the address, binary and
// envelope codecs.
package errors

import (
	"errors"
	"fmt"
)

// Kind defines error kind
type Kind int

const (
	// KindNoError is never attached to a CodecError; it is what KindOf reports for nil.
	KindNoError Kind = iota
	// KindInvalidEncoding Text that should be hex or UTF-8 is malformed
	KindInvalidEncoding
	// KindInvalidLength An address does not have exactly 20 bytes
	KindInvalidLength
	// KindMalformedData A non-trailing field of a binary record could not be read
	KindMalformedData
	// KindInternalSerialization Serialization failed on values that should always serialize
	KindInternalSerialization
)

func (k Kind) String() string {
	switch k {
	case KindNoError:
		return "NoError"
	case KindInvalidEncoding:
		return "InvalidEncoding"
	case KindInvalidLength:
		return "InvalidLength"
	case KindMalformedData:
		return "MalformedData"
	default:
		return "InternalSerializationFailure"
	}
}

// Stage names the codec that produced an error.
type Stage string

const (
	StageAddress  Stage = "address"
	StageBinary   Stage = "binary"
	StageEnvelope Stage = "envelope"
	StageAccount  Stage = "account"
	StageAmount   Stage = "amount"
)

// Sentinels for errors.Is. A CodecError matches the sentinel of its Kind.
var (
	ErrInvalidEncoding       = &CodecError{Kind: KindInvalidEncoding, Index: -1}
	ErrInvalidLength         = &CodecError{Kind: KindInvalidLength, Index: -1}
	ErrMalformedData         = &CodecError{Kind: KindMalformedData, Index: -1}
	ErrInternalSerialization = &CodecError{Kind: KindInternalSerialization, Index: -1}
)

// CodecError represents a typed codec failure. Field is a dotted path
// ("transfer.token_near") and Index the top-level field position in the
// binary layout, or -1 when the failure is not tied to a binary field.
type CodecError struct {
	Kind  Kind
	Stage Stage
	Field string
	Index int
	Err   error
}

// Error method to comply with error interface
func (err *CodecError) Error() string {
	msg := err.Kind.String()
	if err.Stage != "" {
		msg += ": " + string(err.Stage)
	}
	switch {
	case err.Index >= 0 && err.Field != "":
		msg += fmt.Sprintf(" field %d (%s)", err.Index, err.Field)
	case err.Field != "":
		msg += " " + err.Field
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (err *CodecError) Unwrap() error {
	return err.Err
}

// Is reports a match against the sentinel of the same kind.
func (err *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return t.Kind == err.Kind && t.Stage == "" && t.Field == "" && t.Err == nil
}

// Is checks that provided error is a CodecError with desired Kind
func Is(err error, kind Kind) bool {
	var codecErr *CodecError
	if errors.As(err, &codecErr) && codecErr.Kind == kind {
		return true
	}
	return false
}

// KindOf returns the kind of the first CodecError in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindNoError
	}
	var codecErr *CodecError
	if errors.As(err, &codecErr) {
		return codecErr.Kind
	}
	return KindInternalSerialization
}

// InvalidEncodingError returns an error with kind InvalidEncoding
func InvalidEncodingError(stage Stage, field string, err error) error {
	if err == nil {
		err = errors.New("invalid encoding")
	}
	return &CodecError{Kind: KindInvalidEncoding, Stage: stage, Field: field, Index: -1, Err: err}
}

// InvalidLengthError returns an error with kind InvalidLength
func InvalidLengthError(stage Stage, field string, got, want int) error {
	return &CodecError{
		Kind:  KindInvalidLength,
		Stage: stage,
		Field: field,
		Index: -1,
		Err:   fmt.Errorf("got %d bytes, want %d", got, want),
	}
}

// MalformedDataError returns an error with kind MalformedData for the binary
// field at the given top-level index.
func MalformedDataError(field string, index int, err error) error {
	if err == nil {
		err = errors.New("malformed data")
	}
	return &CodecError{Kind: KindMalformedData, Stage: StageBinary, Field: field, Index: index, Err: err}
}

// InternalError returns an error with kind InternalSerializationFailure.
// Callers treat it as a defect in earlier validation.
func InternalError(stage Stage, err error) error {
	if err == nil {
		err = errors.New("internal serialization failure")
	}
	return &CodecError{Kind: KindInternalSerialization, Stage: stage, Index: -1, Err: err}
}
