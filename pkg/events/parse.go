package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
)

// StripEnvelopePrefix returns the parsed JSON body of an EVENT_JSON line.
// It returns false if the prefix is missing or the body is not valid JSON.
// Numbers are kept as json.Number.
func StripEnvelopePrefix(line string) (any, bool) {
	body, ok := strings.CutPrefix(line, EventJSONPrefix)
	if !ok || !json.Valid([]byte(body)) {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// ParseEnvelope splits an EVENT_JSON line into its envelope.
func ParseEnvelope(line string) (*Envelope, error) {
	body, ok := strings.CutPrefix(line, EventJSONPrefix)
	if !ok {
		return nil, apperrors.InvalidEncodingError(apperrors.StageEnvelope, "", fmt.Errorf("missing %s prefix", EventJSONPrefix))
	}

	var env Envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, apperrors.InvalidEncodingError(apperrors.StageEnvelope, "", err)
	}
	if env.Standard != Standard {
		return nil, apperrors.InvalidEncodingError(apperrors.StageEnvelope, "standard", fmt.Errorf("unsupported standard %q", env.Standard))
	}
	if env.Version != Version {
		return nil, apperrors.InvalidEncodingError(apperrors.StageEnvelope, "version", fmt.Errorf("unsupported version %q", env.Version))
	}
	return &env, nil
}

// ParseEvent is the inverse of Format.
func ParseEvent(line string) (Event, error) {
	env, err := ParseEnvelope(line)
	if err != nil {
		return nil, err
	}

	return UnmarshalData(env.Event, func(v any) error {
		dec := json.NewDecoder(bytes.NewReader(env.Data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	})
}
