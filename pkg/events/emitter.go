package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/chainsafe/fastbridge/internal/metrics"
	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
)

const (
	// Standard is the NEP-297 standard name carried by every envelope.
	Standard = "nep297"
	// Version of the event schema.
	Version = "1.0.0"
	// EventJSONPrefix starts every event log line.
	EventJSONPrefix = "EVENT_JSON:"
)

// Envelope is the outer JSON object of an event log line.
type Envelope struct {
	Standard string          `json:"standard"`
	Version  string          `json:"version"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data"`
}

// tagged is the intermediate {"event": tag, "data": fields} form.
type tagged struct {
	Event string `json:"event"`
	Data  Event  `json:"data"`
}

// Format renders ev as a single EVENT_JSON log line.
func Format(ev Event) (string, error) {
	if ev == nil {
		return "", apperrors.InternalError(apperrors.StageEnvelope, fmt.Errorf("nil event"))
	}
	if v := reflect.ValueOf(ev); v.Kind() == reflect.Ptr && v.IsNil() {
		return "", apperrors.InternalError(apperrors.StageEnvelope, fmt.Errorf("nil %T", ev))
	}

	raw, err := marshal(tagged{Event: Tag(ev), Data: ev})
	if err != nil {
		return "", apperrors.InternalError(apperrors.StageEnvelope, fmt.Errorf("failed to serialize event: %w", err))
	}

	var t struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return "", apperrors.InternalError(apperrors.StageEnvelope, fmt.Errorf("failed to split tagged event: %w", err))
	}

	line, err := marshal(Envelope{
		Standard: Standard,
		Version:  Version,
		Event:    t.Event,
		Data:     t.Data,
	})
	if err != nil {
		return "", apperrors.InternalError(apperrors.StageEnvelope, fmt.Errorf("failed to serialize envelope: %w", err))
	}
	return EventJSONPrefix + string(line), nil
}

// marshal encodes v on a single line without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Emitter writes events to a Sink.
type Emitter struct {
	sink   Sink
	logger *zap.Logger
}

// NewEmitter creates an emitter. A nil logger disables debug logging.
func NewEmitter(sink Sink, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{sink: sink, logger: logger}
}

// Emit appends exactly one line for ev to the sink. A serialization failure
// means an event was built from invalid state and panics.
func (e *Emitter) Emit(ev Event) {
	line, err := Format(ev)
	if err != nil {
		panic(err)
	}
	e.sink.Log(line)

	tag := Tag(ev)
	metrics.EventsEmitted.WithLabelValues(tag).Inc()
	e.logger.Debug("Event emitted", zap.String("event", tag), zap.Int("bytes", len(line)))
}
