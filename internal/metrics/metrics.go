package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsEmitted counts event log lines by event tag
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fastbridge_events_emitted_total",
			Help: "Total number of event log lines emitted",
		},
		[]string{"event"},
	)

	// MessagesDecoded counts decoded transfer messages by detected layout
	MessagesDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fastbridge_messages_decoded_total",
			Help: "Total number of transfer messages decoded",
		},
		[]string{"layout"},
	)

	// TrailingFieldsTolerated counts decodes where a malformed aurora_sender was read as absent
	TrailingFieldsTolerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fastbridge_trailing_fields_tolerated_total",
			Help: "Total number of decodes that resolved a malformed trailing field to absent",
		},
	)

	// DecodeErrors counts failed decodes by error kind
	DecodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fastbridge_decode_errors_total",
			Help: "Total number of failed decodes",
		},
		[]string{"kind"},
	)
)
