package events

import (
	"fmt"
	"reflect"

	"github.com/iancoleman/strcase"

	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
	"github.com/chainsafe/fastbridge/pkg/bridge"
	"github.com/chainsafe/fastbridge/pkg/near"
)

// Event is one of the fast bridge event variants. The set is closed: only
// the types declared in this file implement it.
type Event interface {
	isEvent()
}

// FastBridgeInitTransferEvent is emitted when a transfer to Ethereum is initiated.
type FastBridgeInitTransferEvent struct {
	Nonce           near.U128              `json:"nonce" yaml:"nonce"`
	SenderID        near.AccountID         `json:"sender_id" yaml:"sender_id"`
	TransferMessage bridge.TransferMessage `json:"transfer_message" yaml:"transfer_message"`
}

// FastBridgeUnlockEvent is emitted when locked tokens are returned to the sender.
type FastBridgeUnlockEvent struct {
	Nonce           near.U128              `json:"nonce" yaml:"nonce"`
	RecipientID     near.AccountID         `json:"recipient_id" yaml:"recipient_id"`
	TransferMessage bridge.TransferMessage `json:"transfer_message" yaml:"transfer_message"`
}

// FastBridgeLpUnlockEvent is emitted when a liquidity provider unlocks tokens
// with a proof of the Ethereum side transfer.
type FastBridgeLpUnlockEvent struct {
	Nonce           near.U128              `json:"nonce" yaml:"nonce"`
	RecipientID     near.AccountID         `json:"recipient_id" yaml:"recipient_id"`
	TransferMessage bridge.TransferMessage `json:"transfer_message" yaml:"transfer_message"`
}

type FastBridgeDepositEvent struct {
	SenderID near.AccountID `json:"sender_id" yaml:"sender_id"`
	Token    near.AccountID `json:"token" yaml:"token"`
	Amount   near.U128      `json:"amount" yaml:"amount"`
}

// FastBridgeWithdrawEvent has no sender when the withdrawal was made on
// behalf of the contract itself.
type FastBridgeWithdrawEvent struct {
	SenderID    *near.AccountID `json:"sender_id" yaml:"sender_id"`
	RecipientID near.AccountID  `json:"recipient_id" yaml:"recipient_id"`
	Token       near.AccountID  `json:"token" yaml:"token"`
	Amount      near.U128       `json:"amount" yaml:"amount"`
}

func (FastBridgeInitTransferEvent) isEvent() {}
func (FastBridgeUnlockEvent) isEvent()       {}
func (FastBridgeLpUnlockEvent) isEvent()     {}
func (FastBridgeDepositEvent) isEvent()      {}
func (FastBridgeWithdrawEvent) isEvent()     {}

// variants lists a zero value of every Event type.
var variants = []Event{
	FastBridgeInitTransferEvent{},
	FastBridgeUnlockEvent{},
	FastBridgeLpUnlockEvent{},
	FastBridgeDepositEvent{},
	FastBridgeWithdrawEvent{},
}

// variantByTag maps tags back to variant types for ParseEvent.
var variantByTag = func() map[string]reflect.Type {
	m := make(map[string]reflect.Type, len(variants))
	for _, v := range variants {
		m[Tag(v)] = reflect.TypeOf(v)
	}
	return m
}()

// Tag returns the snake_case name of the variant, for example
// fast_bridge_init_transfer_event.
func Tag(ev Event) string {
	t := reflect.TypeOf(ev)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return strcase.ToSnake(t.Name())
}

// UnmarshalData builds the variant named by tag, filling it with decode.
// decode receives a pointer to the zero variant.
func UnmarshalData(tag string, decode func(v any) error) (Event, error) {
	t, ok := variantByTag[tag]
	if !ok {
		return nil, apperrors.InvalidEncodingError(apperrors.StageEnvelope, "event", fmt.Errorf("unknown event %q", tag))
	}

	ptr := reflect.New(t)
	if err := decode(ptr.Interface()); err != nil {
		return nil, apperrors.InvalidEncodingError(apperrors.StageEnvelope, "data", err)
	}
	return ptr.Elem().Interface().(Event), nil
}

// Tags returns the tags of every variant.
func Tags() []string {
	tags := make([]string, 0, len(variants))
	for _, v := range variants {
		tags = append(tags, Tag(v))
	}
	return tags
}
