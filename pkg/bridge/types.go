package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/chainsafe/fastbridge/pkg/ethereum"
	"github.com/chainsafe/fastbridge/pkg/near"
)

// Proof is an opaque receipt/log proof bundle.
type Proof struct {
	LogIndex     uint64
	LogEntryData []byte
	ReceiptIndex uint64
	ReceiptData  []byte
	HeaderData   []byte
	Proof        [][]byte
}

// Equal compares proofs by content. Nil and empty byte strings are equal.
func (p Proof) Equal(other Proof) bool {
	if p.LogIndex != other.LogIndex || p.ReceiptIndex != other.ReceiptIndex {
		return false
	}
	if !bytes.Equal(p.LogEntryData, other.LogEntryData) ||
		!bytes.Equal(p.ReceiptData, other.ReceiptData) ||
		!bytes.Equal(p.HeaderData, other.HeaderData) {
		return false
	}
	if len(p.Proof) != len(other.Proof) {
		return false
	}
	for i := range p.Proof {
		if !bytes.Equal(p.Proof[i], other.Proof[i]) {
			return false
		}
	}
	return true
}

// proofJSON renders byte strings as arrays of numbers rather than base64.
type proofJSON struct {
	LogIndex     uint64      `json:"log_index"`
	LogEntryData byteArray   `json:"log_entry_data"`
	ReceiptIndex uint64      `json:"receipt_index"`
	ReceiptData  byteArray   `json:"receipt_data"`
	HeaderData   byteArray   `json:"header_data"`
	Proof        []byteArray `json:"proof"`
}

func (p Proof) MarshalJSON() ([]byte, error) {
	out := proofJSON{
		LogIndex:     p.LogIndex,
		LogEntryData: p.LogEntryData,
		ReceiptIndex: p.ReceiptIndex,
		ReceiptData:  p.ReceiptData,
		HeaderData:   p.HeaderData,
		Proof:        make([]byteArray, 0, len(p.Proof)),
	}
	for _, b := range p.Proof {
		out.Proof = append(out.Proof, b)
	}
	return json.Marshal(out)
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var in proofJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Proof{
		LogIndex:     in.LogIndex,
		LogEntryData: in.LogEntryData,
		ReceiptIndex: in.ReceiptIndex,
		ReceiptData:  in.ReceiptData,
		HeaderData:   in.HeaderData,
	}
	for _, b := range in.Proof {
		p.Proof = append(p.Proof, b)
	}
	return nil
}

type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	if len(ints) == 0 {
		*b = nil
		return nil
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// TransferDataEthereum describes the token leaving NEAR towards Ethereum.
type TransferDataEthereum struct {
	TokenNear near.AccountID      `json:"token_near" yaml:"token_near"`
	TokenEth  ethereum.EthAddress `json:"token_eth" yaml:"token_eth"`
	Amount    near.U128           `json:"amount" yaml:"amount"`
}

func (t TransferDataEthereum) Equal(other TransferDataEthereum) bool {
	return t.TokenNear == other.TokenNear && t.TokenEth == other.TokenEth && t.Amount.Equal(other.Amount)
}

// TransferDataNear describes a NEAR side token amount, used for fees.
type TransferDataNear struct {
	Token  near.AccountID `json:"token" yaml:"token"`
	Amount near.U128      `json:"amount" yaml:"amount"`
}

func (t TransferDataNear) Equal(other TransferDataNear) bool {
	return t.Token == other.Token && t.Amount.Equal(other.Amount)
}

// TransferMessage is a fast bridge transfer request. ValidTillBlockHeight and
// AuroraSender were appended to the binary layout after it was first
// deployed; nil means absent.
type TransferMessage struct {
	ValidTill            uint64               `json:"valid_till" yaml:"valid_till"`
	Transfer             TransferDataEthereum `json:"transfer" yaml:"transfer"`
	Fee                  TransferDataNear     `json:"fee" yaml:"fee"`
	Recipient            ethereum.EthAddress  `json:"recipient" yaml:"recipient"`
	ValidTillBlockHeight *uint64              `json:"valid_till_block_height" yaml:"valid_till_block_height"`
	AuroraSender         *ethereum.EthAddress `json:"aurora_sender" yaml:"aurora_sender"`
}

// Equal compares messages by value, including the optional fields.
func (m TransferMessage) Equal(other TransferMessage) bool {
	if m.ValidTill != other.ValidTill || m.Recipient != other.Recipient {
		return false
	}
	if !m.Transfer.Equal(other.Transfer) || !m.Fee.Equal(other.Fee) {
		return false
	}
	if (m.ValidTillBlockHeight == nil) != (other.ValidTillBlockHeight == nil) {
		return false
	}
	if m.ValidTillBlockHeight != nil && *m.ValidTillBlockHeight != *other.ValidTillBlockHeight {
		return false
	}
	if (m.AuroraSender == nil) != (other.AuroraSender == nil) {
		return false
	}
	return m.AuroraSender == nil || *m.AuroraSender == *other.AuroraSender
}
