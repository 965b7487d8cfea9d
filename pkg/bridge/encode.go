package bridge

import (
	"fmt"

	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
	"github.com/chainsafe/fastbridge/pkg/borsh"
	"github.com/chainsafe/fastbridge/pkg/ethereum"
	"github.com/chainsafe/fastbridge/pkg/near"
)

// Layout identifies one of the physical shapes a TransferMessage has had.
// The byte stream carries no version tag; the layout is inferred from
// where the stream ends.
type Layout int

const (
	// LayoutV1 ends after recipient.
	LayoutV1 Layout = iota + 1
	// LayoutV2 adds valid_till_block_height.
	LayoutV2
	// LayoutV3 adds aurora_sender. This is what EncodeTransferMessage writes.
	LayoutV3
)

func (l Layout) String() string {
	switch l {
	case LayoutV1:
		return "v1"
	case LayoutV2:
		return "v2"
	case LayoutV3:
		return "v3"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses "v1", "v2" or "v3".
func ParseLayout(s string) (Layout, error) {
	for _, l := range []Layout{LayoutV1, LayoutV2, LayoutV3} {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown layout %q", s)
}

// Top level field positions of a TransferMessage.
const (
	fieldValidTill = iota
	fieldTransfer
	fieldFee
	fieldRecipient
	fieldValidTillBlockHeight
	fieldAuroraSender
	fieldEnd
)

// EncodeTransferMessage encodes msg in the current layout.
func EncodeTransferMessage(msg *TransferMessage) []byte {
	w := borsh.NewWriter()
	writeTransferMessageHead(w, msg)
	writeOptionalU64(w, msg.ValidTillBlockHeight)
	writeOptionalAddress(w, msg.AuroraSender)
	return w.Bytes()
}

// EncodeTransferMessageLayout encodes msg the way a producer of an older
// layout would have. It fails if msg carries a field the layout cannot hold.
func EncodeTransferMessageLayout(msg *TransferMessage, layout Layout) ([]byte, error) {
	switch layout {
	case LayoutV1:
		if msg.ValidTillBlockHeight != nil || msg.AuroraSender != nil {
			return nil, apperrors.InternalError(apperrors.StageBinary, fmt.Errorf("layout %s cannot hold optional fields", layout))
		}
		w := borsh.NewWriter()
		writeTransferMessageHead(w, msg)
		return w.Bytes(), nil
	case LayoutV2:
		if msg.AuroraSender != nil {
			return nil, apperrors.InternalError(apperrors.StageBinary, fmt.Errorf("layout %s cannot hold aurora_sender", layout))
		}
		w := borsh.NewWriter()
		writeTransferMessageHead(w, msg)
		writeOptionalU64(w, msg.ValidTillBlockHeight)
		return w.Bytes(), nil
	case LayoutV3:
		return EncodeTransferMessage(msg), nil
	default:
		return nil, apperrors.InternalError(apperrors.StageBinary, fmt.Errorf("unknown layout %d", int(layout)))
	}
}

// EncodeTransferDataEthereum encodes a standalone TransferDataEthereum.
func EncodeTransferDataEthereum(t *TransferDataEthereum) []byte {
	w := borsh.NewWriter()
	writeTransferDataEthereum(w, t)
	return w.Bytes()
}

// EncodeTransferDataNear encodes a standalone TransferDataNear.
func EncodeTransferDataNear(t *TransferDataNear) []byte {
	w := borsh.NewWriter()
	writeTransferDataNear(w, t)
	return w.Bytes()
}

// EncodeProof encodes a Proof.
func EncodeProof(p *Proof) []byte {
	w := borsh.NewWriter()
	w.WriteU64(p.LogIndex)
	w.WriteBytes(p.LogEntryData)
	w.WriteU64(p.ReceiptIndex)
	w.WriteBytes(p.ReceiptData)
	w.WriteBytes(p.HeaderData)
	w.WriteBytesSeq(p.Proof)
	return w.Bytes()
}

func writeTransferMessageHead(w *borsh.Writer, msg *TransferMessage) {
	w.WriteU64(msg.ValidTill)
	writeTransferDataEthereum(w, &msg.Transfer)
	writeTransferDataNear(w, &msg.Fee)
	writeAddress(w, msg.Recipient)
}

func writeTransferDataEthereum(w *borsh.Writer, t *TransferDataEthereum) {
	w.WriteString(string(t.TokenNear))
	writeAddress(w, t.TokenEth)
	writeU128(w, t.Amount)
}

func writeTransferDataNear(w *borsh.Writer, t *TransferDataNear) {
	w.WriteString(string(t.Token))
	writeU128(w, t.Amount)
}

func writeAddress(w *borsh.Writer, a ethereum.EthAddress) {
	w.WriteFixed(a[:])
}

func writeU128(w *borsh.Writer, u near.U128) {
	var b [near.U128Size]byte
	u.PutBytes(b[:])
	w.WriteFixed(b[:])
}

func writeOptionalU64(w *borsh.Writer, v *uint64) {
	w.WriteOption(v != nil)
	if v != nil {
		w.WriteU64(*v)
	}
}

func writeOptionalAddress(w *borsh.Writer, a *ethereum.EthAddress) {
	w.WriteOption(a != nil)
	if a != nil {
		writeAddress(w, *a)
	}
}
