package bridge

import (
	"fmt"

	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
	"github.com/chainsafe/fastbridge/pkg/borsh"
	"github.com/chainsafe/fastbridge/pkg/ethereum"
	"github.com/chainsafe/fastbridge/pkg/near"
)

// DecodeReport describes how a TransferMessage was recovered from bytes.
type DecodeReport struct {
	// Layout is the newest layout whose fields were all read.
	Layout Layout
	// Tolerated is the aurora_sender failure that was resolved to absent,
	// nil when none occurred.
	Tolerated error
}

// DecodeTransferMessage decodes bytes written by any layout of TransferMessage.
func DecodeTransferMessage(data []byte) (*TransferMessage, error) {
	msg, _, err := DecodeTransferMessageReport(data)
	return msg, err
}

// DecodeTransferMessageReport decodes like DecodeTransferMessage and reports
// the detected layout.
//
// Fields up to recipient are strict. valid_till_block_height is absent when
// the stream ends before its flag, and strict otherwise. aurora_sender is
// absent on any failure, with the rest of the stream discarded.
func DecodeTransferMessageReport(data []byte) (*TransferMessage, DecodeReport, error) {
	r := borsh.NewReader(data)
	report := DecodeReport{}

	var msg TransferMessage
	var err error

	if msg.ValidTill, err = r.ReadU64(); err != nil {
		return nil, report, apperrors.MalformedDataError("valid_till", fieldValidTill, err)
	}
	if err := readTransferDataEthereum(r, &msg.Transfer); err != nil {
		return nil, report, err.at("transfer", fieldTransfer)
	}
	if err := readTransferDataNear(r, &msg.Fee); err != nil {
		return nil, report, err.at("fee", fieldFee)
	}
	if msg.Recipient, err = readAddress(r); err != nil {
		return nil, report, apperrors.MalformedDataError("recipient", fieldRecipient, err)
	}
	report.Layout = LayoutV1
	if r.Exhausted() {
		return &msg, report, nil
	}

	if msg.ValidTillBlockHeight, err = readOptionalU64(r); err != nil {
		return nil, report, apperrors.MalformedDataError("valid_till_block_height", fieldValidTillBlockHeight, err)
	}
	report.Layout = LayoutV2
	if r.Exhausted() {
		return &msg, report, nil
	}

	aurora, err := readOptionalAddress(r)
	if err != nil {
		report.Tolerated = apperrors.MalformedDataError("aurora_sender", fieldAuroraSender, err)
		return &msg, report, nil
	}
	msg.AuroraSender = aurora
	report.Layout = LayoutV3

	if !r.Exhausted() {
		return nil, report, apperrors.MalformedDataError("<end>", fieldEnd, fmt.Errorf("%d trailing bytes", r.Remaining()))
	}
	return &msg, report, nil
}

// DecodeTransferDataEthereum decodes a standalone TransferDataEthereum.
func DecodeTransferDataEthereum(data []byte) (*TransferDataEthereum, error) {
	r := borsh.NewReader(data)
	var t TransferDataEthereum
	if err := readTransferDataEthereum(r, &t); err != nil {
		return nil, err.at("", err.index)
	}
	if err := checkEnd(r, 3); err != nil {
		return nil, err
	}
	return &t, nil
}

// DecodeTransferDataNear decodes a standalone TransferDataNear.
func DecodeTransferDataNear(data []byte) (*TransferDataNear, error) {
	r := borsh.NewReader(data)
	var t TransferDataNear
	if err := readTransferDataNear(r, &t); err != nil {
		return nil, err.at("", err.index)
	}
	if err := checkEnd(r, 2); err != nil {
		return nil, err
	}
	return &t, nil
}

// DecodeProof decodes a Proof.
func DecodeProof(data []byte) (*Proof, error) {
	r := borsh.NewReader(data)
	var p Proof
	var err error

	if p.LogIndex, err = r.ReadU64(); err != nil {
		return nil, apperrors.MalformedDataError("log_index", 0, err)
	}
	if p.LogEntryData, err = r.ReadBytes(); err != nil {
		return nil, apperrors.MalformedDataError("log_entry_data", 1, err)
	}
	if p.ReceiptIndex, err = r.ReadU64(); err != nil {
		return nil, apperrors.MalformedDataError("receipt_index", 2, err)
	}
	if p.ReceiptData, err = r.ReadBytes(); err != nil {
		return nil, apperrors.MalformedDataError("receipt_data", 3, err)
	}
	if p.HeaderData, err = r.ReadBytes(); err != nil {
		return nil, apperrors.MalformedDataError("header_data", 4, err)
	}
	if p.Proof, err = r.ReadBytesSeq(); err != nil {
		return nil, apperrors.MalformedDataError("proof", 5, err)
	}
	if err := checkEnd(r, 6); err != nil {
		return nil, err
	}
	return &p, nil
}

// nestedError records which field of a nested record failed.
type nestedError struct {
	field string
	index int
	err   error
}

// at converts to a MalformedData error under parent. When parent is empty
// the nested record is the top level and its own index is kept.
func (e *nestedError) at(parent string, index int) error {
	if parent == "" {
		return apperrors.MalformedDataError(e.field, index, e.err)
	}
	return apperrors.MalformedDataError(parent+"."+e.field, index, e.err)
}

func readTransferDataEthereum(r *borsh.Reader, t *TransferDataEthereum) *nestedError {
	token, err := r.ReadString()
	if err != nil {
		return &nestedError{field: "token_near", index: 0, err: err}
	}
	t.TokenNear = near.AccountID(token)
	if t.TokenEth, err = readAddress(r); err != nil {
		return &nestedError{field: "token_eth", index: 1, err: err}
	}
	if t.Amount, err = readU128(r); err != nil {
		return &nestedError{field: "amount", index: 2, err: err}
	}
	return nil
}

func readTransferDataNear(r *borsh.Reader, t *TransferDataNear) *nestedError {
	token, err := r.ReadString()
	if err != nil {
		return &nestedError{field: "token", index: 0, err: err}
	}
	t.Token = near.AccountID(token)
	if t.Amount, err = readU128(r); err != nil {
		return &nestedError{field: "amount", index: 1, err: err}
	}
	return nil
}

func readAddress(r *borsh.Reader) (ethereum.EthAddress, error) {
	b, err := r.ReadFixed(ethereum.AddressLength)
	if err != nil {
		return ethereum.EthAddress{}, err
	}
	return ethereum.FromBytes(b)
}

func readU128(r *borsh.Reader) (near.U128, error) {
	b, err := r.ReadFixed(near.U128Size)
	if err != nil {
		return near.U128{}, err
	}
	return near.U128FromBytes(b)
}

func readOptionalU64(r *borsh.Reader) (*uint64, error) {
	present, err := r.ReadOption()
	if err != nil || !present {
		return nil, err
	}
	v, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readOptionalAddress(r *borsh.Reader) (*ethereum.EthAddress, error) {
	present, err := r.ReadOption()
	if err != nil || !present {
		return nil, err
	}
	a, err := readAddress(r)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func checkEnd(r *borsh.Reader, index int) error {
	if r.Exhausted() {
		return nil
	}
	return apperrors.MalformedDataError("<end>", index, fmt.Errorf("%d trailing bytes", r.Remaining()))
}
