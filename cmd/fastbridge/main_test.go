package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/fastbridge/internal/metrics"
	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
)

const (
	testAddress = "71C7656EC7ab88b098defB751B7401B5f6d8976F"

	messageYAML = `
valid_till: 7
transfer:
  token_near: token.near
  token_eth: "71C7656EC7ab88b098defB751B7401B5f6d8976F"
  amount: "100"
fee:
  token: token.near
  amount: "2500000000000000000000000"
recipient: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
valid_till_block_height: 99
aurora_sender: "0000000000000000000000000000000000000000"
`

	depositYAML = `
sender_id: alice.near
token: token.near
amount: "300"
`
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FASTBRIDGE_LOGGING_LEVEL", "off")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestAddressCmd(t *testing.T) {
	out, err := execute(t, "", "address", "0x"+testAddress)
	require.NoError(t, err)
	assert.Contains(t, out, "hex:      "+strings.ToLower(testAddress))
	assert.Contains(t, out, "checksum: "+common.HexToAddress(testAddress).Hex())

	_, err = execute(t, "", "address", "0x1234")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidLength))

	_, err = execute(t, "", "address", "zz")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidEncoding))
}

func TestEncodeDecode(t *testing.T) {
	encoded, err := execute(t, messageYAML, "encode")
	require.NoError(t, err)
	encoded = strings.TrimSpace(encoded)

	raw, err := hexutil.Decode(encoded)
	require.NoError(t, err)
	assert.Len(t, raw, 8+(4+10+20+16)+(4+10+16)+20+9+21)

	counter := metrics.MessagesDecoded.WithLabelValues("v3")
	before := testutil.ToFloat64(counter)

	out, err := execute(t, "", "decode", encoded)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "v3", decoded["layout"])
	assert.NotContains(t, decoded, "tolerated")

	msg := decoded["message"].(map[string]any)
	assert.Equal(t, float64(7), msg["valid_till"])
	assert.Equal(t, float64(99), msg["valid_till_block_height"])
	assert.Equal(t, strings.ToLower(testAddress), msg["recipient"])
	assert.Equal(t, "0000000000000000000000000000000000000000", msg["aurora_sender"])

	display := decoded["display"].(map[string]any)
	assert.Equal(t, "2.5", display["fee_amount"])
	assert.Equal(t, "0.0000000000000000000001", display["transfer_amount"])
}

func TestEncodeLayouts(t *testing.T) {
	v3, err := execute(t, messageYAML, "encode", "--layout", "v3")
	require.NoError(t, err)

	_, err = execute(t, messageYAML, "encode", "--layout", "v1")
	assert.True(t, apperrors.Is(err, apperrors.KindInternalSerialization))

	_, err = execute(t, messageYAML, "encode", "--layout", "v9")
	assert.Error(t, err)

	legacy := strings.Replace(messageYAML, `aurora_sender: "0000000000000000000000000000000000000000"`, "", 1)
	v2, err := execute(t, legacy, "encode", "--layout", "v2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(v3), strings.TrimSpace(v2)))

	out, err := execute(t, "", "decode", strings.TrimSpace(v2))
	require.NoError(t, err)
	assert.Contains(t, out, `"layout": "v2"`)
	assert.Contains(t, out, `"aurora_sender": null`)
}

func TestEncodeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(messageYAML), 0o600))

	fromFile, err := execute(t, "", "encode", "--file", path)
	require.NoError(t, err)
	fromStdin, err := execute(t, messageYAML, "encode")
	require.NoError(t, err)
	assert.Equal(t, fromStdin, fromFile)
}

func TestDecodeTolerated(t *testing.T) {
	encoded, err := execute(t, messageYAML, "encode")
	require.NoError(t, err)
	raw, err := hexutil.Decode(strings.TrimSpace(encoded))
	require.NoError(t, err)

	// invalid option flag for aurora_sender
	raw[len(raw)-21] = 2

	before := testutil.ToFloat64(metrics.TrailingFieldsTolerated)
	out, err := execute(t, "", "decode", hexutil.Encode(raw))
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TrailingFieldsTolerated))
	assert.Contains(t, out, `"layout": "v2"`)
	assert.Contains(t, out, `"tolerated"`)
	assert.Contains(t, out, `"aurora_sender": null`)
}

func TestDecodeErrors(t *testing.T) {
	counter := metrics.DecodeErrors.WithLabelValues(apperrors.KindMalformedData.String())
	before := testutil.ToFloat64(counter)

	_, err := execute(t, "", "decode", "0x0102")
	assert.True(t, apperrors.Is(err, apperrors.KindMalformedData))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	_, err = execute(t, "", "decode", "0xabc")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidEncoding))

	_, err = execute(t, "", "decode", "--type", "nope", "0x00")
	assert.Error(t, err)
}

func TestDecodeRecordTypes(t *testing.T) {
	// TransferDataNear{token: "t.near", amount: 1}
	fee := "0x06000000742e6e656172" + "01" + strings.Repeat("00", 15)
	out, err := execute(t, "", "decode", "--type", "fee", fee)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"t.near","amount":"1"}`, out)

	_, err = execute(t, "", "decode", "--type", "fee", fee+"00")
	assert.True(t, apperrors.Is(err, apperrors.KindMalformedData))
}

func TestEmitDeposit(t *testing.T) {
	out, err := execute(t, depositYAML, "emit", "deposit")
	require.NoError(t, err)
	assert.Equal(t,
		`EVENT_JSON:{"standard":"nep297","version":"1.0.0","event":"fast_bridge_deposit_event","data":{"sender_id":"alice.near","token":"token.near","amount":"300"}}`+"\n",
		out)
}

func TestEmitTransferEvents(t *testing.T) {
	body := "nonce: \"238\"\nrecipient_id: lp.near\ntransfer_message:\n" + indent(messageYAML)

	out, err := execute(t, body, "emit", "lp-unlock")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `EVENT_JSON:{"standard":"nep297","version":"1.0.0","event":"fast_bridge_lp_unlock_event"`))

	inspected, err := execute(t, "", "inspect", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Contains(t, inspected, `"event": "fast_bridge_lp_unlock_event"`)
	assert.Contains(t, inspected, `"nonce": "238"`)
}

func TestEmitErrors(t *testing.T) {
	_, err := execute(t, depositYAML, "emit", "mint")
	assert.Error(t, err)

	_, err = execute(t, strings.Replace(depositYAML, "alice.near", "Alice!", 1), "emit", "deposit")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidEncoding))

	_, err = execute(t, strings.Replace(depositYAML, `"300"`, `"-1"`, 1), "emit", "deposit")
	assert.Error(t, err)
}

func TestEmitFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	t.Setenv("FASTBRIDGE_EMITTER_SINK", "file")
	t.Setenv("FASTBRIDGE_EMITTER_PATH", path)

	out, err := execute(t, depositYAML, "emit", "deposit")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = execute(t, depositYAML, "emit", "deposit")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "EVENT_JSON:"))
}

func TestInspectStdin(t *testing.T) {
	line, err := execute(t, depositYAML, "emit", "deposit")
	require.NoError(t, err)

	stdin := "Log from contract\n" + line + "EVENT_JSON:not json\n" + line
	out, err := execute(t, stdin, "inspect")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, `"event": "fast_bridge_deposit_event"`))

	_, err = execute(t, "", "inspect", "not an event")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidEncoding))
}

func TestEventTag(t *testing.T) {
	assert.Equal(t, "fast_bridge_init_transfer_event", eventTag("init-transfer"))
	assert.Equal(t, "fast_bridge_lp_unlock_event", eventTag("lp-unlock"))
	assert.Equal(t, "fast_bridge_deposit_event", eventTag("deposit"))
}

func indent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
