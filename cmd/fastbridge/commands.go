package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iancoleman/strcase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/chainsafe/fastbridge/internal/metrics"
	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
	"github.com/chainsafe/fastbridge/pkg/bridge"
	"github.com/chainsafe/fastbridge/pkg/config"
	"github.com/chainsafe/fastbridge/pkg/ethereum"
	"github.com/chainsafe/fastbridge/pkg/events"
	"github.com/chainsafe/fastbridge/pkg/near"
)

// Record types accepted by decode.
const (
	typeMessage  = "message"
	typeTransfer = "transfer"
	typeFee      = "fee"
	typeProof    = "proof"
)

var recordTypes = []string{typeMessage, typeTransfer, typeFee, typeProof}

func (c *cli) addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address <hex>",
		Short: "Normalize an Ethereum address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := ethereum.ParseHex(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hex:      %s\n", addr.Hex())
			fmt.Fprintf(out, "checksum: %s\n", addr.Checksum())
			return nil
		},
	}
}

func (c *cli) encodeCmd() *cobra.Command {
	var file, layoutName string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a YAML transfer message to hex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := bridge.ParseLayout(layoutName)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var msg bridge.TransferMessage
			if err := yaml.Unmarshal(data, &msg); err != nil {
				return fmt.Errorf("failed to parse transfer message: %w", err)
			}

			encoded, err := bridge.EncodeTransferMessageLayout(&msg, layout)
			if err != nil {
				return err
			}
			c.logger.Debug("Encoded transfer message",
				zap.Stringer("layout", layout),
				zap.Int("bytes", len(encoded)))

			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(encoded))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "YAML file with the message, - for stdin")
	cmd.Flags().StringVar(&layoutName, "layout", bridge.LayoutV3.String(), "Binary layout (v1, v2, v3)")
	return cmd
}

// decodedMessage is the decode output for a transfer message.
type decodedMessage struct {
	Layout    string                  `json:"layout"`
	Tolerated string                  `json:"tolerated,omitempty"`
	Message   *bridge.TransferMessage `json:"message"`
	Display   displayAmounts          `json:"display"`
}

type displayAmounts struct {
	Transfer string `json:"transfer_amount"`
	Fee      string `json:"fee_amount"`
}

func (c *cli) decodeCmd() *cobra.Command {
	var recordType string

	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode hex encoded bytes to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(recordTypes, recordType) {
				return fmt.Errorf("unknown record type %q", recordType)
			}
			data, err := decodeHex(args[0])
			if err != nil {
				return err
			}

			out, err := c.decode(recordType, data)
			if err != nil {
				metrics.DecodeErrors.WithLabelValues(apperrors.KindOf(err).String()).Inc()
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&recordType, "type", "t", typeMessage, "Record type (message, transfer, fee, proof)")
	return cmd
}

func (c *cli) decode(recordType string, data []byte) (any, error) {
	switch recordType {
	case typeTransfer:
		return bridge.DecodeTransferDataEthereum(data)
	case typeFee:
		return bridge.DecodeTransferDataNear(data)
	case typeProof:
		return bridge.DecodeProof(data)
	default:
		return c.decodeMessage(data)
	}
}

func (c *cli) decodeMessage(data []byte) (*decodedMessage, error) {
	msg, report, err := bridge.DecodeTransferMessageReport(data)
	if err != nil {
		return nil, err
	}

	metrics.MessagesDecoded.WithLabelValues(report.Layout.String()).Inc()
	out := &decodedMessage{
		Layout:  report.Layout.String(),
		Message: msg,
		Display: displayAmounts{
			Transfer: msg.Transfer.Amount.Decimal(c.cfg.Display.Decimals).String(),
			Fee:      msg.Fee.Amount.Decimal(c.cfg.Display.Decimals).String(),
		},
	}
	if report.Tolerated != nil {
		metrics.TrailingFieldsTolerated.Inc()
		out.Tolerated = report.Tolerated.Error()
		c.logger.Warn("Malformed aurora_sender read as absent", zap.Error(report.Tolerated))
	}

	c.logger.Info("Decoded transfer message",
		zap.String("layout", out.Layout),
		zap.Int("bytes", len(data)))
	return out, nil
}

func (c *cli) emitCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "emit <deposit|withdraw|init-transfer|unlock|lp-unlock>",
		Short: "Emit an event built from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := eventTag(args[0])
			if !slices.Contains(events.Tags(), tag) {
				return fmt.Errorf("unknown event %q", args[0])
			}

			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			ev, err := events.UnmarshalData(tag, func(v any) error {
				return yaml.Unmarshal(data, v)
			})
			if err != nil {
				return err
			}
			if err := validateAccounts(ev); err != nil {
				return err
			}

			sink, closeSink, err := c.openSink(cmd)
			if err != nil {
				return err
			}
			defer closeSink()

			events.NewEmitter(sink, c.logger).Emit(ev)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "YAML file with the event data, - for stdin")
	return cmd
}

// eventTag maps a short CLI name such as lp-unlock to its event tag.
func eventTag(name string) string {
	return "fast_bridge_" + strcase.ToSnake(name) + "_event"
}

func (c *cli) openSink(cmd *cobra.Command) (events.Sink, func(), error) {
	noop := func() {}

	switch c.cfg.Emitter.Sink {
	case config.SinkStdout:
		return events.NewWriterSink(cmd.OutOrStdout(), c.logger), noop, nil
	case config.SinkStderr:
		return events.NewWriterSink(cmd.ErrOrStderr(), c.logger), noop, nil
	case config.SinkZap:
		return events.NewZapSink(c.logger), noop, nil
	case config.SinkFile:
		f, err := os.OpenFile(c.cfg.Emitter.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open event log: %w", err)
		}
		return events.NewWriterSink(f, c.logger), func() {
			if err := f.Close(); err != nil {
				c.logger.Error("Failed to close event log", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q", c.cfg.Emitter.Sink)
	}
}

// validateAccounts checks every account ID an event carries.
func validateAccounts(ev events.Event) error {
	var ids []near.AccountID

	switch e := ev.(type) {
	case events.FastBridgeInitTransferEvent:
		ids = append(ids, e.SenderID, e.TransferMessage.Transfer.TokenNear, e.TransferMessage.Fee.Token)
	case events.FastBridgeUnlockEvent:
		ids = append(ids, e.RecipientID, e.TransferMessage.Transfer.TokenNear, e.TransferMessage.Fee.Token)
	case events.FastBridgeLpUnlockEvent:
		ids = append(ids, e.RecipientID, e.TransferMessage.Transfer.TokenNear, e.TransferMessage.Fee.Token)
	case events.FastBridgeDepositEvent:
		ids = append(ids, e.SenderID, e.Token)
	case events.FastBridgeWithdrawEvent:
		if e.SenderID != nil {
			ids = append(ids, *e.SenderID)
		}
		ids = append(ids, e.RecipientID, e.Token)
	}

	for _, id := range ids {
		if _, err := near.ParseAccountID(id.String()); err != nil {
			return err
		}
	}
	return nil
}

// inspectedEvent is the inspect output for one event line.
type inspectedEvent struct {
	Event string       `json:"event"`
	Data  events.Event `json:"data"`
}

func (c *cli) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [line]",
		Short: "Parse EVENT_JSON log lines",
		Long:  `Parses the given line, or every EVENT_JSON line read from stdin. Other stdin lines are skipped.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return c.inspectLine(cmd.OutOrStdout(), args[0])
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if _, ok := events.StripEnvelopePrefix(line); !ok {
					c.logger.Debug("Skipping non-event line")
					continue
				}
				if err := c.inspectLine(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
}

func (c *cli) inspectLine(w io.Writer, line string) error {
	ev, err := events.ParseEvent(line)
	if err != nil {
		return err
	}
	return writeJSON(w, inspectedEvent{Event: events.Tag(ev), Data: ev})
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, apperrors.InvalidEncodingError(apperrors.StageBinary, "input", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
