package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/polyglot-translate/internal/codec"
	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
	"github.com/tjfontaine/polyglot-translate/internal/frontdoor"
	"github.com/tjfontaine/polyglot-translate/internal/server"
)

// readInput reads the named file, or stdin when no file is given or the
// name is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func protocolFlag(cmd *cobra.Command) (domain.APIType, error) {
	name, _ := cmd.Flags().GetString("protocol")
	if name == "" {
		return "", fmt.Errorf("--protocol is required (one of %v)", domain.APITypes())
	}
	return domain.ParseAPIType(name)
}

func writeIndented(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func newDecodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a protocol request into the canonical form",
		Long: `Decode reads a request body in the given protocol and prints its
canonical form. With --provider the request is normalized for that
provider and the adjustments are listed; with --target it is also
re-encoded in another protocol.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := protocolFlag(cmd)
			if err != nil {
				return err
			}
			body, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			providerID, _ := cmd.Flags().GetString("provider")
			if providerID == "" {
				providerID = a.cfg.Translate.DefaultProvider
			}
			if providerID != "" && a.translator.Registry().Get(providerID) == nil {
				return fmt.Errorf("unknown provider %q", providerID)
			}

			req, err := a.translator.Decode(api, body)
			if err != nil {
				return err
			}
			req, adjustments := a.translator.Prepare(req, providerID)
			for _, adj := range adjustments {
				a.logger.Info("normalized parameter", "provider", providerID, "adjustment", adj.String())
			}

			result := frontdoor.DecodeResult{
				Protocol:    api,
				Provider:    providerID,
				Request:     req,
				Adjustments: adjustments,
			}
			if target, _ := cmd.Flags().GetString("target"); target != "" {
				to, err := domain.ParseAPIType(target)
				if err != nil {
					return err
				}
				c, err := a.translator.Codec(to)
				if err != nil {
					return err
				}
				if result.Body, err = c.EncodeRequest(req); err != nil {
					return err
				}
				result.Target = to
			}

			out, err := json.Marshal(result)
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringP("protocol", "p", "", "protocol of the input (openai, responses, anthropic)")
	cmd.Flags().String("provider", "", "normalize the request for this provider")
	cmd.Flags().String("target", "", "also encode the request in this protocol")
	return cmd
}

func encodeContext(cmd *cobra.Command) codec.EncodeContext {
	id, _ := cmd.Flags().GetString("request-id")
	if id == "" {
		id = server.NewRequestID()
	}
	model, _ := cmd.Flags().GetString("model")
	return codec.EncodeContext{RequestID: id, Model: model, Created: time.Now().Unix()}
}

func addEncodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("protocol", "p", "", "protocol to render (openai, responses, anthropic)")
	cmd.Flags().String("request-id", "", "request id to render as the primary id (default: generated)")
	cmd.Flags().String("model", "", "override the rendered model")
}

func newEncodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Render a canonical response in a protocol",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := protocolFlag(cmd)
			if err != nil {
				return err
			}
			body, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var resp domain.ChatResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			out, err := a.translator.EncodeResponse(api, &resp, encodeContext(cmd))
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), out)
		},
	}
	addEncodeFlags(cmd)
	return cmd
}

func newStreamCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream [file]",
		Short: "Render a JSON array of canonical stream events as server-sent events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := protocolFlag(cmd)
			if err != nil {
				return err
			}
			body, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			events, err := domain.UnmarshalStreamEvents(body)
			if err != nil {
				return fmt.Errorf("parse events: %w", err)
			}
			return a.translator.EncodeStream(cmd.OutOrStdout(), api, events, encodeContext(cmd))
		},
	}
	addEncodeFlags(cmd)
	return cmd
}
