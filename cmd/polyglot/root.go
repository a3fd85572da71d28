package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/polyglot-translate/internal/config"
	"github.com/tjfontaine/polyglot-translate/internal/logging"
	"github.com/tjfontaine/polyglot-translate/internal/provider/profile"
	"github.com/tjfontaine/polyglot-translate/internal/translate"
)

// app is the state every subcommand shares once flags are parsed.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	translator *translate.Translator
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "polyglot",
		Short:         "Translate between LLM API protocols",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(a),
		newDecodeCmd(a),
		newEncodeCmd(a),
		newStreamCmd(a),
		newProfilesCmd(a),
		newCapabilitiesCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

	reg, err := profile.Load(cfg.Profiles.Path)
	if err != nil {
		return err
	}
	if cfg.Profiles.Path != "" {
		a.logger.Debug("loaded provider profiles",
			slog.String("path", cfg.Profiles.Path),
			slog.Int("profiles", reg.Len()))
	}
	a.translator = translate.New(reg)
	return nil
}
