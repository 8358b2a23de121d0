package main

import (
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PabloGalante/tubot/internal/adapters/completion"
	"github.com/PabloGalante/tubot/internal/adapters/identity/api"
	"github.com/PabloGalante/tubot/internal/adapters/llm"
	"github.com/PabloGalante/tubot/internal/app/chat"
	"github.com/PabloGalante/tubot/internal/config"
	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
	"github.com/PabloGalante/tubot/internal/shell"
)

func newChatCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rec, ok, err := opts.account().Current()
			if err != nil {
				return err
			}
			if !ok {
				return errSignedOut
			}

			completer, err := opts.completer(cmd)
			if err != nil {
				return err
			}

			var remote shell.RemoteRoster
			if !opts.local && opts.cfg.Identity == "api" && rec.AccessToken() != "" {
				remote = api.New(opts.cfg.APIURL).Bots(rec.AccessToken())
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			history := filepath.Join(opts.cfg.StateDir, "history")
			if f, err := os.Open(history); err == nil {
				_, _ = line.ReadHistory(f)
				f.Close()
			}
			defer func() {
				if f, err := os.OpenFile(history, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
					_, _ = line.WriteHistory(f)
					f.Close()
				}
			}()

			sh := shell.New(line, cmd.OutOrStdout(), shell.Config{
				User:      rec.User,
				Completer: completer,
				Remote:    remote,
				Model:     opts.cfg.DefaultModel,
				Timeout:   opts.cfg.RequestTimeout,
				Profile:   colorProfile(),
			})
			if err := sh.Load(ctx); err != nil {
				return userError(err)
			}
			return sh.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&opts.local, "local", false, "answer in-process with the provider from TUBOT_* env vars instead of tubot-api")
	cmd.Flags().StringVar(&opts.model, "model", "", "model to start conversations with")
	return cmd
}

// completer talks to tubot-api, or runs the chat service in-process with
// --local.
func (o *options) completer(cmd *cobra.Command) (domain.Completer, error) {
	if !o.local {
		return completion.New(o.cfg.APIURL), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client, err := llm.FromConfig(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	observability.Logger().Debug().Str("provider", cfg.LLMProvider).Msg("answering locally")
	return chat.NewService(client, cfg.LLMProvider, o.cfg.DefaultModel), nil
}

func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
