// Command tubot is the terminal client: account commands and the chat REPL.
package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/tubot/internal/adapters/identity/api"
	"github.com/PabloGalante/tubot/internal/adapters/identity/supabase"
	"github.com/PabloGalante/tubot/internal/adapters/storage/localstate"
	"github.com/PabloGalante/tubot/internal/config"
	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
	"github.com/PabloGalante/tubot/internal/shell"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	configPath string
	apiURL     string
	model      string
	local      bool
	debug      bool

	cfg config.CLIConfig
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "tubot",
		Short:        "Chat with your TuBot bots from the terminal",
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: <user config dir>/tubot/config.yaml)")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "tubot-api base URL")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log debug output to stderr")

	root.AddCommand(
		newSignUpCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoAmICmd(opts),
		newChatCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *options) load(cmd *cobra.Command) error {
	lvl := zerolog.WarnLevel
	if o.debug {
		lvl = zerolog.DebugLevel
	}
	observability.SetOutput(zerolog.ConsoleWriter{Out: os.Stderr}, lvl)

	if o.configPath == "" {
		dir, err := config.DefaultCLIDir()
		if err != nil {
			return err
		}
		o.configPath = filepath.Join(dir, "config.yaml")
	}

	cfg, err := config.LoadCLI(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = o.apiURL
	}
	if o.model != "" {
		cfg.DefaultModel = o.model
	}
	o.cfg = cfg
	observability.Logger().Debug().Str("config", o.configPath).Str("api", cfg.APIURL).Msg("configuration loaded")
	return nil
}

func (o *options) gateway() domain.IdentityGateway {
	if o.cfg.Identity == "supabase" {
		return supabase.New(o.cfg.SupabaseURL, o.cfg.SupabaseKey)
	}
	return api.New(o.cfg.APIURL)
}

func (o *options) account() *shell.Account {
	return shell.NewAccount(o.gateway(), localstate.New(o.cfg.StateDir))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("tubot " + version)
		},
	}
}
