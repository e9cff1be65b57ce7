package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"insightwatch/internal/api"
	"insightwatch/internal/config"
	"insightwatch/internal/guard"
	"insightwatch/internal/logging"
	"insightwatch/internal/scope"
	"insightwatch/internal/session"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	client *api.Client
	sess   *session.Session
	sel    *scope.Scope
)

var rootCmd = &cobra.Command{
	Use:   "insightwatch",
	Short: "Insightwatch is a terminal client for the workforce monitoring dashboard",
	Long: `A headless client for the Insightwatch monitoring backend: session handling,
subject selection, paginated activity feeds and parallel analytics queries,
driven from the terminal instead of the web dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Console-only logger first so config loading can log; the rotating
		// file sink is added once the data path is known.
		logging.Init(verbose, "")

		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		logging.Init(verbose, cfg.LogDir())

		// The client reads the live token through the session; the session
		// talks to the backend through the client. The closure breaks the
		// construction cycle.
		client = api.NewClient(api.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.RequestTimeout}, func() string {
			if sess == nil {
				return ""
			}
			return sess.Token()
		})
		sess = session.New(client, &session.FileTokenStore{Path: cfg.TokenPath()})
		sel = scope.New()

		// Logging out must also drop the selected subject, in memory and on
		// disk: a stale scope must not leak across identities.
		sess.OnLogout(func() {
			sel.Clear()
			clearSavedSelection()
		})

		if err := sess.Restore(); err != nil {
			log.Warn().Err(err).Msg("Failed to restore session from token slot")
		}
		restoreSelection()

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Bool("authenticated", sess.IsAuthenticated()).
			Msg("insightwatch starting")
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// snapshot captures the current auth and selection state for the route guard.
func snapshot() guard.Snapshot {
	return guard.Snapshot{
		Authenticated: sess.IsAuthenticated(),
		HasSelection:  sel.HasSelection(),
		Role:          sess.Role(),
	}
}

// ensureAllowed evaluates the route guard for the dashboard path a command
// corresponds to and converts anything but Allow into a user-facing error.
func ensureAllowed(path string) error {
	switch d := guard.Decide(snapshot(), path); d.Kind {
	case guard.RedirectLogin:
		return fmt.Errorf("not logged in (wanted %s); run `insightwatch login` first", d.From)
	case guard.RedirectScopeRequired:
		return fmt.Errorf("no subject selected; run `insightwatch select <key>` (see `insightwatch users list`)")
	case guard.AccessDenied:
		return fmt.Errorf("access denied: role %s cannot use subject management", sess.Role())
	default:
		return nil
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
