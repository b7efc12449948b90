package cli

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-storefront/apiclient"
	"github.com/jrsteele09/go-storefront/auth"
	"github.com/jrsteele09/go-storefront/catalog"
	"github.com/jrsteele09/go-storefront/guard"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/internal/logging"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/spf13/cobra"
)

// app holds what every command works with. It is built once the flags are parsed.
type app struct {
	envFile     string
	apiURL      string
	sessionFile string

	config  config.Config
	session *sessions.Store
	auth    *auth.Service
	catalog *catalog.Service
	guard   *guard.Guard
}

// NewRootCommand returns the storefront command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Terminal client for the storefront API",
		Long: `storefront logs in against the storefront REST API and browses the product catalog.

The session is kept in a JSON file (default $HOME/.storefront/session.json) and
restored on every run, so a login lasts until logout or until the API rejects it.

Examples:
  storefront login --username jane
  storefront profile
  storefront products
  storefront logout`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env", "", "path to a .env file")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api", "", "REST API base URL (default $API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&a.sessionFile, "session-file", "", "session file (default $SESSION_FILE)")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newProfileCmd(a),
		newProductsCmd(a),
	)
	return rootCmd
}

// ExecuteContext runs the command tree with ctx
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	a.config = config.New()
	logging.SetupWriter(a.config.GetEnv(), a.config.GetLogLevel(), cmd.ErrOrStderr())

	apiURL := a.apiURL
	if apiURL == "" {
		apiURL = a.config.GetAPIBaseURL()
	}
	sessionFile := a.sessionFile
	if sessionFile == "" {
		sessionFile = a.config.GetSessionFile()
	}

	repo, err := storage.NewFileRepo(sessionFile)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	a.session = sessions.NewStore(repo)
	if err := a.session.Restore(cmd.Context()); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	client, err := apiclient.New(apiURL,
		apiclient.WithTimeout(a.config.GetAPITimeout()),
		apiclient.WithMaxResponseSize(a.config.GetAPIMaxResponseSize()),
		apiclient.WithUserAgent(a.config.GetAppName()),
		apiclient.WithObserver(apiclient.LogObserver{}),
	)
	if err != nil {
		return err
	}
	client = client.WithCredentials(a.session)

	if a.auth, err = auth.NewService(client); err != nil {
		return err
	}
	a.catalog = catalog.NewService(client, a.config.GetPageSize())
	a.guard = guard.New()
	return nil
}
