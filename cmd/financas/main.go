package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"financas/internal/auth"
	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/log"
	"financas/internal/services"
)

// rootOptions holds the persistent flags and what PersistentPreRunE builds
// from them.
type rootOptions struct {
	output   string
	apiURL   string
	logLevel string
	backend  string

	cfg    *config.Config
	logger *log.Logger
	out    *cli.Renderer
	in     *bufio.Reader
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "financas",
		Short: "Personal finance client",
		Long: `financas talks to the finance REST API: sign in, see the dashboard,
list and search transactions, add income, expenses and investments.

Configuration comes from the environment (a .env file is loaded when
present). Flags override the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.output, "output", "o", "text", "Output format: text, json or yaml")
	flags.StringVar(&opts.apiURL, "api-url", "", "API base URL (or set FINANCAS_API_URL)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (or set FINANCAS_LOG_LEVEL)")
	flags.StringVar(&opts.backend, "backend", "", "Session backend: memory, file, sqlite (or set FINANCAS_SESSION_BACKEND)")

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newSessionCmd(opts),
		newDashboardCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newAddCmd(opts),
		newDeleteCmd(opts),
		newCategoriesCmd(opts),
		newExportCmd(opts),
		newWatchCmd(opts),
	)
	return rootCmd
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	cli.LoadEnvFile()

	format, err := cli.ParseFormat(o.output)
	if err != nil {
		return err
	}

	cfg, err := cli.LoadAndValidateConfig(func(c *config.Config) {
		if o.apiURL != "" {
			c.APIURL = o.apiURL
		}
		if o.logLevel != "" {
			c.LogLevel = o.logLevel
		}
		if o.backend != "" {
			c.SessionBackend = strings.ToLower(o.backend)
		}
	})
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = cli.SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	o.out = cli.NewRenderer(cmd.OutOrStdout(), format)
	o.in = bufio.NewReader(cmd.InOrStdin())
	return nil
}

// prompt writes label to stderr and reads one trimmed line.
func (o *rootOptions) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := o.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

// describe turns the errors users are expected to see into short messages.
func describe(err error) string {
	var loginErr *auth.LoginError
	switch {
	case errors.Is(err, services.ErrSessionExpired):
		return services.ErrSessionExpired.Error()
	case errors.Is(err, services.ErrNotAuthenticated):
		return "not logged in: run 'financas login'"
	case errors.As(err, &loginErr):
		return loginErr.Message
	default:
		return err.Error()
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}
