package main

import (
	"errors"
	"os"

	"github.com/brizzai/resy-client/internal/app"
	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/auth"
	"github.com/brizzai/resy-client/internal/config"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/reservations"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	Execute()
}

// errSilent marks errors already reported to the user
var errSilent = errors.New("silent")

var verbose bool

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "resy",
	Short: "Log in to Resy and manage your reservations",
	Long: `resy signs you in with your phone number, lists your past and upcoming
reservations and can run a small HTTP proxy in front of the Resy API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	}

	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func init() {
	config.BindFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print logs to stderr")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd, reservationsCmd, serveCmd)
}

func reportError(err error) {
	if errors.Is(err, errSilent) {
		return
	}
	pterm.Error.Println(err)
	if apperror.KindOf(err) == apperror.KindAuthenticationError {
		pterm.Info.Println("Your session is missing or expired, run `resy login` to sign in again")
	}
}

// loadConfig reads the configuration and sets up logging. Interactive commands stay quiet
// unless --verbose is given or a log file is configured.
func loadConfig(cmd *cobra.Command, quiet bool) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	if quiet && !verbose {
		if cfg.Logging.OutputPath == "" {
			return cfg, nil
		}
		cfg.Logging.DisableConsole = true
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

// clientComponents resolves the login flow and the aggregator for the interactive commands
func clientComponents(cmd *cobra.Command) (*auth.Flow, *reservations.Aggregator, error) {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return nil, nil, err
	}

	var (
		flow *auth.Flow
		agg  *reservations.Aggregator
	)
	if _, err := app.New(app.Client(cfg), fx.NopLogger, &flow, &agg); err != nil {
		return nil, nil, err
	}
	return flow, agg, nil
}
