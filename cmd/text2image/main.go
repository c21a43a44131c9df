package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/studiowebux/text2image/internal/app"
	"github.com/studiowebux/text2image/internal/cli"
	"github.com/studiowebux/text2image/internal/config"
	"github.com/studiowebux/text2image/internal/journal"
	"github.com/studiowebux/text2image/internal/keybinds"
	"github.com/studiowebux/text2image/internal/logging"
	"github.com/studiowebux/text2image/internal/mock"
	"github.com/studiowebux/text2image/internal/notice"
	"github.com/studiowebux/text2image/internal/tui"
	"github.com/studiowebux/text2image/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "text2image",
	Short: "Text to image - generate images from prompts",
	Long: `text2image talks to a text-to-image service. Run without arguments to
start the interactive TUI, or use a subcommand for scripting.

Examples:
  text2image                                  # Start interactive TUI
  text2image generate "a cat in a spacesuit"  # One-shot generation
  echo "a red fox" | text2image generate      # Prompt from stdin
  text2image stats -o json --query 'total'    # Filter structured output
  text2image mock --port 5000                 # Local in-memory backend`,
	Version:       version.Current,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [prompt...]",
	Short: "Generate one image and print its URL",
	Long: `Generate one image and print its URL.

The prompt is taken from the arguments, or from stdin when piped. With neither,
a template picker is shown on a terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := cli.ReadPrompt(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		fromTemplate := false
		if prompt == "" && cli.IsTerminal(cmd.InOrStdin()) {
			prompt, err = cli.PickTemplate(cli.Templates())
			if errors.Is(err, cli.ErrSelectionCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			fromTemplate = true
		}

		return withEnv(cmd, func(env *cli.Env) error {
			return cli.Generate(cmd.Context(), env, prompt, cli.PickOrigin(fromTemplate), flagSave)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the server prompt history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent distinct prompts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			return cli.HistoryList(cmd.Context(), env)
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the server history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			confirmer := cli.Confirmer(flagYes, cmd.InOrStdin(), cmd.ErrOrStderr())
			return cli.HistoryClear(cmd.Context(), env, confirmer)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show generation statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			return cli.Stats(cmd.Context(), env)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch history and stats concurrently and report the service state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			return cli.Status(cmd.Context(), env)
		})
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <image_url>",
	Short: "Download one image (default generated_image.png)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			return cli.Download(cmd.Context(), env, args[0], flagDest)
		})
	},
}

var downloadAllCmd = &cobra.Command{
	Use:   "download-all",
	Short: "Download every generated image as a zip archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(env *cli.Env) error {
			return cli.DownloadAll(cmd.Context(), env, flagDest)
		})
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List the local journal of generation attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd, func(env *cli.Env, mgr *journal.Manager) error {
			return cli.JournalList(env, mgr, flagLimit)
		})
	},
}

var journalClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every journal entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd, func(env *cli.Env, mgr *journal.Manager) error {
			confirmer := cli.Confirmer(flagYes, cmd.InOrStdin(), cmd.ErrOrStderr())
			return cli.JournalClear(cmd.Context(), env, mgr, confirmer)
		})
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run an in-memory image service for development",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(flagLogLevel, cmd.ErrOrStderr())

		cfg := &mock.Config{Logging: true}
		if flagMockFile != "" {
			loaded, err := mock.LoadConfig(flagMockFile)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		// explicit flags win over the file
		flags := cmd.Flags()
		if flags.Changed("port") || flagMockFile == "" {
			cfg.Port = flagMockPort
		}
		if flags.Changed("host") || flagMockFile == "" {
			cfg.Host = flagMockHost
		}
		if flags.Changed("delay") {
			cfg.Delay = flagMockDelay
		}
		if flags.Changed("fail-rate") {
			cfg.FailRate = flagMockFailRate
		}
		if flags.Changed("fail-pattern") {
			cfg.FailPattern = flagMockFailPattern
		}
		return cli.RunMock(cmd.Context(), cmd.OutOrStdout(), cfg, logger)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var checker *version.Checker
		if flagCheck {
			checker = version.NewChecker()
		}
		return cli.Version(cmd.Context(), cmd.OutOrStdout(), checker)
	},
}

// Global flags
var (
	flagConfig   string
	flagBaseURL  string
	flagTimeout  string
	flagLogLevel string
	flagEnvFile  string
	flagOutput   string
	flagFilter   string
	flagQuery    string
)

// Command flags
var (
	flagSave  string
	flagDest  string
	flagYes   bool
	flagLimit int
	flagCheck bool

	flagMockFile        string
	flagMockPort        int
	flagMockHost        string
	flagMockDelay       time.Duration
	flagMockFailRate    float64
	flagMockFailPattern string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Settings file (default ./.text2image.yaml or ~/.text2image/config.yaml)")
	pf.StringVar(&flagBaseURL, "base-url", "", "Image service base URL")
	pf.StringVar(&flagTimeout, "timeout", "", "Request timeout, e.g. 30s (0 = none)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	pf.StringVar(&flagEnvFile, "env-file", "", "Load environment variables from file")
	pf.StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml)")
	pf.StringVar(&flagFilter, "filter", "", "JMESPath filter applied to JSON output")
	pf.StringVar(&flagQuery, "query", "", "JMESPath query or $(shell command) applied to JSON output")

	generateCmd.Flags().StringVarP(&flagSave, "save", "s", "", "Also save the image to this path")
	downloadCmd.Flags().StringVarP(&flagDest, "dest", "d", "", "Destination file")
	downloadAllCmd.Flags().StringVarP(&flagDest, "dest", "d", "", "Destination file")
	historyClearCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")
	journalClearCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")
	journalCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Maximum number of entries")
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check for a newer release")

	mockCmd.Flags().StringVarP(&flagMockFile, "file", "f", "", "Mock settings file (.yaml or .json)")
	mockCmd.Flags().IntVarP(&flagMockPort, "port", "p", 5000, "Port to listen on")
	mockCmd.Flags().StringVar(&flagMockHost, "host", "localhost", "Host to bind")
	mockCmd.Flags().DurationVar(&flagMockDelay, "delay", 0, "Latency added to each generation")
	mockCmd.Flags().Float64Var(&flagMockFailRate, "fail-rate", 0, "Probability (0..1) that a generation fails")
	mockCmd.Flags().StringVar(&flagMockFailPattern, "fail-pattern", "", "Prompts matching this regex always fail")

	historyCmd.AddCommand(historyListCmd, historyClearCmd)
	journalCmd.AddCommand(journalClearCmd)
	rootCmd.AddCommand(generateCmd, historyCmd, statsCmd, statusCmd, downloadCmd,
		downloadAllCmd, journalCmd, mockCmd, versionCmd)
}

// loadSettings layers defaults, the settings file, environment and flags
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := config.LoadEnvFile(flagEnvFile); err != nil {
		return nil, err
	}

	path := flagConfig
	if path == "" {
		path = config.GetSettingsFilePath()
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	settings.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		settings.BaseURL = flagBaseURL
	}
	if flags.Changed("timeout") {
		settings.Timeout = flagTimeout
	}
	if flags.Changed("log-level") {
		settings.LogLevel = flagLogLevel
	}
	return settings, nil
}

// withEnv builds a CLI session for one command and closes it afterwards
func withEnv(cmd *cobra.Command, run func(env *cli.Env) error) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	printer, err := cli.NewPrinter(cmd.OutOrStdout(), flagOutput, flagFilter, flagQuery)
	if err != nil {
		return err
	}

	logger := logging.New(settings.LogLevel, cmd.ErrOrStderr())
	session, err := app.New(app.Options{
		Settings:    settings,
		Logger:      logger,
		Notifier:    cli.Notifier(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		JournalPath: config.JournalPath,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	return run(&cli.Env{
		Session: session,
		Printer: printer,
		In:      cmd.InOrStdin(),
		ErrOut:  cmd.ErrOrStderr(),
	})
}

// withJournal is withEnv for commands that need the journal open
func withJournal(cmd *cobra.Command, run func(env *cli.Env, mgr *journal.Manager) error) error {
	return withEnv(cmd, func(env *cli.Env) error {
		if env.Session.Journal == nil {
			return errors.New("journal is disabled (set journal: true in settings)")
		}
		return run(env, env.Session.Journal)
	})
}

func runTUI(cmd *cobra.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logPath := config.LogFile
	if settings.LogFile != "" {
		if logPath, err = config.ExpandPath(settings.LogFile); err != nil {
			return err
		}
	}
	logger, closer, err := logging.OpenFile(settings.LogLevel, logPath)
	if err != nil {
		// the TUI owns the terminal; without a log file logs are dropped
		logger = logging.Discard()
	} else {
		defer closer.Close()
	}

	keys, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		logger.Warn("keybinds config rejected, using defaults", "path", config.KeybindsFile, "err", err)
		keys = keybinds.NewDefaultRegistry()
	}

	notices := notice.NewQueue()
	session, err := app.New(app.Options{
		Settings:    settings,
		Logger:      logger,
		Notifier:    notices,
		JournalPath: config.JournalPath,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	logger.Info("tui starting", "base_url", settings.BaseURL, "version", version.Current)
	return tui.Run(cmd.Context(), tui.Options{
		Session:  session,
		Notices:  notices,
		Keybinds: keys,
		Checker:  version.NewChecker(),
	})
}
