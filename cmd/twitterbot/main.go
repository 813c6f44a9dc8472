package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	twitterbot "github.com/anatolykoptev/go-twitterbot"
)

var (
	configPath string
	logFile    string
	logLevel   string

	bot       *twitterbot.Bot
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "twitterbot",
	Short: "Query helpers for a single authenticated Twitter account",
	Long: `twitterbot signs in with OAuth1 credentials, verifies them and
answers simple questions: the latest tweet of an account, the replies to a
tweet, and whether this account has already replied to it.

Credentials come from TWITTER_CONSUMER_KEY, TWITTER_CONSUMER_SECRET,
TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET (a .env file is read if
present) or from the --config YAML file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Activity log path (default from LOG_FILE or bot.log)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// setup loads config, opens the activity log and builds the verified bot.
func setup(cmd *cobra.Command, args []string) error {
	if skipSetup(cmd) {
		return nil
	}
	cfg, err := Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setString(&cfg.Log.Path, logFile)
	setString(&cfg.Log.Level, logLevel)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if err := closeLog(); err != nil {
		return fmt.Errorf("close previous log: %w", err)
	}
	logCloser, err = twitterbot.SetupLogging(cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	cfg.Bot.Out = cmd.OutOrStdout()
	bot, err = twitterbot.NewBot(cmd.Context(), cfg.Credentials, cfg.Client, cfg.Bot)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	return nil
}

// skipSetup is true for cobra's built-in commands, which need no credentials.
func skipSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

// closeLog closes the activity log if one is open. Cobra skips post-run
// hooks when a command fails, so main calls this on every exit path.
func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if cerr := closeLog(); cerr != nil {
		fmt.Fprintln(os.Stderr, "close log:", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
