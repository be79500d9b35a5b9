// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"asia2tv/internal/config"
	"asia2tv/internal/extract"
	"asia2tv/internal/httputil"
	applog "asia2tv/internal/logger"
	"asia2tv/internal/provider"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagDownload string
	flagLanguage string
	flagNoSubs   bool
	flagProfile  string
	flagBase     string
	flagQuality  string
	flagPlayer   string
	flagContinue bool
	flagJSON     bool
	flagDebug    bool
)

var (
	// cfg holds the loaded configuration (merged: defaults < config file < flags).
	cfg *config.Config

	logger *log.Logger
	client *httputil.Client
	site   *provider.Site
)

var rootCmd = &cobra.Command{
	Use:   "asia2tv [query]",
	Short: "Watch Asian dramas and movies from asia2tv in the terminal",
	Long: `asia2tv searches and browses the asia2tv catalog, resolves the players of an
episode into direct streams, and plays them with mpv/vlc or downloads them with ffmpeg.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: setup,
	RunE:              searchRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if isCancelled(err) {
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDownload, "download", "d", "", "Download to path instead of playing (- for download_dir)")
	pf.StringVarP(&flagLanguage, "language", "l", "", "Subtitle language (default: arabic)")
	pf.BoolVarP(&flagNoSubs, "no-subs", "n", false, "Disable subtitles")
	pf.StringVarP(&flagProfile, "profile", "p", "", "Markup profile: "+strings.Join(provider.BuiltinNames(), " | "))
	pf.StringVar(&flagBase, "base", "", "Site root URL")
	pf.StringVarP(&flagQuality, "quality", "q", "", "Video quality: best | 360 | 480 | 720 | 1080")
	pf.StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")
	pf.BoolVarP(&flagContinue, "continue", "c", false, "Auto-resume from history")
	pf.BoolVarP(&flagJSON, "json", "j", false, "Print results as JSON instead of prompting")
	pf.BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads and merges configuration (defaults < config file < CLI flags)
// and builds the logger, HTTP client and site adapter shared by all commands.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagProfile != "" {
		cfg.Profile = flagProfile
	}
	if flagBase != "" {
		cfg.Base = flagBase
	}
	if flagQuality != "" {
		cfg.Quality = flagQuality
	}
	if flagLanguage != "" {
		cfg.SubsLanguage = flagLanguage
	}
	if flagDebug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = applog.New(os.Stderr, cfg.Debug)

	profile, err := cfg.SiteProfile()
	if err != nil {
		return err
	}
	client = httputil.NewClient(cfg.HTTP())
	site, err = provider.NewSite(provider.Options{
		Base:     cfg.Base,
		Profile:  profile,
		Client:   client,
		Resolver: extract.Default(client, cfg.Extractors),
		Logger:   logger,
		Workers:  cfg.Workers,
		NextPage: cfg.NextPage,
	})
	if err != nil {
		return fmt.Errorf("creating site: %w", err)
	}

	logger.Debug("configured", "base", cfg.Base, "profile", cfg.Profile, "workers", cfg.Workers)
	return nil
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version",
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "asia2tv", Version)
	},
}
