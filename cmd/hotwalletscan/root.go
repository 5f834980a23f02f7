package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/hotwalletscan/internal/config"
	"github.com/nao1215/hotwalletscan/internal/log"
)

// NewRootCmd creates the root command for hotwalletscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotwalletscan",
		Short: "Discover the hot wallets of an entity across chains",
		Long: `hotwalletscan crawls an intelligence API for outgoing transfers of an entity
on many chains and collects every sending address labelled "Hot Wallet" that
belongs to the entity.

The API key is read from --api-key, the ` + config.APIKeyEnv + ` environment variable
(a .env file in the current directory is loaded), or the configuration file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.Bool("log-json", false, "Write logs as JSON")
	pf.StringP("config", "c", "",
		"Configuration file path (default: .hotwalletscan in current or home directory)")
	pf.String("api-key", "", "API key (overrides "+config.APIKeyEnv+")")
	pf.String("base-url", "", "API base URL (default "+config.DefaultBaseURL+")")
	pf.String("forward-url", "", "Forwarding proxy used when direct requests fail")
	pf.String("socks-proxy", "", "SOCKS5 proxy for direct requests (host:port)")
	pf.String("db-dir", "", "History database directory (default: XDG data directory)")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewChainsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration shared by every command. Sources are
// applied in order: defaults, configuration file, .env and environment,
// then flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	flags := cmd.Flags()
	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.ApplyEnv()

	for name, dst := range map[string]*string{
		"api-key":     &cfg.APIKey,
		"base-url":    &cfg.BaseURL,
		"forward-url": &cfg.ForwardURL,
		"socks-proxy": &cfg.SOCKSProxy,
		"db-dir":      &cfg.DBDir,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger creates the logger for a command. The API key is registered as
// a secret so it never reaches log output.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return log.New(cmd.ErrOrStderr(), log.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.LogJSON,
		Secrets: []string{cfg.APIKey},
	})
}
