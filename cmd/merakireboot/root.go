package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"merakireboot/internal/dashboard"
	"merakireboot/internal/history"
	"merakireboot/internal/notifications"
	"merakireboot/internal/reboot"
	"merakireboot/internal/services"
)

type rebootFlags struct {
	apiKey   string
	org      string
	network  string
	interval string
	legacyF  string
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags rebootFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "merakireboot",
		Short:         "Reboot every device in a Meraki Dashboard network",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError(cmd, "unexpected argument %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReboot(cmd, ctx, flags)
		},
	}

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == rootCmd {
			printUsage(cmd.OutOrStdout())
			return
		}
		defaultHelp(cmd, args)
	})
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(cmd, "%v", err)
	})

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.apiKey, "api-key", "k", "", "Dashboard API key")
	rootCmd.Flags().StringVarP(&flags.org, "org", "o", "", "Organization name (case-sensitive)")
	rootCmd.Flags().StringVarP(&flags.network, "network", "n", "", "Network identifier")
	rootCmd.Flags().StringVarP(&flags.interval, "interval", "t", "", "Seconds to wait after each reboot")
	rootCmd.Flags().StringVarP(&flags.legacyF, "legacy-f", "f", "", "Accepted for compatibility; ignored")
	_ = rootCmd.Flags().MarkHidden("legacy-f")

	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))

	return rootCmd
}

// parseInterval reads a whole, non-negative number of seconds in base 10.
func parseInterval(value string) (time.Duration, error) {
	seconds, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if seconds < 0 {
		return 0, strconv.ErrRange
	}
	if seconds > int64(time.Duration(1<<63-1)/time.Second) {
		return 0, strconv.ErrRange
	}
	return time.Duration(seconds) * time.Second, nil
}

func runReboot(cmd *cobra.Command, ctx *commandContext, flags rebootFlags) error {
	apiKey := strings.TrimSpace(flags.apiKey)
	org := flags.org
	network := strings.TrimSpace(flags.network)
	if apiKey == "" || strings.TrimSpace(org) == "" || network == "" || strings.TrimSpace(flags.interval) == "" {
		return usageError(cmd, "-k, -o, -n and -t are required")
	}
	interval, err := parseInterval(flags.interval)
	if err != nil {
		return usageError(cmd, "invalid interval %q", flags.interval)
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}

	client, err := dashboard.NewFromConfig(cfg, apiKey, logger)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "dashboard", "init client", "", err)
	}

	opts := reboot.Options{
		Client:             client,
		Out:                cmd.OutOrStdout(),
		Logger:             logger,
		Notifier:           notifications.NewService(cfg),
		AbortOnListFailure: cfg.Reboot.AbortOnListFailure,
	}
	if cfg.Reboot.SingleRun {
		opts.LockDir = cfg.Paths.StateDir
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "history", "open", cfg.History.Path, err)
		}
		defer store.Close()
		opts.Ledger = store
	}

	runner, err := reboot.NewRunner(opts)
	if err != nil {
		return err
	}
	_, err = runner.Run(cmd.Context(), reboot.Request{
		Organization: org,
		NetworkID:    network,
		Interval:     interval,
	})
	return err
}
