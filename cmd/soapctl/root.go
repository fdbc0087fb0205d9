package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
)

func newRootCmd(stderr io.Writer) *cobra.Command {
	var opts rootOptions
	root := &cobra.Command{
		Use:           "soapctl",
		Short:         "Query the soap recycling backend and manage the local entity cache",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (SOAPCORE_* env vars override it)")
	root.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "GraphQL endpoint URL")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	// run opens the app for one command and always closes it.
	run := func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts, stderr)
			if err != nil {
				return err
			}
			defer func() {
				retErr = errors.Join(retErr, a.close(context.WithoutCancel(ctx)))
			}()
			return fn(cmd, a, args)
		}
	}

	root.AddCommand(
		newFetchCmd(run),
		newLoginCmd(run),
		newPropertyCmd(run),
		newPickupsCmd(run),
		newImpactCmd(run),
		newReportsCmd(run),
		newDeleteReportCmd(run),
		newSnapshotCmd(run),
		newServeMetricsCmd(run),
	)
	return root
}

type runner func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error
