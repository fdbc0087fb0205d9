package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"soapcore/internal/config"
	"soapcore/internal/core"
	"soapcore/internal/platform/logging"
	"soapcore/pkg/domain"
)

func newFetchCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <userID>",
		Short: "Hydrate the cache with a user, their properties and their hub's reports",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			rep, err := a.client.InitialFetch(cmd.Context(), args[0])
			printReport(cmd.OutOrStdout(), rep)
			if err != nil {
				return err
			}
			printCounts(cmd.OutOrStdout(), a.store.Counts())
			return nil
		}),
	}
}

// loginSecrets is read from SOAPCORE_PASSWORD and cleared from the
// environment afterwards.
type loginSecrets struct {
	Password string `env:"PASSWORD,required,unset"`
}

func newLoginCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and cache the session user (password from SOAPCORE_PASSWORD)",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			var secrets loginSecrets
			if err := env.ParseWithOptions(&secrets, env.Options{Prefix: config.EnvPrefix}); err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			rep, err := a.client.LogIn(cmd.Context(), domain.LogInInput{Email: args[0], Password: secrets.Password})
			printReport(cmd.OutOrStdout(), rep)
			if err != nil {
				return err
			}
			user, _ := a.store.SessionUser()
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s) hub=%s\n", user.ID, logging.MaskEmail(user.Email), user.HubID)
			return nil
		}),
	}
}

func newPropertyCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "property <id>",
		Short: "Fetch one property",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			rep, err := a.client.PropertyByID(cmd.Context(), args[0])
			printReport(cmd.OutOrStdout(), rep)
			if err != nil {
				return err
			}
			p, ok := a.store.GetProperty(args[0])
			if !ok {
				return fmt.Errorf("property %s was not returned", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\trooms=%d hub=%s contract=%s\n", p.ID, p.Name, p.Rooms, p.HubID, p.ContractID)
			return nil
		}),
	}
}

func newPickupsCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "pickups <propertyID>",
		Short: "Fetch the pickups of a property with their cartons",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			rep, err := a.client.PickupsByPropertyID(cmd.Context(), args[0])
			printReport(cmd.OutOrStdout(), rep)
			if err != nil {
				return err
			}
			for _, ref := range rep.Upserted {
				if ref.Type != domain.EntityPickup {
					continue
				}
				p, _ := a.store.GetPickup(ref.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tready=%s cartons=%d\n", p.ID, p.Status, p.ReadyDate, len(a.store.PickupCartons(p.ID)))
			}
			return nil
		}),
	}
}

func newImpactCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "impact <propertyID>",
		Short: "Fetch impact stats and attach them to the cached property",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			// Impact stats attach to a cached property, so load it first.
			if _, err := a.client.PropertyByID(cmd.Context(), args[0]); err != nil {
				return err
			}
			rep, err := a.client.ImpactStatsByPropertyID(cmd.Context(), args[0])
			printReport(cmd.OutOrStdout(), rep)
			if err != nil {
				return err
			}
			p, _ := a.store.GetProperty(args[0])
			if p.Impact == nil {
				return nil
			}
			s := p.Impact
			fmt.Fprintf(cmd.OutOrStdout(), "soap=%d linens=%d bottles=%d paper=%d people=%d women=%d\n",
				s.SoapRecycled, s.LinensRecycled, s.BottlesRecycled, s.PaperRecycled, s.PeopleServed, s.WomenEmployed)
			return nil
		}),
	}
}

func newReportsCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "reports <hubID>",
		Short: "Fetch the production reports of a hub",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			rep, err := a.client.ProductionReportsByHubID(cmd.Context(), args[0])
			printReport(cmd.OutOrStdout(), rep)
			if err != nil {
				return err
			}
			for _, r := range a.store.HubProductionReports(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tbars=%d soapmakers=%d hours=%d\n", r.ID, r.Date, r.BarsProduced, r.SoapmakersWorked, r.SoapmakerHours)
			}
			return nil
		}),
	}
}

func newDeleteReportCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-report <id>",
		Short: "Delete a production report",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			rep, err := a.client.DeleteProductionReport(cmd.Context(), domain.DeleteProductionReportInput{ID: args[0]})
			printReport(cmd.OutOrStdout(), rep)
			return err
		}),
	}
}

func newSnapshotCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{Use: "snapshot", Short: "Archive or restore the entity cache"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "export",
			Short: "Write the cache to the blob store",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
				archiver, err := a.archiver(cmd.Context())
				if err != nil {
					return err
				}
				info, err := archiver.Export(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %s (%d bytes)\n", info.Key, info.Size)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "restore",
			Short: "Load the newest archive into the cache",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
				archiver, err := a.archiver(cmd.Context())
				if err != nil {
					return err
				}
				info, err := archiver.RestoreLatest(cmd.Context())
				if err != nil {
					return err
				}
				if a.persist != nil {
					if err := a.persist.Persist(cmd.Context()); err != nil {
						return fmt.Errorf("persist restored cache: %w", err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", info.Key)
				printCounts(cmd.OutOrStdout(), a.store.Counts())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List archives, oldest first",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
				archiver, err := a.archiver(cmd.Context())
				if err != nil {
					return err
				}
				infos, err := archiver.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, info := range infos {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", info.Key, info.Size, info.LastModified.Format(time.RFC3339))
				}
				return nil
			}),
		},
	)
	return cmd
}

func newServeMetricsCmd(run runner) *cobra.Command {
	var (
		addr     string
		userID   string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Expose client metrics on /metrics, optionally refreshing a user's data on an interval",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				a.logger.Info("serving metrics", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			if userID != "" {
				g.Go(func() error {
					refreshLoop(ctx, a, userID, interval)
					return nil
				})
			}
			return g.Wait()
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", ":9464", "listen address")
	cmd.Flags().StringVar(&userID, "user", "", "user ID to re-fetch on every tick")
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "refresh interval")
	return cmd
}

// refreshLoop runs the initial fetch right away and then on every tick.
// Failures are logged and counted by the metrics recorder.
func refreshLoop(ctx context.Context, a *app, userID string, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		rep, err := a.client.InitialFetch(ctx, userID)
		if err != nil && ctx.Err() == nil {
			a.logger.Error("refresh failed", "user", userID, "error", err)
		} else if err == nil {
			a.logger.Debug("refreshed", "user", userID, "upserted", len(rep.Upserted), "warnings", len(rep.Warnings))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func printReport(w io.Writer, rep core.Report) {
	byType := map[domain.EntityType]int{}
	for _, ref := range rep.Upserted {
		byType[ref.Type]++
	}
	fmt.Fprintf(w, "%s: %d upserted", rep.Operation, len(rep.Upserted))
	for _, t := range sortedTypes(byType) {
		fmt.Fprintf(w, " %s=%d", t, byType[t])
	}
	fmt.Fprintln(w)
	for _, warning := range rep.Warnings {
		fmt.Fprintf(w, "warning: %v\n", warning)
	}
}

func printCounts(w io.Writer, counts map[domain.EntityType]int) {
	for _, t := range sortedTypes(counts) {
		fmt.Fprintf(w, "%s\t%d\n", t, counts[t])
	}
}

func sortedTypes(m map[domain.EntityType]int) []domain.EntityType {
	out := make([]domain.EntityType, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
