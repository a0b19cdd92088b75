// Command trailctl inspects trail tables and loads them into Postgres.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"backend-trailview/internal/auth"
	"backend-trailview/internal/config"
	"backend-trailview/internal/db"
	"backend-trailview/internal/logging"
	"backend-trailview/internal/selection"
	"backend-trailview/internal/trail"
	"backend-trailview/internal/view/elevation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNoPostgres = errors.New("POSTGRES_URL not configured")

// openQuerier connects to Postgres and returns a close func.
var openQuerier = func(cfg config.Config) (db.Querier, func(), error) {
	pool, err := db.ConnectPostgres(cfg)
	if err != nil {
		return nil, nil, err
	}
	if pool == nil {
		return nil, nil, errNoPostgres
	}
	return pool, pool.Close, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:           "trailctl",
		Short:         "inspect and import trail tables",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(logLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newCuratorCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "lists the trails of a CSV table",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := trail.LoadCSVFile(csvPath)
			if err != nil {
				return err
			}
			store := trail.NewStore(rows)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMILES\tWAYPOINTS")
			for _, t := range store.All() {
				waypoints := "malformed"
				if track, err := t.Track(); err == nil {
					waypoints = fmt.Sprint(track.Len())
				}
				fmt.Fprintf(w, "%s\t%g\t%s\n", t.Name, t.TotalRealDistance, waypoints)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "trails.csv", "trail table")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var (
		csvPath       string
		width, height float64
	)
	cmd := &cobra.Command{
		Use:   "profile NAME",
		Short: "prints the elevation profile of one trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := trail.LoadCSVFile(csvPath)
			if err != nil {
				return err
			}
			t, err := trail.NewStore(rows).Lookup(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			profile, err := t.Profile()
			if err != nil {
				return err
			}
			track, _ := t.Track()
			chart := elevation.Build(*t, track, selection.State{Trail: t}, width, height)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trail:     %s\n", profile.Name)
			fmt.Fprintf(out, "waypoints: %d\n", profile.Waypoints)
			fmt.Fprintf(out, "elevation: %g - %g ft\n", profile.MinElevation, profile.MaxElevation)
			fmt.Fprintf(out, "domain:    [%d, %d]\n", profile.DomainStart, profile.DomainEnd)
			fmt.Fprintf(out, "span:      %.2f miles\n", profile.SpanMiles)
			fmt.Fprintf(out, "length:    %s\n", chart.Length)
			fmt.Fprintf(out, "path:      %s\n", chart.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "trails.csv", "trail table")
	cmd.Flags().Float64Var(&width, "width", 320, "chart width in pixels")
	cmd.Flags().Float64Var(&height, "height", 100, "chart height in pixels")
	return cmd
}

func newImportCmd() *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "upserts a CSV table into the trails table",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := trail.LoadCSVFile(csvPath)
			if err != nil {
				return err
			}
			q, closeFn, err := openQuerier(config.Load())
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := trail.NewService(q).Import(context.Background(), rows)
			if err != nil {
				return err
			}
			logging.L().Info("trails imported", zap.String("csv", csvPath), zap.Int("count", n))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d trails\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "trails.csv", "trail table")
	return cmd
}

func newCuratorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curator",
		Short: "manages curator accounts",
	}
	var password string
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "creates a curator allowed to import trails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			q, closeFn, err := openQuerier(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			c, err := auth.NewService(cfg.JWTSecret, q).CreateCurator(context.Background(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created curator %s (%s)\n", c.Username, c.ID)
			return nil
		},
	}
	add.Flags().StringVar(&password, "password", "", "initial password")
	_ = add.MarkFlagRequired("password")
	cmd.AddCommand(add)
	return cmd
}
