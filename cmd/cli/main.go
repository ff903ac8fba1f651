package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"gophi/adapters/httpapi"
	"gophi/app"
	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/internal/config"
	"gophi/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// analysisFlags are shared by every command that analyzes a network
type analysisFlags struct {
	network string
	state   string
	nodes   string
	measure string
	format  string
	xlsx    string
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "gophi",
		Short:        "Integrated information analysis of discrete causal networks",
		SilenceUsage: true,
	}

	flags := &analysisFlags{}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.network, "network", "basic", "Network file (YAML/JSON) or built-in example name")
	pf.StringVar(&flags.state, "state", "", "Network state, e.g. 1,0,0 (default: the file's state)")
	pf.StringVar(&flags.nodes, "nodes", "", "Subsystem nodes, e.g. 0,1 (default: all nodes)")
	pf.StringVar(&flags.measure, "measure", "", "Distance measure: EMD|L1|KLD|ENTROPY_DIFFERENCE (default: PHI_MEASURE)")
	pf.StringVar(&flags.format, "format", app.FormatText, "Output format: text|json|markdown|html")
	pf.StringVar(&flags.xlsx, "xlsx", "", "Also write the report to this XLSX file")

	rootCmd.AddCommand(
		newSIACmd(flags),
		newCESCmd(flags),
		newComplexesCmd(flags),
		newCutsCmd(flags),
		newExamplesCmd(),
		newServeCmd(),
		newCacheCmd(),
	)

	return rootCmd
}

// setup loads configuration and wires the container
func setup(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (f *analysisFlags) request() (app.AnalysisRequest, error) {
	req := app.AnalysisRequest{Network: f.network, Measure: f.measure}
	if f.state != "" {
		state, err := core.ParseNodes(f.state)
		if err != nil {
			return req, fmt.Errorf("invalid --state: %w", err)
		}
		req.State = state
	}
	if f.nodes != "" {
		nodes, err := core.ParseNodes(f.nodes)
		if err != nil {
			return req, fmt.Errorf("invalid --nodes: %w", err)
		}
		req.Nodes = nodes
	}
	return req, nil
}

// emit renders the report to out and, with --xlsx, to a workbook
func (f *analysisFlags) emit(out io.Writer, report app.Report) error {
	if err := app.Render(out, report, f.format); err != nil {
		return err
	}
	if f.xlsx != "" {
		if err := app.WriteXLSX(f.xlsx, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", f.xlsx)
	}
	return nil
}

// runAnalysis runs one report-producing analysis inside a wired environment
func runAnalysis(cmd *cobra.Command, flags *analysisFlags, run func(context.Context, *app.AnalysisService, app.AnalysisRequest) (app.Report, error)) error {
	req, err := flags.request()
	if err != nil {
		return err
	}
	c, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Shutdown(cmd.Context())

	report, err := run(cmd.Context(), c.Analysis, req)
	if err != nil {
		return err
	}
	return flags.emit(cmd.OutOrStdout(), report)
}

func newSIACmd(flags *analysisFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sia",
		Short: "Compute big phi and the minimum information partition of a subsystem",
		Long: `Run the system irreducibility analysis of a subsystem.

Engine options come from PHI_* environment variables (or .env), e.g.
PHI_SYSTEM_CUTS=CONCEPT_STYLE, PHI_CUT_ONE_APPROXIMATION=true.

Example: gophi sia --network basic --state 1,0,0 --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, flags, func(ctx context.Context, svc *app.AnalysisService, req app.AnalysisRequest) (app.Report, error) {
				report, err := svc.SIA(ctx, req)
				return report, err
			})
		},
	}
}

func newCESCmd(flags *analysisFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ces",
		Short: "List the concepts of a subsystem's cause-effect structure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, flags, func(ctx context.Context, svc *app.AnalysisService, req app.AnalysisRequest) (app.Report, error) {
				report, err := svc.CES(ctx, req)
				return report, err
			})
		},
	}
}

func newComplexesCmd(flags *analysisFlags) *cobra.Command {
	var all, major bool

	cmd := &cobra.Command{
		Use:   "complexes",
		Short: "Analyze the candidate subsystems of a network",
		Long: `Analyze every subsystem that could be a complex.

By default only subsystems with positive big phi are listed. --all lists
every candidate, --major only the subsystem with the largest big phi.

Example: gophi complexes --network net.yaml --major --xlsx complexes.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, flags, func(ctx context.Context, svc *app.AnalysisService, req app.AnalysisRequest) (app.Report, error) {
				report, err := svc.Complexes(ctx, app.ComplexesRequest{AnalysisRequest: req, All: all, Major: major})
				return report, err
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every candidate subsystem")
	cmd.Flags().BoolVar(&major, "major", false, "Only the major complex")
	cmd.MarkFlagsMutuallyExclusive("all", "major")
	return cmd
}

func newCutsCmd(flags *analysisFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cuts",
		Short: "List the cuts an SIA of the subsystem evaluates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, flags, func(ctx context.Context, svc *app.AnalysisService, req app.AnalysisRequest) (app.Report, error) {
				report, err := svc.Cuts(req)
				return report, err
			})
		},
	}
}

func newExamplesCmd() *cobra.Command {
	var dump string

	cmd := &cobra.Command{
		Use:   "examples",
		Short: "List the built-in example networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump != "" {
				spec, err := network.ExampleSpec(dump)
				if err != nil {
					return err
				}
				return network.EncodeSpec(cmd.OutOrStdout(), spec)
			}

			names := make([]string, 0, len(network.ExampleSpecs))
			for name := range network.ExampleSpecs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				spec := network.ExampleSpecs[name]()
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %d nodes, state %v\n", name, len(spec.TPM[0]), spec.State)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dump, "dump", "", "Print the named example as YAML")
	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve POST /v1/sia, /v1/ces, /v1/complexes, /v1/cuts and /v1/cache/flush.

Example: PHI_CACHE_SIAS=true PHI_CACHE_STORE_ENABLED=true gophi serve --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			serverCfg := c.Config.Server
			if port != "" {
				serverCfg.Port = port
			}
			return httpapi.NewServer(c.Analysis, serverCfg, c.Logger).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default: PORT or 8080)")
	return cmd
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent SIA cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Delete every stored SIA",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if c.Store == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "cache store disabled (set PHI_CACHE_STORE_ENABLED=true); nothing to flush")
				return nil
			}
			n, err := c.Store.Count(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := c.Analysis.FlushCache(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "flushed %d stored SIAs from %s\n", n, c.Config.Cache.Driver)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "count",
		Short: "Count stored SIAs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if c.Store == nil {
				return fmt.Errorf("cache store disabled (set PHI_CACHE_STORE_ENABLED=true)")
			}
			n, err := c.Store.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	})

	return cmd
}
