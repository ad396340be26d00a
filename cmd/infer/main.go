package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"goinfer/adapters/httpapi"
	"goinfer/adapters/memstore"
	"goinfer/adapters/postgres"
	"goinfer/adapters/rng"
	"goinfer/adapters/tabfile"
	"goinfer/app"
	"goinfer/domain/hypothesis"
	"goinfer/domain/resample"
	"goinfer/domain/statistic"
	"goinfer/internal/config"
	"goinfer/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "infer",
		Short: "Simulation-based inference over tabular datasets",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runOptions struct {
	file     string
	response string
	group    string
	null     string
	point    string
	method   string
	stat     string
	reps     int
	seed     int64
	seedSet  bool
	parallel bool
	workers  int
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one inference run over a dataset file",
		Long: `Execute one resample-and-calculate run over a CSV or XLSX dataset.

The run stores its manifest and artifacts in the ledger (Postgres when
DATABASE_URL is set, in-memory otherwise) and prints the statistic
distribution summary with the replay fingerprint.

Example: infer run --file flights.csv --response arr_delay --group origin \
  --null "equal means" --type permute --stat "diff in means" --reps 1000 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seedSet = cmd.Flags().Changed("seed")
			return runInference(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Dataset file (CSV or XLSX); falls back to DATA_FILE")
	cmd.Flags().StringVar(&opts.response, "response", "", "Response column name")
	cmd.Flags().StringVar(&opts.group, "group", "", "Grouping column name")
	cmd.Flags().StringVar(&opts.null, "null", "", `Null hypothesis: independence, "equal means" or point`)
	cmd.Flags().StringVar(&opts.point, "point", "", `Point null probabilities, e.g. "heads=0.5,tails=0.5"`)
	cmd.Flags().StringVar(&opts.method, "type", "bootstrap", "Generation method: bootstrap, permute or simulate")
	cmd.Flags().StringVar(&opts.stat, "stat", "mean", `Statistic: mean, prop, "diff in means" or "diff in props"`)
	cmd.Flags().IntVar(&opts.reps, "reps", 0, "Replicate count; falls back to ENGINE_REPS")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Random seed; falls back to ENGINE_SEED")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Generate replicates on a worker pool")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Worker count for parallel generation; falls back to ENGINE_WORKERS")

	_ = cmd.MarkFlagRequired("response")

	return cmd
}

func runInference(ctx context.Context, opts runOptions) error {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.file == "" {
		opts.file = cfg.Paths.DataFile
	}
	if opts.file == "" {
		return fmt.Errorf("no dataset file: pass --file or set DATA_FILE")
	}
	if opts.reps == 0 {
		opts.reps = cfg.Engine.DefaultReps
	}
	if !opts.seedSet {
		opts.seed = cfg.Engine.DefaultSeed
	}
	if opts.workers == 0 {
		opts.workers = cfg.Engine.Workers
	}

	var reader ports.DatasetReaderPort = tabfile.NewReader()
	tbl, err := reader.ReadTable(opts.file)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	null, err := hypothesis.ParseNull(opts.null)
	if err != nil {
		return err
	}
	var point hypothesis.PointMass
	if opts.point != "" {
		point, err = parsePointMass(opts.point)
		if err != nil {
			return err
		}
	}
	design, err := hypothesis.NewDesign(tbl, opts.response, opts.group, null, point)
	if err != nil {
		return err
	}
	stat, err := statistic.ParseKind(opts.stat)
	if err != nil {
		return err
	}

	ledger, cleanup, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	service := app.NewInferenceService(ledger, rng.New())
	result, err := service.Run(ctx, app.InferenceRequest{
		Design:   design,
		Method:   resample.Method(opts.method),
		Stat:     stat,
		Reps:     opts.reps,
		Seed:     opts.seed,
		Parallel: opts.parallel || cfg.Engine.Parallel,
		Workers:  opts.workers,
	})
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

// parsePointMass parses ordered "level=prob" pairs. Pair order must match
// the response column's level order.
func parsePointMass(s string) (hypothesis.PointMass, error) {
	parts := strings.Split(s, ",")
	pairs := make([]hypothesis.LevelProb, 0, len(parts))
	for _, part := range parts {
		level, probStr, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return nil, fmt.Errorf("invalid point probability %q (want level=prob)", part)
		}
		prob, err := strconv.ParseFloat(probStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid probability in %q: %w", part, err)
		}
		pairs = append(pairs, hypothesis.LevelProb{Level: level, Prob: prob})
	}
	return hypothesis.NewPointMass(pairs...)
}

// openLedger picks the artifact store: Postgres when DATABASE_URL is set,
// in-memory otherwise
func openLedger(ctx context.Context, cfg *config.Config) (ports.LedgerPort, func(), error) {
	if cfg.Database.URL == "" {
		log.Printf("No DATABASE_URL configured, storing artifacts in memory")
		return memstore.NewLedger(), func() {}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ensure ledger schema: %w", err)
	}
	return postgres.NewLedgerRepository(db), func() { db.Close() }, nil
}

func printResult(result *app.InferenceResult) {
	summary := result.Summary

	fmt.Printf("\n📊 INFERENCE RUN RESULTS\n")
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Method: %s\n", result.Manifest.Method)
	fmt.Printf("Statistic: %s\n", result.Manifest.Stat)
	fmt.Printf("Observed: %.6g\n", float64(result.Observed))
	fmt.Printf("\nReplicate distribution (n=%d):\n", summary.N)
	fmt.Printf("  Mean:   %.6g\n", float64(summary.Mean))
	fmt.Printf("  Median: %.6g\n", float64(summary.Median))
	fmt.Printf("  StdDev: %.6g\n", float64(summary.StdDev))
	fmt.Printf("  Range:  [%.6g, %.6g]\n", float64(summary.Min), float64(summary.Max))
	fmt.Printf("\nFingerprint: %s\n", result.Fingerprint)
	fmt.Printf("Runtime: %dms\n", result.RuntimeMs)
	fmt.Printf("\n✅ Run complete. Replay with the same seed to reproduce.\n")
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the inference HTTP API",
		Long: `Start the JSON API for submitting runs and reading back run artifacts.

Example: infer serve --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port; falls back to PORT")

	return cmd
}

func runServe(ctx context.Context, port string) error {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port == "" {
		port = cfg.Server.Port
	}

	ledger, cleanup, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	service := app.NewInferenceService(ledger, rng.New())
	return httpapi.NewServer(service).Start(port)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(app.CodeVersion)
		},
	}
}

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}
