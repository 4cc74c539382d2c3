package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"marketsim/internal/config"
	"marketsim/internal/domain"
	"marketsim/internal/engine"
	"marketsim/internal/gather"
	"marketsim/internal/report"
	"marketsim/internal/store"
	"marketsim/internal/strategy"
	"marketsim/internal/strategy/builtins"
	"marketsim/internal/util"
)

const version = "0.1.0"

func main() {
	// Credentials may live in a local .env file; absence is fine.
	_ = godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: marketsim <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run        Replay ticks through the configured strategies\n")
		fmt.Fprintf(os.Stderr, "  gather     Fetch market data into the tick store\n")
		fmt.Fprintf(os.Stderr, "  version    Print the version\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("marketsim %s\n", version)

	case "run":
		if err := runSimulation(os.Args[2:]); err != nil {
			log.Fatalf("run: %v", err)
		}

	case "gather":
		if err := runGather(os.Args[2:]); err != nil {
			log.Fatalf("gather: %v", err)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

// loadConfig parses the shared -config flag from args and loads the file it
// points at. MARKETSIM_CONFIG overrides the default path.
func loadConfig(name string, args []string) (*config.Config, error) {
	cfgPath := "config/marketsim.yaml"
	if p := os.Getenv("MARKETSIM_CONFIG"); p != "" {
		cfgPath = p
	}

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	path := fs.String("config", cfgPath, "path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return config.Load(*path)
}

func runSimulation(args []string) error {
	cfg, err := loadConfig("run", args)
	if err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ticks, err := loadTicks(cfg)
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no ticks to replay")
	}

	strategies, err := buildStrategies(cfg.Simulation.Strategies)
	if err != nil {
		return err
	}

	opts := []engine.Option{
		engine.WithFailureProbability(cfg.Simulation.FailureProbability),
		engine.WithAllowShort(cfg.Simulation.AllowShort),
		engine.WithLogger(logger),
	}
	if cfg.Simulation.Seed != 0 {
		opts = append(opts, engine.WithRand(rand.New(rand.NewSource(cfg.Simulation.Seed))))
	}

	eng, err := engine.New(ticks, strategies, cfg.Simulation.InitialCash, opts...)
	if err != nil {
		return err
	}

	startedAt := time.Now().UTC()
	results := eng.Run()

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]*report.StrategySummary, 0, len(names))
	for _, name := range names {
		s, err := report.Build(name, results[name], cfg.Simulation.RiskFreeRate)
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
	}

	for _, s := range summaries {
		fmt.Printf("%-20s total return %8.2f%%   sharpe %s   orders %d (%d failed)\n",
			s.Name, s.TotalReturn*100, sharpeText(s), s.Orders, s.FailedOrders)
	}

	md := report.RenderMarkdown(summaries, startedAt)
	if err := os.MkdirAll(cfg.Report.OutputDir, 0o755); err != nil {
		return err
	}
	reportPath := filepath.Join(cfg.Report.OutputDir,
		fmt.Sprintf("report-%s.md", startedAt.Format("20060102-150405")))
	if err := os.WriteFile(reportPath, []byte(md), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info("report written", "path", reportPath)

	if cfg.Storage.SQLitePath != "" {
		if err := persistResults(cfg.Storage.SQLitePath, startedAt, cfg.Simulation.InitialCash, names, results, summaries); err != nil {
			return fmt.Errorf("persisting results: %w", err)
		}
		logger.Info("results persisted", "db", cfg.Storage.SQLitePath)
	}

	return nil
}

func sharpeText(s *report.StrategySummary) string {
	if s.SharpeNote != "" {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", s.Sharpe)
}

// loadTicks prefers the one-off CSV file when configured, otherwise reads
// the Parquet store over the gather date range.
func loadTicks(cfg *config.Config) ([]domain.Tick, error) {
	if cfg.Storage.CSVPath != "" {
		return store.ReadTicksCSV(cfg.Storage.CSVPath)
	}

	dates, err := parseDates(cfg.Gather)
	if err != nil {
		return nil, err
	}

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	ctx := context.Background()

	symbols := cfg.Gather.Symbols
	if len(symbols) == 0 {
		symbols, err = ps.ListSymbols(ctx)
		if err != nil {
			return nil, err
		}
	}

	// The end date is inclusive: read through the end of that day.
	endOfRange := dates.End.AddDate(0, 0, 1).Add(-time.Nanosecond)

	var ticks []domain.Tick
	for _, symbol := range symbols {
		ts, err := ps.ReadTicks(ctx, symbol, dates.Start, endOfRange)
		if err != nil {
			return nil, fmt.Errorf("reading ticks for %s: %w", symbol, err)
		}
		ticks = append(ticks, ts...)
	}
	return ticks, nil
}

// buildStrategies constructs one strategy instance per config entry. The
// registry catches duplicate names before the engine sees them.
func buildStrategies(configs []config.StrategyConfig) ([]strategy.Strategy, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no strategies configured")
	}

	registry := strategy.NewRegistry()
	strategies := make([]strategy.Strategy, 0, len(configs))
	for _, sc := range configs {
		var (
			s   strategy.Strategy
			err error
		)
		switch sc.Type {
		case "sma-cross":
			s, err = builtins.NewSMACross(sc.Short, sc.Long, sc.Quantity)
		case "momentum":
			s, err = builtins.NewMomentum(sc.Lookback, sc.Quantity)
		default:
			return nil, fmt.Errorf("unknown strategy type %q", sc.Type)
		}
		if err != nil {
			return nil, err
		}
		if _, exists := registry.Get(s.Name()); exists {
			return nil, fmt.Errorf("strategy %q configured more than once", s.Name())
		}
		registry.Register(s)
		strategies = append(strategies, s)
	}
	return strategies, nil
}

func persistResults(dbPath string, startedAt time.Time, initialCash float64, names []string, results map[string]*engine.RunState, summaries []*report.StrategySummary) error {
	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := context.Background()

	bySummary := make(map[string]*report.StrategySummary, len(summaries))
	for _, s := range summaries {
		bySummary[s.Name] = s
	}

	for _, name := range names {
		st := results[name]
		sum := bySummary[name]

		run := &store.RunRecord{
			ID:          uuid.NewString(),
			Strategy:    name,
			StartedAt:   startedAt,
			InitialCash: initialCash,
			FinalValue:  sum.FinalValue,
			TotalReturn: sum.TotalReturn,
		}
		if err := db.SaveRun(ctx, run); err != nil {
			return err
		}
		if err := db.SaveOrders(ctx, run.ID, st.Orders); err != nil {
			return err
		}
		if err := db.SaveHistory(ctx, run.ID, st.History); err != nil {
			return err
		}
	}
	return nil
}

func runGather(args []string) error {
	cfg, err := loadConfig("gather", args)
	if err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	dates, err := parseDates(cfg.Gather)
	if err != nil {
		return err
	}

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	g := gather.NewAlpacaGatherer(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		ps,
		cfg.Gather.Symbols,
		dates,
		cfg.Gather.RateLimitPerMin,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return g.Run(ctx)
}

func parseDates(gc config.GatherConfig) (gather.DateRange, error) {
	start, err := time.Parse("2006-01-02", gc.StartDate)
	if err != nil {
		return gather.DateRange{}, fmt.Errorf("parsing start date %q: %w", gc.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", gc.EndDate)
	if err != nil {
		return gather.DateRange{}, fmt.Errorf("parsing end date %q: %w", gc.EndDate, err)
	}
	if end.Before(start) {
		return gather.DateRange{}, fmt.Errorf("end date %s is before start date %s", gc.EndDate, gc.StartDate)
	}
	return gather.DateRange{Start: start, End: end}, nil
}
