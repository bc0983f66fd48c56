package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"corridorsim/internal/persistence/indexdb"
	persistlog "corridorsim/internal/persistence/log"
	"corridorsim/internal/sim/corridor"
	"corridorsim/internal/sim/tuning"
	"corridorsim/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		runID      = flag.String("run", "", "run id (default: timestamp)")
		seed       = flag.Int64("seed", 1337, "simulation seed")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "skip recording the run into the sqlite index")
		verbose    = flag.Bool("verbose", false, "log per-tick contention diagnostics")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("no tuning file at %s; using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	id := strings.TrimSpace(*runID)
	if id == "" {
		id = "run_" + time.Now().UTC().Format("20060102T150405Z")
	}
	runDir := filepath.Join(*dataDir, "runs", id)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		logger.Fatalf("mkdir %s: %v", runDir, err)
	}

	c := corridor.New(corridor.Config{
		ID:            id,
		Length:        tune.SidewalkLength,
		Width:         tune.SidewalkWidth,
		TransProb:     tune.TransProb,
		InfectedShare: tune.InfectedShare,
		Interarrivals: tune.Interarrivals,
		BatchMin:      tune.ArrivalsMin,
		BatchMax:      tune.ArrivalsMax,
		TickRateHz:    tune.TickRateHz,
		RunTicks:      tune.RunTicks,
		Seed:          *seed,
	})
	if *verbose {
		c.SetLogger(logger)
	}

	tickLog := persistlog.NewTickLog(runDir)
	defer tickLog.Close()
	c.SetTickLogger(tickLog)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open run index: %v", err)
		}
		defer idx.Close()
	}

	obs := observer.NewServer(c, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/observer/bootstrap", obs.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", obs.WSHandler())
	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("observer endpoints on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Printf("run %s: %dx%d corridor, %d ticks at %d Hz, seed %d",
		id, tune.SidewalkLength, tune.SidewalkWidth, tune.RunTicks, tune.TickRateHz, *seed)
	if err := c.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("run: %v", err)
	}

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutCancel()
	_ = httpSrv.Shutdown(shutCtx)

	s := c.Summarize()
	logger.Printf("finished at tick %d: entered=%d infected=%d (%.3f) mean_infections=%.3f stdev=%.3f max=%d",
		c.CurrentTick(), s.TotalEntered, s.TotalInfected, s.InfectedShare,
		s.MeanInfections, s.StdevInfections, s.MaxInfections)

	if idx != nil {
		for _, rec := range c.Records() {
			idx.RecordAgent(id, rec)
		}
		idx.RecordRun(indexdb.RunRow{
			RunID:           id,
			Seed:            *seed,
			Length:          tune.SidewalkLength,
			Width:           tune.SidewalkWidth,
			TransProb:       tune.TransProb,
			InfectedShare:   tune.InfectedShare,
			Interarrivals:   tune.Interarrivals,
			Ticks:           c.CurrentTick(),
			TotalEntered:    s.TotalEntered,
			TotalInfected:   s.TotalInfected,
			InfectedFrac:    s.InfectedShare,
			MeanInfections:  s.MeanInfections,
			StdevInfections: s.StdevInfections,
			RecordedAt:      time.Now().UTC().Format(time.RFC3339),
		})
		logger.Printf("indexed run %s (%d agents)", id, s.TotalEntered)
	}
}
