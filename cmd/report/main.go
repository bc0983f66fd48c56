package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"corridorsim/internal/persistence/indexdb"
)

func main() {
	var (
		dbPath = flag.String("db", "./data/index.db", "path to the run index")
		runID  = flag.String("run", "", "run id (default: most recent)")
		list   = flag.Bool("list", false, "list stored runs and exit")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	idx, err := indexdb.OpenSQLite(*dbPath)
	if err != nil {
		logger.Fatalf("open run index: %v", err)
	}
	defer idx.Close()

	if *list {
		runs, err := idx.Runs()
		if err != nil {
			logger.Fatalf("list runs: %v", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tRECORDED\tTICKS\tENTERED\tINFECTED\tMEAN")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.3f\n",
				r.RunID, r.RecordedAt, r.Ticks, r.TotalEntered, r.TotalInfected, r.MeanInfections)
		}
		w.Flush()
		return
	}

	id := *runID
	if id == "" {
		runs, err := idx.Runs()
		if err != nil {
			logger.Fatalf("list runs: %v", err)
		}
		if len(runs) == 0 {
			logger.Fatalf("no runs recorded in %s", *dbPath)
		}
		id = runs[0].RunID
	}

	run, err := idx.Run(id)
	if err != nil {
		logger.Fatalf("load run %s: %v", id, err)
	}
	agents, err := idx.Agents(id)
	if err != nil {
		logger.Fatalf("load agents for %s: %v", id, err)
	}

	var eastN, eastInf, westN, westInf, onEntry, exited int
	for _, a := range agents {
		if a.Direction == 1 {
			eastN++
			if a.Infected {
				eastInf++
			}
		} else {
			westN++
			if a.Infected {
				westInf++
			}
		}
		if a.InfectedOnEntry {
			onEntry++
		}
		if a.Exited {
			exited++
		}
	}

	fmt.Printf("run %s\n", run.RunID)
	fmt.Printf("  corridor          %dx%d, seed %d, %d ticks\n", run.Length, run.Width, run.Seed, run.Ticks)
	fmt.Printf("  arrivals          every %d ticks, trans_prob %.3f, infected share %.3f on entry\n",
		run.Interarrivals, run.TransProb, run.InfectedShare)
	fmt.Printf("  entered           %d (%d completed the corridor)\n", run.TotalEntered, exited)
	fmt.Printf("  infected          %d (%.3f of all agents)\n", run.TotalInfected, run.InfectedFrac)
	fmt.Printf("    on entry        %d\n", onEntry)
	fmt.Printf("    in transit      %d\n", run.TotalInfected-onEntry)
	fmt.Printf("  eastbound         %d agents, %d infected\n", eastN, eastInf)
	fmt.Printf("  westbound         %d agents, %d infected\n", westN, westInf)
	fmt.Printf("  per infected agent: mean %.3f secondary infections, stdev %.3f\n",
		run.MeanInfections, run.StdevInfections)
}
