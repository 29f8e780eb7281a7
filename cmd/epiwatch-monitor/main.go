package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/epiwatch/epiwatch/pkg/analytics"
	"github.com/epiwatch/epiwatch/pkg/config"
	"github.com/epiwatch/epiwatch/pkg/storage"
)

var (
	schedule  = flag.String("schedule", "", "Cron schedule override (default: EPIWATCH_MONITOR_SCHEDULE)")
	countries = flag.String("countries", "", "Comma-separated country list override (default: EPIWATCH_MONITOR_COUNTRIES)")
	runOnce   = flag.Bool("run-once", false, "Run the consistency sweep once and exit (for testing)")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadMonitorConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *schedule != "" {
		cfg.Monitor.Schedule = *schedule
	}
	if *countries != "" {
		cfg.Monitor.Countries = config.ParseCountryList(*countries)
	}
	if len(cfg.Monitor.Countries) == 0 {
		log.Fatal("No countries configured: set --countries or EPIWATCH_MONITOR_COUNTRIES")
	}

	// Open the pooled connection; Open pings with a bounded timeout.
	db, err := storage.Open(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	engine := analytics.NewEngine(db)

	// Run once mode (for testing or manual sweeps)
	if *runOnce {
		if invalid := runSweep(engine, cfg.Monitor.Countries); invalid > 0 {
			log.Fatalf("Consistency sweep found %d invalid countries", invalid)
		}
		log.Println("Consistency sweep completed successfully")
		return
	}

	// Scheduled mode
	c := cron.New()

	_, err = c.AddFunc(cfg.Monitor.Schedule, func() {
		log.Println("Starting consistency sweep")
		if invalid := runSweep(engine, cfg.Monitor.Countries); invalid > 0 {
			log.Printf("Consistency sweep found %d invalid countries", invalid)
		} else {
			log.Println("Consistency sweep completed successfully")
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule consistency sweep: %v", err)
	}

	// Start the cron scheduler
	c.Start()
	log.Println("Epiwatch consistency monitor started")
	log.Printf("Sweep schedule: %s", cfg.Monitor.Schedule)
	log.Printf("Watching %d countries", len(cfg.Monitor.Countries))

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop the cron scheduler
	ctx := c.Stop()
	<-ctx.Done()

	log.Println("Monitor stopped")
}

// runSweep validates each watched country and returns how many look
// inconsistent or missing.
func runSweep(engine *analytics.Engine, countries []string) int {
	ctx := context.Background()

	invalid := 0
	for _, country := range countries {
		report, err := engine.Validate(ctx, country)
		if err != nil {
			log.Printf("Validation failed for %s: %v", country, err)
			invalid++
			continue
		}
		if !report.Found {
			log.Printf("ALERT: no data for watched country %s", country)
			invalid++
			continue
		}
		if !report.LooksValid {
			log.Printf("ALERT: inconsistent data for %s (max deaths %d, max confirmed %d, %d days)",
				report.Country, report.MaxCumulativeDeaths, report.MaxConfirmed, report.DistinctDays)
			invalid++
			continue
		}
		log.Printf("✓ %s looks consistent (%d days of data)", report.Country, report.DistinctDays)
	}
	return invalid
}
