// Command reportguard-stats prints usage totals aggregated from a guard's
// audit segments and email store. Point it at the same directories the
// serving process writes to.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tmajeri/reportguard"
)

func main() {
	logDir := flag.String("logs", "logs", "audit log directory")
	logName := flag.String("log-name", "app.log", "active audit segment file name")
	emailsPath := flag.String("emails", "logs/collected_emails.json", "email store path")
	timeout := flag.Duration("timeout", 10*time.Second, "overall deadline")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := reportguard.LoadConfigFromEnv()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	cfg.Audit.Enabled = false // read-only: never append to the trail we are summing
	cfg.Audit.Dir = *logDir
	cfg.Audit.FileName = *logName
	cfg.EmailStore.Backend = "file"
	cfg.EmailStore.Path = *emailsPath

	guard, err := reportguard.New().
		WithConfig(cfg).
		WithLogger(logger).
		Build()
	if err != nil {
		logger.Fatal("build guard", zap.Error(err))
	}
	defer guard.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stats, err := guard.UsageStats(ctx)
	if err != nil {
		logger.Fatal("usage stats", zap.Error(err))
	}

	fmt.Printf("uploads:          %d\n", stats.Uploads)
	fmt.Printf("pdfs:             %d\n", stats.PDFs)
	fmt.Printf("team reports:     %d\n", stats.TeamReports)
	fmt.Printf("errors:           %d\n", stats.Errors)
	fmt.Printf("unique sessions:  %d\n", stats.UniqueSessions)
	fmt.Printf("emails collected: %d\n", stats.EmailsCollected)
}
