package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/watchrank/watchrank/internal/loadgen"
	"github.com/watchrank/watchrank/pkg/logger"
)

// Default configuration constants.
const (
	defaultReports  = 10000
	defaultUsers    = 200
	defaultTopics   = 50
	defaultPageSize = 50
	defaultTimeout  = 30 * time.Second
	defaultRunLimit = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		reports  = flag.Int("reports", defaultReports, "Number of progress reports to generate and submit")
		users    = flag.Int("users", defaultUsers, "Number of distinct synthetic users")
		topics   = flag.Int("topics", defaultTopics, "Number of distinct synthetic topics")
		workers  = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent submitters")
		pageSize = flag.Int("page-size", defaultPageSize, "Leaderboard page size used for verification")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunLimit)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:  *baseURL,
		Reports:  *reports,
		Users:    *users,
		Topics:   *topics,
		Workers:  *workers,
		Timeout:  *timeout,
		PageSize: *pageSize,
	}

	if err := loadgen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
