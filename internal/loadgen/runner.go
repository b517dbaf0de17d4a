package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/watchrank/watchrank/internal/domain/types"
	"github.com/watchrank/watchrank/pkg/logger"
)

// Config controls one load run.
type Config struct {
	BaseURL  string
	Reports  int
	Users    int
	Topics   int
	Workers  int
	Timeout  time.Duration
	PageSize int
}

// Run generates reports, submits them concurrently, then fetches the first
// leaderboard page and verifies its ordering is descending with ascending
// user-id tie-breaks.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get()
	client := &http.Client{Timeout: cfg.Timeout}

	log.Info(ctx, "starting progress load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("reports", cfg.Reports),
		logger.Int("users", cfg.Users),
		logger.Int("topics", cfg.Topics),
		logger.Int("workers", cfg.Workers),
	)

	reports := Generate(cfg.Reports, cfg.Users, cfg.Topics)

	var submitted, failed atomic.Int64
	jobs := make(chan Report)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rep := range jobs {
				if err := post(ctx, client, cfg.BaseURL+"/progress", rep); err != nil {
					failed.Add(1)
					log.Debug(ctx, "report rejected", logger.Error(err))
					continue
				}
				submitted.Add(1)
			}
		}()
	}

	for _, rep := range reports {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- rep:
		}
	}
	close(jobs)
	wg.Wait()

	log.Info(ctx, "submission finished",
		logger.Int("submitted", int(submitted.Load())),
		logger.Int("failed", int(failed.Load())),
	)

	page, err := fetchLeaderboard(ctx, client, cfg.BaseURL, cfg.PageSize)
	if err != nil {
		return fmt.Errorf("fetch leaderboard: %w", err)
	}
	if err := verifyOrdering(page.Entries); err != nil {
		return err
	}

	log.Info(ctx, "leaderboard ordering verified",
		logger.Int("entries", len(page.Entries)),
		logger.Int("total", page.Total),
	)
	return nil
}

func post(ctx context.Context, client *http.Client, url string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func fetchLeaderboard(ctx context.Context, client *http.Client, baseURL string, pageSize int) (types.LeaderboardPage, error) {
	url := fmt.Sprintf("%s/leaderboard?page=1&page_size=%d", baseURL, pageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.LeaderboardPage{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return types.LeaderboardPage{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return types.LeaderboardPage{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var page types.LeaderboardPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return types.LeaderboardPage{}, fmt.Errorf("decode leaderboard: %w", err)
	}
	return page, nil
}

func verifyOrdering(entries []types.LeaderboardEntry) error {
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.TotalWatchTime > prev.TotalWatchTime {
			return fmt.Errorf("leaderboard out of order at position %d: %f after %f", i, cur.TotalWatchTime, prev.TotalWatchTime)
		}
		if cur.TotalWatchTime == prev.TotalWatchTime && cur.UserID < prev.UserID {
			return fmt.Errorf("tie-break violated at position %d: %s after %s", i, cur.UserID, prev.UserID)
		}
	}
	return nil
}
