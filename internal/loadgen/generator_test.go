package loadgen

import (
	"testing"

	"github.com/watchrank/watchrank/internal/domain/types"
)

func TestGenerate(t *testing.T) {
	const (
		count      = 500
		userCount  = 10
		topicCount = 5
	)

	reports := Generate(count, userCount, topicCount)
	if len(reports) != count {
		t.Fatalf("expected %d reports, got %d", count, len(reports))
	}

	users := make(map[string]bool)
	topics := make(map[string]bool)
	for i, rep := range reports {
		if rep.UserID == "" || rep.TopicID == "" {
			t.Fatalf("report %d has empty ids", i)
		}
		if rep.WatchTimePercentage < 0 || rep.WatchTimePercentage > 100 {
			t.Fatalf("report %d percentage %f out of range", i, rep.WatchTimePercentage)
		}
		users[rep.UserID] = true
		topics[rep.TopicID] = true
	}

	// Ids are drawn from a stable pool so the batch revisits keys.
	if len(users) > userCount {
		t.Errorf("expected at most %d distinct users, got %d", userCount, len(users))
	}
	if len(topics) > topicCount {
		t.Errorf("expected at most %d distinct topics, got %d", topicCount, len(topics))
	}
}

func TestPercentageProfiles(t *testing.T) {
	for i := 0; i < 100; i++ {
		if got := percentageFor(caseBinger); got < 80 || got > 100 {
			t.Fatalf("binger percentage %f out of band", got)
		}
		if got := percentageFor(caseSampler); got < 0 || got >= 20 {
			t.Fatalf("sampler percentage %f out of band", got)
		}
		if got := percentageFor(caseSteady); got < 30 || got >= 70 {
			t.Fatalf("steady percentage %f out of band", got)
		}
		if got := percentageFor(caseCompletions); got != 100 {
			t.Fatalf("completion percentage %f is not 100", got)
		}
	}
}

func TestVerifyOrdering(t *testing.T) {
	if err := verifyOrdering(nil); err != nil {
		t.Errorf("empty leaderboard should verify: %v", err)
	}

	ordered := []types.LeaderboardEntry{
		{UserID: "userA", TotalWatchTime: 180},
		{UserID: "userB", TotalWatchTime: 95},
		{UserID: "userC", TotalWatchTime: 95},
	}
	if err := verifyOrdering(ordered); err != nil {
		t.Errorf("ordered leaderboard should verify: %v", err)
	}

	outOfOrder := []types.LeaderboardEntry{
		{UserID: "userA", TotalWatchTime: 95},
		{UserID: "userB", TotalWatchTime: 180},
	}
	if err := verifyOrdering(outOfOrder); err == nil {
		t.Error("expected error for descending violation")
	}

	tieBroken := []types.LeaderboardEntry{
		{UserID: "userB", TotalWatchTime: 95},
		{UserID: "userA", TotalWatchTime: 95},
	}
	if err := verifyOrdering(tieBroken); err == nil {
		t.Error("expected error for tie-break violation")
	}
}
