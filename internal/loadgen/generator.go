// Package loadgen synthesizes progress traffic against a running instance
// and spot-checks leaderboard ordering. Development tooling, not part of
// the serving path.
package loadgen

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// Report is one synthetic progress report.
type Report struct {
	UserID              string  `json:"user_id"`
	TopicID             string  `json:"topic_id"`
	WatchTimePercentage float64 `json:"watch_time_percentage"`
}

// Watcher profile cases. Learners cluster into behavior bands rather than
// watching uniformly at random.
const (
	caseBinger      = 0 // finishes most topics
	caseSampler     = 1 // opens many topics, watches little
	caseSteady      = 2 // mid-range progress everywhere
	caseCompletions = 3 // exact 100s
	profileCount    = 4
)

const randomFloatDivisor = 1_000_000

// randFloat returns a random float64 in [0,1) using crypto/rand.
func randFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// Generate builds count reports spread over userCount users and topicCount
// topics. User and topic ids are stable uuids for the batch so repeated
// reports hit the same (user, topic) keys and exercise the upsert path.
func Generate(count, userCount, topicCount int) []Report {
	users := make([]string, userCount)
	for i := range users {
		users[i] = uuid.NewString()
	}
	topics := make([]string, topicCount)
	for i := range topics {
		topics[i] = uuid.NewString()
	}

	reports := make([]Report, count)
	for i := range reports {
		reports[i] = Report{
			UserID:              users[randInt(userCount)],
			TopicID:             topics[randInt(topicCount)],
			WatchTimePercentage: percentageFor(randInt(profileCount)),
		}
	}
	return reports
}

func percentageFor(profile int) float64 {
	switch profile {
	case caseBinger:
		return 80 + randFloat()*20
	case caseSampler:
		return randFloat() * 20
	case caseSteady:
		return 30 + randFloat()*40
	case caseCompletions:
		return 100
	default:
		return randFloat() * 100
	}
}
