package ranking

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/watchrank/watchrank/internal/domain/directory"
	"github.com/watchrank/watchrank/internal/domain/model"
	"github.com/watchrank/watchrank/internal/domain/types"
	"github.com/watchrank/watchrank/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

// fakeStore serves canned progress records.
type fakeStore struct {
	records []model.ProgressRecord
	listErr error
}

func (f *fakeStore) Upsert(_ context.Context, userID, topicID string, pct float64) (model.ProgressRecord, error) {
	rec := model.ProgressRecord{UserID: userID, TopicID: topicID, WatchTimePercentage: pct}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) Get(_ context.Context, userID, topicID string) (model.ProgressRecord, error) {
	for _, rec := range f.records {
		if rec.UserID == userID && rec.TopicID == topicID {
			return rec, nil
		}
	}
	return model.ProgressRecord{}, fmt.Errorf("get %s/%s: not found", userID, topicID)
}

func (f *fakeStore) ListByTopics(_ context.Context, topicIDs []string) ([]model.ProgressRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	wanted := make(map[string]bool, len(topicIDs))
	for _, id := range topicIDs {
		wanted[id] = true
	}
	var out []model.ProgressRecord
	for _, rec := range f.records {
		if wanted[rec.TopicID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]model.ProgressRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeStore) Count(_ context.Context) int {
	return len(f.records)
}

type fakeTopicDirectory struct {
	topics map[string][]string
}

func (f fakeTopicDirectory) TopicsOf(_ context.Context, subjectID string) ([]string, error) {
	topicIDs, ok := f.topics[subjectID]
	if !ok {
		return nil, fmt.Errorf("subject %s: %w", subjectID, directory.ErrNotFound)
	}
	return topicIDs, nil
}

type fakeUserDirectory struct {
	users map[string]types.User
}

func (f fakeUserDirectory) Lookup(_ context.Context, userID string) (types.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return types.User{}, fmt.Errorf("user %s: %w", userID, directory.ErrNotFound)
	}
	return user, nil
}

func progress(userID, topicID string, pct float64) model.ProgressRecord {
	return model.ProgressRecord{
		UserID:              userID,
		TopicID:             topicID,
		WatchTimePercentage: pct,
		IsCompleted:         pct == model.CompletionThreshold,
	}
}

func TestSubjectCalculatorRank(t *testing.T) {
	ctx := context.Background()

	Convey("Given a subject with two topics and two users", t, func() {
		store := &fakeStore{records: []model.ProgressRecord{
			progress("userA", "t1", 100),
			progress("userA", "t2", 40),
			progress("userB", "t1", 60),
			progress("userB", "t2", 30),
		}}
		topics := fakeTopicDirectory{topics: map[string][]string{
			"math": {"t1", "t2"},
		}}
		users := fakeUserDirectory{users: map[string]types.User{
			"userA": {ID: "userA", Name: "Alice", Email: "alice@example.com"},
			"userB": {ID: "userB", Name: "Bob", Email: "bob@example.com"},
		}}
		calc := NewSubjectCalculator(store, topics, users, logger.Get())

		Convey("When the subject is ranked", func() {
			standings, err := calc.Rank(ctx, "math")

			Convey("Then completion rate orders the standings", func() {
				So(err, ShouldBeNil)
				So(standings, ShouldHaveLength, 2)

				So(standings[0].UserID, ShouldEqual, "userA")
				So(standings[0].Rank, ShouldEqual, 1)
				So(standings[0].CompletedTopics, ShouldEqual, 1)
				So(standings[0].CompletionRate, ShouldEqual, 50)

				So(standings[1].UserID, ShouldEqual, "userB")
				So(standings[1].Rank, ShouldEqual, 2)
				So(standings[1].CompletedTopics, ShouldEqual, 0)
				So(standings[1].CompletionRate, ShouldEqual, 0)
			})

			Convey("Then identities are attached", func() {
				So(err, ShouldBeNil)
				So(standings[0].User, ShouldNotBeNil)
				So(standings[0].User.Name, ShouldEqual, "Alice")
				So(standings[1].User, ShouldNotBeNil)
				So(standings[1].User.Email, ShouldEqual, "bob@example.com")
			})
		})
	})

	Convey("Given users with equal completion rates", t, func() {
		store := &fakeStore{records: []model.ProgressRecord{
			progress("userB", "t1", 100),
			progress("userA", "t1", 100),
			progress("userC", "t1", 20),
		}}
		topics := fakeTopicDirectory{topics: map[string][]string{
			"math": {"t1", "t2"},
		}}
		users := fakeUserDirectory{users: map[string]types.User{}}
		calc := NewSubjectCalculator(store, topics, users, logger.Get())

		Convey("When the subject is ranked", func() {
			standings, err := calc.Rank(ctx, "math")

			Convey("Then ties share a rank and ascending user id breaks the order", func() {
				So(err, ShouldBeNil)
				So(standings, ShouldHaveLength, 3)
				So(standings[0].UserID, ShouldEqual, "userA")
				So(standings[0].Rank, ShouldEqual, 1)
				So(standings[1].UserID, ShouldEqual, "userB")
				So(standings[1].Rank, ShouldEqual, 1)
				So(standings[2].UserID, ShouldEqual, "userC")
				So(standings[2].Rank, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a user missing from the directory", t, func() {
		store := &fakeStore{records: []model.ProgressRecord{
			progress("ghost", "t1", 100),
		}}
		topics := fakeTopicDirectory{topics: map[string][]string{
			"math": {"t1"},
		}}
		users := fakeUserDirectory{users: map[string]types.User{}}
		calc := NewSubjectCalculator(store, topics, users, logger.Get())

		Convey("When the subject is ranked", func() {
			standings, err := calc.Rank(ctx, "math")

			Convey("Then the row survives without an identity", func() {
				So(err, ShouldBeNil)
				So(standings, ShouldHaveLength, 1)
				So(standings[0].UserID, ShouldEqual, "ghost")
				So(standings[0].User, ShouldBeNil)
				So(standings[0].CompletionRate, ShouldEqual, 100)
			})
		})
	})

	Convey("Given an unknown subject", t, func() {
		calc := NewSubjectCalculator(&fakeStore{}, fakeTopicDirectory{}, fakeUserDirectory{}, logger.Get())

		Convey("When the subject is ranked", func() {
			_, err := calc.Rank(ctx, "nope")

			Convey("Then ErrSubjectNotFound is returned", func() {
				So(errors.Is(err, ErrSubjectNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a subject with no topics", t, func() {
		topics := fakeTopicDirectory{topics: map[string][]string{
			"empty": {},
		}}
		calc := NewSubjectCalculator(&fakeStore{}, topics, fakeUserDirectory{}, logger.Get())

		Convey("When the subject is ranked", func() {
			_, err := calc.Rank(ctx, "empty")

			Convey("Then ErrNoTopics is returned", func() {
				So(errors.Is(err, ErrNoTopics), ShouldBeTrue)
			})
		})
	})

	Convey("Given a subject nobody has watched", t, func() {
		topics := fakeTopicDirectory{topics: map[string][]string{
			"quiet": {"t9"},
		}}
		calc := NewSubjectCalculator(&fakeStore{}, topics, fakeUserDirectory{}, logger.Get())

		Convey("When the subject is ranked", func() {
			standings, err := calc.Rank(ctx, "quiet")

			Convey("Then the ranking is empty", func() {
				So(err, ShouldBeNil)
				So(standings, ShouldHaveLength, 0)
			})
		})
	})

	Convey("Given a failing store", t, func() {
		store := &fakeStore{listErr: errors.New("connection reset")}
		topics := fakeTopicDirectory{topics: map[string][]string{
			"math": {"t1"},
		}}
		calc := NewSubjectCalculator(store, topics, fakeUserDirectory{}, logger.Get())

		Convey("When the subject is ranked", func() {
			_, err := calc.Rank(ctx, "math")

			Convey("Then the error propagates", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
