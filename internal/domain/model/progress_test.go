package model

import (
	"errors"
	"testing"
	"time"
)

func TestValidatePercentage(t *testing.T) {
	valid := []float64{0, 0.5, 50, 99.999, 100}
	for _, pct := range valid {
		if err := ValidatePercentage(pct); err != nil {
			t.Errorf("expected %v to be valid, got %v", pct, err)
		}
	}

	invalid := []float64{-0.001, -1, 100.001, 150, 1000}
	for _, pct := range invalid {
		err := ValidatePercentage(pct)
		if err == nil {
			t.Errorf("expected %v to be rejected", pct)
			continue
		}
		if !errors.Is(err, ErrInvalidPercentage) {
			t.Errorf("expected ErrInvalidPercentage for %v, got %v", pct, err)
		}
	}
}

func TestNewProgressRecord_Completion(t *testing.T) {
	now := time.Now()

	rec := NewProgressRecord("u1", "t1", 99.9, now)
	if rec.IsCompleted {
		t.Error("expected record below 100 to be incomplete")
	}

	rec = NewProgressRecord("u1", "t1", 100, now)
	if !rec.IsCompleted {
		t.Error("expected record at 100 to be completed")
	}
}

func TestApply_StickyCompletion(t *testing.T) {
	now := time.Now()
	rec := NewProgressRecord("u1", "t1", 40, now)

	rec.Apply(100, now.Add(time.Minute))
	if !rec.IsCompleted {
		t.Fatal("expected completion at 100")
	}

	// A later lower report keeps the completion flag.
	rec.Apply(20, now.Add(2*time.Minute))
	if !rec.IsCompleted {
		t.Error("expected completion to stay set after a lower report")
	}
	if rec.WatchTimePercentage != 20 {
		t.Errorf("expected watch time 20, got %v", rec.WatchTimePercentage)
	}
}

func TestApply_RefreshesTimestamp(t *testing.T) {
	t0 := time.Now()
	t1 := t0.Add(time.Hour)

	rec := NewProgressRecord("u1", "t1", 10, t0)
	rec.Apply(30, t1)

	if !rec.UpdatedAt.Equal(t1) {
		t.Errorf("expected UpdatedAt %v, got %v", t1, rec.UpdatedAt)
	}
}
