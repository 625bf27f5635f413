package plan

import (
	"strings"
	"testing"
)

func TestTransitionTableAllPairs(t *testing.T) {
	// The full 36-pair truth table. Identity transitions are legal
	// everywhere, including on the terminal state.
	legal := map[Status][]Status{
		StatusPending:    {StatusInProgress, StatusBlocked},
		StatusInProgress: {StatusTesting, StatusBlocked, StatusDone},
		StatusTesting:    {StatusReview, StatusInProgress, StatusBlocked},
		StatusReview:     {StatusDone, StatusInProgress, StatusBlocked},
		StatusDone:       {},
		StatusBlocked:    {StatusInProgress, StatusPending},
	}

	for _, from := range AllStatuses {
		allowed := make(map[Status]bool)
		allowed[from] = true
		for _, to := range legal[from] {
			allowed[to] = true
		}
		for _, to := range AllStatuses {
			got := IsValidStatusTransition(from, to)
			if got != allowed[to] {
				t.Errorf("IsValidStatusTransition(%s, %s) = %v, want %v", from, to, got, allowed[to])
			}
		}
	}
}

func TestCheckTransitionMessages(t *testing.T) {
	if err := CheckTransition(StatusPending, StatusInProgress); err != nil {
		t.Errorf("pending -> in_progress should pass: %v", err)
	}

	err := CheckTransition(StatusDone, StatusPending)
	if err == nil {
		t.Fatal("done -> pending should fail")
	}
	want := "none (terminal state)"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("terminal error %q should contain %q", got, want)
	}

	err = CheckTransition(StatusPending, StatusDone)
	if err == nil {
		t.Fatal("pending -> done should fail")
	}
	if got := err.Error(); !strings.Contains(got, "in_progress, blocked") {
		t.Errorf("error %q should name the allowed set", got)
	}
}

func TestCalculateAutoStatus(t *testing.T) {
	tests := []struct {
		total, done int
		want        Status
	}{
		{0, 0, StatusPending},
		{5, 0, StatusPending},
		{5, 1, StatusInProgress},
		{5, 4, StatusInProgress},
		// Full completion lands in testing, never done.
		{5, 5, StatusTesting},
		{1, 1, StatusTesting},
	}
	for _, tt := range tests {
		got := CalculateAutoStatus(tt.total, tt.done)
		if got != tt.want {
			t.Errorf("CalculateAutoStatus(%d, %d) = %s, want %s", tt.total, tt.done, got, tt.want)
		}
		// Idempotent: same inputs, same answer.
		if again := CalculateAutoStatus(tt.total, tt.done); again != got {
			t.Errorf("CalculateAutoStatus(%d, %d) not stable: %s then %s", tt.total, tt.done, got, again)
		}
	}
}
