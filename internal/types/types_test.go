package types

import "testing"

func TestStatusIsValid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []Status{"", "open", "closed", "NEW", "pending"} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusNew, StatusAcknowledged, true},
		{StatusNew, StatusInProgress, true},
		{StatusNew, StatusBlocked, true},
		{StatusNew, StatusDone, false},
		{StatusAcknowledged, StatusInProgress, true},
		{StatusAcknowledged, StatusDone, false},
		{StatusInProgress, StatusDone, true},
		{StatusInProgress, StatusBlocked, true},
		{StatusInProgress, StatusAcknowledged, false},
		{StatusDone, StatusNew, false},
		{StatusDone, StatusBlocked, false},
		{StatusBlocked, StatusInProgress, true},
		{StatusBlocked, StatusNew, true},
		{StatusBlocked, StatusDone, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	// Identity transitions are always legal, including on terminal states.
	for _, s := range AllStatuses {
		if !s.CanTransition(s) {
			t.Errorf("identity transition on %s should be legal", s)
		}
	}
}

func TestDescribeAllowed(t *testing.T) {
	if got := StatusDone.DescribeAllowed(); got != "none (terminal state)" {
		t.Errorf("DescribeAllowed(done) = %q", got)
	}
	if got := StatusBlocked.DescribeAllowed(); got != "in_progress, new" {
		t.Errorf("DescribeAllowed(blocked) = %q", got)
	}
}
