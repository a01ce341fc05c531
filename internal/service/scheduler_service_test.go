package service

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "08:00", want: "0 0 8 * * *"},
		{in: "22:30", want: "0 30 22 * * *"},
		{in: "00:05", want: "0 5 0 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "0800", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := buildDailySpec(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("buildDailySpec(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("buildDailySpec(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("buildDailySpec(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScheduleAtPastInstant(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	if s.ScheduleAt(time.Now().Add(-time.Minute), func() {}) {
		t.Error("past instant must not be scheduled")
	}
}

func TestScheduleAtFutureInstant(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	fired := make(chan struct{})
	if !s.ScheduleAt(time.Now().Add(20*time.Millisecond), func() { close(fired) }) {
		t.Fatal("future instant should be scheduled")
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Error("scheduled job never fired")
	}
}
