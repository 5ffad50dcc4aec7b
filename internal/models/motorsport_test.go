package models

import "testing"

func TestEventExternalID(t *testing.T) {
	tests := []struct {
		season int
		round  int
		sub    string
		want   string
	}{
		{2024, 1, SessionRace, "2024-1-race"},
		{2024, 1, SessionFirstPractice, "2024-1-fp1"},
		{2024, 12, SessionQualifying, "2024-12-qualifying"},
		{2024, 5, SessionSprintQualifying, "2024-5-sprintqualifying"},
		{1950, 1, SessionRace, "1950-1-race"},
	}

	for _, tt := range tests {
		if got := EventExternalID(tt.season, tt.round, tt.sub); got != tt.want {
			t.Errorf("EventExternalID(%d, %d, %q) = %q, want %q", tt.season, tt.round, tt.sub, got, tt.want)
		}
	}
}
