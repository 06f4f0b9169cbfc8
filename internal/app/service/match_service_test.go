package service

import (
	"testing"
	"time"
)

func TestDecideWinner(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b playerStanding
		want string
	}{
		{
			name: "higher score wins",
			a:    playerStanding{UserID: "alice", Score: 30, FinishedAt: base.Add(time.Minute)},
			b:    playerStanding{UserID: "bob", Score: 20, FinishedAt: base},
			want: "alice",
		},
		{
			name: "score tie goes to the earlier finisher",
			a:    playerStanding{UserID: "alice", Score: 20, FinishedAt: base.Add(time.Second)},
			b:    playerStanding{UserID: "bob", Score: 20, FinishedAt: base},
			want: "bob",
		},
		{
			name: "full tie goes to the smaller user id",
			a:    playerStanding{UserID: "zed", Score: 20, FinishedAt: base},
			b:    playerStanding{UserID: "amy", Score: 20, FinishedAt: base},
			want: "amy",
		},
		{
			name: "zero scores still decide",
			a:    playerStanding{UserID: "alice", FinishedAt: base},
			b:    playerStanding{UserID: "bob", FinishedAt: base.Add(time.Hour)},
			want: "alice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decideWinner(tt.a, tt.b); got != tt.want {
				t.Errorf("decideWinner() = %q, want %q", got, tt.want)
			}
			// Argument order must not change the outcome.
			if got := decideWinner(tt.b, tt.a); got != tt.want {
				t.Errorf("decideWinner() swapped = %q, want %q", got, tt.want)
			}
		})
	}
}
