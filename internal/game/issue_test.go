package game

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type SpyDatabase struct {
	Database
	SetCalls  []string
	Conflicts int
}

func (d *SpyDatabase) SetServerAPIKey(_ context.Context, ownerID uuid.UUID, gameID, apiKey string) (*Game, error) {
	d.SetCalls = append(d.SetCalls, apiKey)
	if len(d.SetCalls) <= d.Conflicts {
		return nil, ErrAPIKeyConflict
	}
	return &Game{ID: gameID, OwnerID: ownerID, ServerAPIKey: apiKey}, nil
}

func TestIssueAPIKey(t *testing.T) {
	ownerID := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")

	tests := []struct {
		name      string
		conflicts int
		wantCalls int
		wantErr   error
	}{
		{name: "stores first key", conflicts: 0, wantCalls: 1},
		{name: "retries on conflict", conflicts: 2, wantCalls: 3},
		{name: "gives up after attempts", conflicts: 3, wantCalls: 3, wantErr: ErrAPIKeyConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &SpyDatabase{Conflicts: tt.conflicts}

			g, err := IssueAPIKey(context.Background(), db, nil, ownerID, "g1")
			if got, want := len(db.SetCalls), tt.wantCalls; got != want {
				t.Fatalf("got %d calls, want %d", got, want)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("didn't want %q", err)
			}
			if got, want := g.ServerAPIKey, db.SetCalls[len(db.SetCalls)-1]; got != want {
				t.Fatalf("got %q, want %q", got, want)
			}
		})
	}
}
