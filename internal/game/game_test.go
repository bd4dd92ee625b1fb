package game

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewAPIKey(t *testing.T) {
	t.Run("uses prefix and hex", func(t *testing.T) {
		key, err := NewAPIKey(bytes.NewReader(bytes.Repeat([]byte{0xab}, 16)))
		if err != nil {
			t.Fatalf("didn't want %q", err)
		}
		if got, want := key, "RBXG-"+strings.Repeat("ab", 16); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
		if !IsAPIKey(key) {
			t.Fatalf("got IsAPIKey false for %q", key)
		}
	})

	t.Run("fails on short random", func(t *testing.T) {
		_, err := NewAPIKey(bytes.NewReader([]byte{1, 2}))
		if err == nil {
			t.Fatal("want error")
		}
	})

	t.Run("generates distinct keys", func(t *testing.T) {
		a, err := NewAPIKey(nil)
		if err != nil {
			t.Fatalf("didn't want %q", err)
		}
		b, err := NewAPIKey(nil)
		if err != nil {
			t.Fatalf("didn't want %q", err)
		}
		if a == b {
			t.Fatalf("got equal keys %q", a)
		}
	})
}

func TestContainerTypeFromString(t *testing.T) {
	tests := []struct {
		name      string
		s         string
		want      ContainerType
		wantKnown bool
	}{
		{name: "display", s: "DISPLAY", want: ContainerTypeDisplay, wantKnown: true},
		{name: "lowercase npc", s: "npc", want: ContainerTypeNPC, wantKnown: true},
		{name: "minigame", s: "MINIGAME", want: ContainerTypeMinigame, wantKnown: true},
		{name: "unknown", s: "BILLBOARD", want: "BILLBOARD", wantKnown: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ContainerTypeFromString(tt.s)
			if got != tt.want || known != tt.wantKnown {
				t.Fatalf("got %v %v, want %v %v", got, known, tt.want, tt.wantKnown)
			}
		})
	}
}

func TestIsAPIKey(t *testing.T) {
	for _, s := range []string{"", "RBXG-", "rbxg-abc", "abc"} {
		if IsAPIKey(s) {
			t.Errorf("got IsAPIKey true for %q", s)
		}
	}
}
