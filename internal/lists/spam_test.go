package lists

import (
	"errors"
	"testing"
)

func staticLoader(content string) Loader {
	return func() ([]byte, error) {
		return []byte(content), nil
	}
}

func TestSpamRegistryMembership(t *testing.T) {
	registry := NewSpamRegistry(staticLoader("# known spam accounts\n\nBadActor\nthrowaway-123\n  spaced-name  \n"))

	tests := []struct {
		username string
		want     bool
	}{
		{"badactor", true},
		{"BadActor", true},
		{"BADACTOR", true},
		{"throwaway-123", true},
		{"spaced-name", true},
		{"gooduser", false},
		{"", false},
		{"# known spam accounts", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			if got := registry.Contains(tt.username); got != tt.want {
				t.Fatalf("Contains(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}

	if got := registry.Size(); got != 3 {
		t.Fatalf("Size = %d, want 3", got)
	}
}

func TestSpamRegistryFailsOpen(t *testing.T) {
	registry := NewSpamRegistry(func() ([]byte, error) {
		return nil, errors.New("resource unreachable")
	})

	for _, user := range []string{"anyone", "badactor", ""} {
		if registry.Contains(user) {
			t.Fatalf("Contains(%q) = true after load failure, want false", user)
		}
	}
}

func TestSpamRegistryLoadsOnce(t *testing.T) {
	loads := 0
	registry := NewSpamRegistry(func() ([]byte, error) {
		loads++
		return []byte("someone\n"), nil
	})

	registry.Contains("a")
	registry.Contains("b")
	registry.Contains("someone")

	if loads != 1 {
		t.Fatalf("expected a single load, got %d", loads)
	}
}

func TestSpamRegistryNilLoader(t *testing.T) {
	registry := NewSpamRegistry(nil)
	if registry.Contains("anyone") {
		t.Fatal("nil loader must behave as an empty list")
	}
}
