package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tiergh/tier-bot/internal/core/policy"
)

// TestConfigDefaults verifies that default values are applied correctly.
func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.SpamList.Path != ".github/spam-list.txt" {
		t.Errorf("Expected default spam list path, got %s", cfg.SpamList.Path)
	}
	if cfg.MentorRoster.Path != ".github/mentors.txt" {
		t.Errorf("Expected default mentor roster path, got %s", cfg.MentorRoster.Path)
	}
	if cfg.CandidateLabel != "good first issue candidate" {
		t.Errorf("Expected default candidate label, got %s", cfg.CandidateLabel)
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("TIERBOT_SPAM_LIST", "ops/blocklist.txt")
	t.Setenv("TIERBOT_MENTOR_MARKER", "<!-- fork:mentor -->")

	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.SpamList.Path != "ops/blocklist.txt" {
		t.Errorf("Expected env override for spam list path, got %s", cfg.SpamList.Path)
	}
	if cfg.Markers.Mentor != "<!-- fork:mentor -->" {
		t.Errorf("Expected env override for mentor marker, got %s", cfg.Markers.Mentor)
	}
}

func TestLoadConfig(t *testing.T) {
	yamlContent := `
tiers:
  advanced:
    max_open: 1
    prerequisites:
      - tier: intermediate
        count: 2
  gfi:
    cutoff: "2024-03-01"
spam_list:
  path: .github/spam.txt
comments:
  required: true
bot_users:
  - ci-runner
`
	path := filepath.Join(t.TempDir(), "tierbot.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SpamList.Path != ".github/spam.txt" {
		t.Errorf("SpamList.Path = %s", cfg.SpamList.Path)
	}
	if !cfg.Comments.Required {
		t.Error("Comments.Required should be true")
	}

	table, err := cfg.BuildTable()
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}

	adv := table[policy.TierAdvanced]
	if adv.MaxOpen != 1 {
		t.Errorf("advanced MaxOpen = %d, want 1", adv.MaxOpen)
	}
	if len(adv.Prerequisites) != 1 || adv.Prerequisites[0].Tier != policy.TierIntermediate || adv.Prerequisites[0].Count != 2 {
		t.Errorf("advanced prerequisites = %+v", adv.Prerequisites)
	}

	gfi := table[policy.TierGFI]
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !gfi.Cutoff.Equal(want) {
		t.Errorf("gfi cutoff = %v, want %v", gfi.Cutoff, want)
	}
	// Untouched defaults survive.
	if gfi.MaxOpen != 2 || gfi.MaxOpenSpam != 1 {
		t.Errorf("gfi caps changed unexpectedly: %+v", gfi)
	}
}

func TestBuildTableRejectsUnknownNames(t *testing.T) {
	cfg := &Config{Tiers: map[string]TierConfig{"expert": {}}}
	if _, err := cfg.BuildTable(); err == nil {
		t.Fatal("expected error for unknown tier name")
	}

	cfg = &Config{Tiers: map[string]TierConfig{"gfi": {Bypass: "superuser"}}}
	if _, err := cfg.BuildTable(); err == nil {
		t.Fatal("expected error for unknown bypass role")
	}

	cfg = &Config{Tiers: map[string]TierConfig{"gfi": {Cutoff: "March 1"}}}
	if _, err := cfg.BuildTable(); err == nil {
		t.Fatal("expected error for malformed cutoff")
	}
}

func TestMergeConfigs(t *testing.T) {
	parent := &Config{
		SpamList:       ResourceConfig{Path: "parent-spam.txt"},
		CandidateLabel: "candidate",
		Tiers: map[string]TierConfig{
			"gfi": {MaxOpen: 3},
		},
	}

	child := &Config{
		SpamList: ResourceConfig{Path: "child-spam.txt"},
		Tiers: map[string]TierConfig{
			"beginner": {MaxOpen: 1},
		},
	}

	merged := mergeConfigs(parent, child)

	if merged.SpamList.Path != "child-spam.txt" {
		t.Errorf("child spam list should win, got %s", merged.SpamList.Path)
	}
	if merged.CandidateLabel != "candidate" {
		t.Errorf("parent candidate label should survive, got %s", merged.CandidateLabel)
	}
	if _, ok := merged.Tiers["gfi"]; !ok {
		t.Error("parent tier override lost in merge")
	}
	if _, ok := merged.Tiers["beginner"]; !ok {
		t.Error("child tier override lost in merge")
	}
}

func TestParseExtendsRef(t *testing.T) {
	tests := []struct {
		ref     string
		org     string
		repo    string
		branch  string
		path    string
		wantErr bool
	}{
		{"acme/shared@main", "acme", "shared", "main", ".github/tierbot.yaml", false},
		{"acme/shared@main:configs/tier.yaml", "acme", "shared", "main", "configs/tier.yaml", false},
		{"acme-shared", "", "", "", "", true},
		{"acme@main", "", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			org, repo, branch, path, err := ParseExtendsRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if org != tt.org || repo != tt.repo || branch != tt.branch || path != tt.path {
				t.Fatalf("got (%s, %s, %s, %s)", org, repo, branch, path)
			}
		})
	}
}
