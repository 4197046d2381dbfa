// Package config handles loading and merging tier-bot configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tiergh/tier-bot/internal/core/policy"
)

// Config is the root configuration structure.
type Config struct {
	// Extends allows inheriting from a remote config (e.g., "org/repo@branch").
	Extends string `yaml:"extends,omitempty"`

	// Tiers overrides the default policy table per tier, keyed by
	// tier name (gfi, beginner, intermediate, advanced).
	Tiers map[string]TierConfig `yaml:"tiers,omitempty"`

	// SpamList configures the spam registry resource.
	SpamList ResourceConfig `yaml:"spam_list"`

	// MentorRoster configures the mentor rotation resource.
	MentorRoster ResourceConfig `yaml:"mentor_roster"`

	// Comments holds comment-posting behavior settings.
	Comments CommentsConfig `yaml:"comments"`

	// Markers overrides the duplicate-guard marker strings.
	Markers MarkersConfig `yaml:"markers"`

	// CandidateLabel is the triage label cleaned up once a real tier
	// label lands on an issue.
	CandidateLabel string `yaml:"candidate_label,omitempty"`

	// BotUsers lists additional accounts treated as bots.
	BotUsers []string `yaml:"bot_users,omitempty"`

	// Steps overrides the workflow preset with an explicit step list.
	Steps []string `yaml:"steps,omitempty"`

	// Repositories lists the repositories this config applies to.
	Repositories []RepositoryConfig `yaml:"repositories,omitempty"`
}

// TierConfig overrides one tier's policy parameters. Zero values keep
// the defaults.
type TierConfig struct {
	Label         string             `yaml:"label,omitempty"`
	Bypass        string             `yaml:"bypass,omitempty"`
	SpamAllowed   *bool              `yaml:"spam_allowed,omitempty"`
	MaxOpen       int                `yaml:"max_open,omitempty"`
	MaxOpenSpam   int                `yaml:"max_open_spam,omitempty"`
	Cutoff        string             `yaml:"cutoff,omitempty"` // YYYY-MM-DD
	Prerequisites []PrerequisiteNode `yaml:"prerequisites,omitempty"`
}

// PrerequisiteNode is one prerequisite entry in the config.
type PrerequisiteNode struct {
	Tier  string `yaml:"tier"`
	Count int    `yaml:"count"`
}

// ResourceConfig points at a flat-file resource, either a local path
// or a path within the repository (fetched via the contents API).
type ResourceConfig struct {
	Path string `yaml:"path,omitempty"`
	Ref  string `yaml:"ref,omitempty"`
}

// CommentsConfig holds comment-posting behavior.
type CommentsConfig struct {
	// Required makes a failed render an error instead of a silent
	// revert. Both behaviors exist across the handlers this replaces,
	// so it stays configurable rather than unified.
	Required bool `yaml:"required"`
}

// MarkersConfig overrides the duplicate-guard markers.
type MarkersConfig struct {
	Rejection string `yaml:"rejection,omitempty"`
	Mentor    string `yaml:"mentor,omitempty"`
}

// RepositoryConfig defines a repository and its settings.
type RepositoryConfig struct {
	Org     string `yaml:"org"`
	Repo    string `yaml:"repo"`
	Enabled bool   `yaml:"enabled"`
}

// Default returns a config holding only the built-in defaults, for
// runs without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads a config file from the given path and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// LoadWithInheritance loads a config and resolves the 'extends' chain.
// The fetcher function is used to retrieve remote configs.
func LoadWithInheritance(path string, fetcher func(ref string) ([]byte, error)) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if cfg.Extends == "" {
		return cfg, nil
	}

	parentData, err := fetcher(cfg.Extends)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parent config '%s': %w", cfg.Extends, err)
	}

	expanded := os.ExpandEnv(string(parentData))
	var parentCfg Config
	if err := yaml.Unmarshal([]byte(expanded), &parentCfg); err != nil {
		return nil, fmt.Errorf("failed to parse parent config: %w", err)
	}

	// Merge: child overrides parent
	merged := mergeConfigs(&parentCfg, cfg)
	merged.applyDefaults()

	return merged, nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	candidates := []string{
		".github/tierbot.yaml",
		".github/tierbot.yml",
		".tierbot.yaml",
		".tierbot.yml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields. Environment
// variables override file values for resource paths and markers so a
// workflow definition can retarget them without editing the config.
func (c *Config) applyDefaults() {
	if v := os.Getenv("TIERBOT_SPAM_LIST"); v != "" {
		c.SpamList.Path = v
	}
	if c.SpamList.Path == "" {
		c.SpamList.Path = ".github/spam-list.txt"
	}

	if v := os.Getenv("TIERBOT_MENTOR_ROSTER"); v != "" {
		c.MentorRoster.Path = v
	}
	if c.MentorRoster.Path == "" {
		c.MentorRoster.Path = ".github/mentors.txt"
	}

	if v := os.Getenv("TIERBOT_REJECTION_MARKER"); v != "" {
		c.Markers.Rejection = v
	}
	if v := os.Getenv("TIERBOT_MENTOR_MARKER"); v != "" {
		c.Markers.Mentor = v
	}

	if c.CandidateLabel == "" {
		c.CandidateLabel = "good first issue candidate"
	}
}

// mergeConfigs merges a child config onto a parent config.
// Non-zero values in child override parent.
func mergeConfigs(parent, child *Config) *Config {
	result := *parent

	if len(child.Tiers) > 0 {
		if result.Tiers == nil {
			result.Tiers = map[string]TierConfig{}
		}
		for name, tc := range child.Tiers {
			result.Tiers[name] = tc
		}
	}
	if child.SpamList.Path != "" {
		result.SpamList = child.SpamList
	}
	if child.MentorRoster.Path != "" {
		result.MentorRoster = child.MentorRoster
	}
	if child.Markers.Rejection != "" {
		result.Markers.Rejection = child.Markers.Rejection
	}
	if child.Markers.Mentor != "" {
		result.Markers.Mentor = child.Markers.Mentor
	}
	if child.CandidateLabel != "" {
		result.CandidateLabel = child.CandidateLabel
	}
	if len(child.BotUsers) > 0 {
		result.BotUsers = child.BotUsers
	}
	if len(child.Steps) > 0 {
		result.Steps = child.Steps
	}
	// Required: always take the child value so it can override parent
	// true -> false and vice versa.
	result.Comments.Required = child.Comments.Required

	// Repositories: child completely overrides if non-empty
	if len(child.Repositories) > 0 {
		result.Repositories = child.Repositories
	}

	return &result
}

// BuildTable produces the effective policy table: the canonical
// defaults with this config's per-tier overrides applied.
func (c *Config) BuildTable() (policy.Table, error) {
	table := policy.DefaultTable()

	for name, tc := range c.Tiers {
		tier, ok := policy.ParseTier(name)
		if !ok {
			return nil, fmt.Errorf("unknown tier %q in config", name)
		}
		p := table[tier]

		if tc.Label != "" {
			p.Label = tc.Label
		}
		if tc.Bypass != "" {
			switch policy.BypassRole(tc.Bypass) {
			case policy.BypassTeam, policy.BypassCommitter, policy.BypassTriager:
				p.Bypass = policy.BypassRole(tc.Bypass)
			default:
				return nil, fmt.Errorf("unknown bypass role %q for tier %q", tc.Bypass, name)
			}
		}
		if tc.SpamAllowed != nil {
			p.SpamAllowed = *tc.SpamAllowed
		}
		if tc.MaxOpen > 0 {
			p.MaxOpen = tc.MaxOpen
		}
		if tc.MaxOpenSpam > 0 {
			p.MaxOpenSpam = tc.MaxOpenSpam
		}
		if tc.Cutoff != "" {
			cutoff, err := time.Parse("2006-01-02", tc.Cutoff)
			if err != nil {
				return nil, fmt.Errorf("invalid cutoff %q for tier %q: %w", tc.Cutoff, name, err)
			}
			p.Cutoff = cutoff
		}
		if len(tc.Prerequisites) > 0 {
			var prereqs []policy.Prerequisite
			for _, node := range tc.Prerequisites {
				prereqTier, ok := policy.ParseTier(node.Tier)
				if !ok {
					return nil, fmt.Errorf("unknown prerequisite tier %q for tier %q", node.Tier, name)
				}
				count := node.Count
				if count <= 0 {
					count = 1
				}
				prereqs = append(prereqs, policy.Prerequisite{Tier: prereqTier, Count: count})
			}
			p.Prerequisites = prereqs
		}

		table[tier] = p
	}

	return table, nil
}

// ParseExtendsRef parses "org/repo@branch" into components.
func ParseExtendsRef(ref string) (org, repo, branch, path string, err error) {
	// Format: org/repo@branch or org/repo@branch:path
	parts := strings.SplitN(ref, "@", 2)
	if len(parts) != 2 {
		return "", "", "", "", fmt.Errorf("invalid extends reference: %s (expected org/repo@branch)", ref)
	}

	orgRepo := strings.SplitN(parts[0], "/", 2)
	if len(orgRepo) != 2 {
		return "", "", "", "", fmt.Errorf("invalid extends reference: %s (expected org/repo)", ref)
	}

	org = orgRepo[0]
	repo = orgRepo[1]

	branchPath := strings.SplitN(parts[1], ":", 2)
	branch = branchPath[0]
	if len(branchPath) == 2 {
		path = branchPath[1]
	} else {
		path = ".github/tierbot.yaml" // default path
	}

	return org, repo, branch, path, nil
}
