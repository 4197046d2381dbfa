// Package policy implements the tiered eligibility rules that gate
// issue self-assignment: who may take Good First Issue, Beginner,
// Intermediate, and Advanced issues, how many open assignments a
// contributor may hold, and which repository roles bypass the checks.
package policy

import "time"

// Tier is one rung of the issue difficulty ladder, ordered from
// easiest to hardest.
type Tier string

const (
	TierGFI          Tier = "gfi"
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

// Tiers lists all tiers in ascending difficulty order.
var Tiers = []Tier{TierGFI, TierBeginner, TierIntermediate, TierAdvanced}

// ParseTier maps a tier name to its Tier value.
func ParseTier(name string) (Tier, bool) {
	switch Tier(name) {
	case TierGFI, TierBeginner, TierIntermediate, TierAdvanced:
		return Tier(name), true
	}
	return "", false
}

// BypassRole names which role class exempts a contributor from a
// tier's checks.
type BypassRole string

const (
	// BypassTeam exempts any team member (triage or above).
	BypassTeam BypassRole = "team"

	// BypassCommitter exempts committers only (write or above).
	BypassCommitter BypassRole = "committer"

	// BypassTriager exempts users whose role is exactly triage.
	// Kept for the stricter policy variant; the default table does
	// not use it.
	BypassTriager BypassRole = "triager"
)

// Exempts reports whether the given role satisfies this bypass rule.
func (b BypassRole) Exempts(r Role) bool {
	switch b {
	case BypassTeam:
		return r.IsTeamMember()
	case BypassCommitter:
		return r.IsCommitter()
	case BypassTriager:
		return r.IsTriagerOnly()
	}
	return false
}

// Prerequisite is a lower tier a contributor must have completed
// issues of before reaching a higher tier.
type Prerequisite struct {
	Tier  Tier
	Count int
}

// TierPolicy holds the parameters of one tier.
type TierPolicy struct {
	// Label is the issue label that marks this tier. Matched
	// case-insensitively.
	Label string

	// Bypass is the role class that skips every check for this tier.
	Bypass BypassRole

	// SpamAllowed permits spam-listed users to take this tier.
	SpamAllowed bool

	// MaxOpen is the open-assignment cap for regular users.
	MaxOpen int

	// MaxOpenSpam is the cap for spam-listed users where they are
	// allowed at all. Zero means MaxOpen applies.
	MaxOpenSpam int

	// Prerequisites are checked in ascending tier order.
	Prerequisites []Prerequisite

	// Cutoff, when non-zero, excludes work merged before the tier's
	// label existed. Pull requests older than this cannot count.
	Cutoff time.Time
}

// EffectiveMaxOpen returns the assignment cap that applies to a user,
// accounting for the reduced spam-listed cap.
func (p TierPolicy) EffectiveMaxOpen(spamListed bool) int {
	if spamListed && p.MaxOpenSpam > 0 {
		return p.MaxOpenSpam
	}
	return p.MaxOpen
}

// Table maps each tier to its policy.
type Table map[Tier]TierPolicy

// DefaultTable returns the canonical policy table.
func DefaultTable() Table {
	return Table{
		TierGFI: {
			Label:       "good first issue",
			Bypass:      BypassTeam,
			SpamAllowed: true,
			MaxOpen:     2,
			MaxOpenSpam: 1,
		},
		TierBeginner: {
			Label:   "beginner",
			Bypass:  BypassTeam,
			MaxOpen: 2,
			Prerequisites: []Prerequisite{
				{Tier: TierGFI, Count: 1},
			},
		},
		TierIntermediate: {
			Label:   "intermediate",
			Bypass:  BypassTeam,
			MaxOpen: 2,
			Prerequisites: []Prerequisite{
				{Tier: TierGFI, Count: 1},
				{Tier: TierBeginner, Count: 1},
			},
		},
		TierAdvanced: {
			Label:   "advanced",
			Bypass:  BypassCommitter,
			MaxOpen: 2,
			Prerequisites: []Prerequisite{
				{Tier: TierIntermediate, Count: 1},
			},
		},
	}
}

// TierForLabels returns the tier an issue belongs to based on its
// labels. When an issue carries several tier labels the hardest one
// wins, since it is the most restrictive to assign.
func (t Table) TierForLabels(labels []string) (Tier, bool) {
	for i := len(Tiers) - 1; i >= 0; i-- {
		tier := Tiers[i]
		policy, ok := t[tier]
		if !ok {
			continue
		}
		for _, l := range labels {
			if equalLabel(l, policy.Label) {
				return tier, true
			}
		}
	}
	return "", false
}
