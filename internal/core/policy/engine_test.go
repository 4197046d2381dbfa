package policy

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakeRoles struct {
	role Role
	err  error
}

func (f *fakeRoles) Role(ctx context.Context, username string) (Role, error) {
	return f.role, f.err
}

type fakeCounter struct {
	count int
	err   error
}

func (f *fakeCounter) CountOpenAssigned(ctx context.Context, username string) (int, error) {
	return f.count, f.err
}

type fakeSpam map[string]bool

func (f fakeSpam) Contains(username string) bool {
	return f[username]
}

// historySource builds a ContributionSource where a user has completed
// the given number of issues per label, one issue per PR.
func historySource(completions map[string]int) *fakeSource {
	src := &fakeSource{
		linked: map[int][]int{},
		labels: map[int][]string{},
	}
	pr := 1000
	for label, n := range completions {
		for i := 0; i < n; i++ {
			src.prs = append(src.prs, MergedPullRequest{Number: pr, ClosedAt: day(1)})
			src.linked[pr] = []int{pr + 1}
			src.labels[pr+1] = []string{label}
			pr += 10
		}
	}
	return src
}

func newTestEngine(roles RoleLookup, spam SpamChecker, counter AssignmentCounter, src ContributionSource) *Engine {
	if src == nil {
		src = &fakeSource{}
	}
	return NewEngine(DefaultTable(), roles, spam, counter, NewScanner(src))
}

func TestEvaluateBypassDominates(t *testing.T) {
	// Simultaneously spam-listed, over capacity, and with zero
	// completions; the bypass role must still win.
	engine := newTestEngine(
		&fakeRoles{role: RoleTriage},
		fakeSpam{"insider": true},
		&fakeCounter{count: 99},
		nil,
	)

	for _, tier := range []Tier{TierGFI, TierBeginner, TierIntermediate} {
		d := engine.Evaluate(context.Background(), "insider", tier)
		if !d.Eligible {
			t.Errorf("tier %s: expected bypass for triage role, got %+v", tier, d)
		}
	}

	// Advanced requires committer; triage does not bypass it.
	d := engine.Evaluate(context.Background(), "insider", TierAdvanced)
	if d.Eligible {
		t.Fatal("triage role must not bypass the advanced tier")
	}

	engine = newTestEngine(&fakeRoles{role: RoleWrite}, fakeSpam{"dev": true}, &fakeCounter{count: 99}, nil)
	if d := engine.Evaluate(context.Background(), "dev", TierAdvanced); !d.Eligible {
		t.Fatalf("write role must bypass the advanced tier, got %+v", d)
	}
}

func TestEvaluateSpamRejection(t *testing.T) {
	engine := newTestEngine(
		&fakeRoles{role: RoleNone},
		fakeSpam{"spammer": true},
		&fakeCounter{count: 0},
		historySource(map[string]int{"good first issue": 5}),
	)

	tests := []struct {
		tier     Tier
		eligible bool
		reason   RejectionReason
	}{
		{TierGFI, true, ""}, // GFI permits spam-listed users
		{TierBeginner, false, ReasonSpam},
		{TierIntermediate, false, ReasonSpam},
		{TierAdvanced, false, ReasonSpam},
	}

	for _, tt := range tests {
		d := engine.Evaluate(context.Background(), "spammer", tt.tier)
		if d.Eligible != tt.eligible {
			t.Errorf("tier %s: eligible = %v, want %v", tt.tier, d.Eligible, tt.eligible)
		}
		if !tt.eligible && d.Reason != tt.reason {
			t.Errorf("tier %s: reason = %q, want %q", tt.tier, d.Reason, tt.reason)
		}
		if !tt.eligible && !d.Context.SpamListed {
			t.Errorf("tier %s: context should flag spam listing", tt.tier)
		}
	}
}

func TestEvaluateSpamAdjustedCapacity(t *testing.T) {
	// Spam-listed users get the reduced GFI cap of 1.
	engine := newTestEngine(
		&fakeRoles{role: RoleNone},
		fakeSpam{"spammer": true},
		&fakeCounter{count: 1},
		nil,
	)

	d := engine.Evaluate(context.Background(), "spammer", TierGFI)
	if d.Eligible {
		t.Fatal("expected capacity rejection at the spam-adjusted cap")
	}
	if d.Reason != ReasonCapacity {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonCapacity)
	}
	if d.Context.MaxAllowed != 1 || d.Context.OpenAssigned != 1 || !d.Context.SpamListed {
		t.Fatalf("unexpected context: %+v", d.Context)
	}

	// A regular user with the same open count stays under the cap of 2.
	engine = newTestEngine(&fakeRoles{role: RoleNone}, fakeSpam{}, &fakeCounter{count: 1}, nil)
	if d := engine.Evaluate(context.Background(), "regular", TierGFI); !d.Eligible {
		t.Fatalf("expected regular user under cap to be eligible, got %+v", d)
	}
}

func TestEvaluateCapacityFailsClosed(t *testing.T) {
	engine := newTestEngine(
		&fakeRoles{role: RoleNone},
		fakeSpam{},
		&fakeCounter{err: errors.New("search unavailable")},
		historySource(map[string]int{"good first issue": 1}),
	)

	d := engine.Evaluate(context.Background(), "unlucky", TierGFI)
	if d.Eligible {
		t.Fatal("counter failure must deny assignment")
	}
	if d.Reason != ReasonCapacity {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonCapacity)
	}
	if d.Context.OpenAssigned != math.MaxInt {
		t.Fatalf("expected sentinel open count, got %d", d.Context.OpenAssigned)
	}
}

func TestEvaluateRoleLookupFailureFailsClosed(t *testing.T) {
	// A failed role lookup means no bypass; the remaining checks run.
	engine := newTestEngine(
		&fakeRoles{err: errors.New("boom")},
		fakeSpam{"spammer": true},
		&fakeCounter{count: 0},
		nil,
	)

	d := engine.Evaluate(context.Background(), "spammer", TierBeginner)
	if d.Eligible || d.Reason != ReasonSpam {
		t.Fatalf("expected spam rejection after role failure, got %+v", d)
	}
}

func TestEvaluatePrerequisiteLadder(t *testing.T) {
	tests := []struct {
		name        string
		completions map[string]int
		tier        Tier
		eligible    bool
		reason      RejectionReason
	}{
		{
			name:        "gfi has no prerequisites",
			completions: nil,
			tier:        TierGFI,
			eligible:    true,
		},
		{
			name:        "beginner without gfi",
			completions: nil,
			tier:        TierBeginner,
			reason:      ReasonMissingGFI,
		},
		{
			name:        "beginner with one gfi",
			completions: map[string]int{"good first issue": 1},
			tier:        TierBeginner,
			eligible:    true,
		},
		{
			name:        "intermediate missing beginner",
			completions: map[string]int{"good first issue": 1},
			tier:        TierIntermediate,
			reason:      ReasonMissingBeginner,
		},
		{
			name:        "intermediate complete",
			completions: map[string]int{"good first issue": 1, "beginner": 1},
			tier:        TierIntermediate,
			eligible:    true,
		},
		{
			name:        "advanced missing intermediate",
			completions: map[string]int{"good first issue": 3, "beginner": 3},
			tier:        TierAdvanced,
			reason:      ReasonMissingIntermediate,
		},
		{
			name:        "advanced complete",
			completions: map[string]int{"intermediate": 1},
			tier:        TierAdvanced,
			eligible:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(
				&fakeRoles{role: RoleNone},
				fakeSpam{},
				&fakeCounter{count: 0},
				historySource(tt.completions),
			)

			d := engine.Evaluate(context.Background(), "user", tt.tier)
			if d.Eligible != tt.eligible {
				t.Fatalf("eligible = %v, want %v (%+v)", d.Eligible, tt.eligible, d)
			}
			if !tt.eligible {
				if d.Reason != tt.reason {
					t.Fatalf("reason = %q, want %q", d.Reason, tt.reason)
				}
				if d.Context.RequiredCount == 0 {
					t.Fatal("rejection context must carry the required count")
				}
			}
		})
	}
}

func TestEvaluateRejectionContextCounts(t *testing.T) {
	engine := newTestEngine(
		&fakeRoles{role: RoleNone},
		fakeSpam{},
		&fakeCounter{count: 0},
		historySource(nil),
	)

	d := engine.Evaluate(context.Background(), "newbie", TierBeginner)
	if d.Eligible {
		t.Fatal("expected rejection")
	}
	if d.Context.CompletedCount != 0 || d.Context.RequiredCount != 1 {
		t.Fatalf("expected 0/1 completion context, got %+v", d.Context)
	}
	if d.Context.PrereqLabel != "good first issue" {
		t.Fatalf("expected prerequisite label, got %q", d.Context.PrereqLabel)
	}
}

func TestTierForLabels(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name   string
		labels []string
		want   Tier
		found  bool
	}{
		{"no tier label", []string{"bug", "docs"}, "", false},
		{"gfi exact", []string{"good first issue"}, TierGFI, true},
		{"case insensitive", []string{"Good First Issue"}, TierGFI, true},
		{"hardest wins", []string{"good first issue", "Advanced"}, TierAdvanced, true},
		{"beginner", []string{"beginner", "bug"}, TierBeginner, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := table.TierForLabels(tt.labels)
			if found != tt.found || got != tt.want {
				t.Fatalf("TierForLabels(%v) = (%q, %v), want (%q, %v)", tt.labels, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role      Role
		team      bool
		triager   bool
		committer bool
	}{
		{RoleNone, false, false, false},
		{RoleTriage, true, true, false},
		{RoleWrite, true, false, true},
		{RoleMaintain, true, false, true},
		{RoleAdmin, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			if got := tt.role.IsTeamMember(); got != tt.team {
				t.Errorf("IsTeamMember = %v, want %v", got, tt.team)
			}
			if got := tt.role.IsTriagerOnly(); got != tt.triager {
				t.Errorf("IsTriagerOnly = %v, want %v", got, tt.triager)
			}
			if got := tt.role.IsCommitter(); got != tt.committer {
				t.Errorf("IsCommitter = %v, want %v", got, tt.committer)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"maintain", RoleMaintain},
		{"write", RoleWrite},
		{"push", RoleWrite},
		{"triage", RoleTriage},
		{"read", RoleNone},
		{"pull", RoleNone},
		{"none", RoleNone},
		{"", RoleNone},
		{"garbage", RoleNone},
	}

	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
