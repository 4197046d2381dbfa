package policy

import (
	"context"
	"log"
	"math"
)

// RoleLookup resolves a contributor's repository role. A user who is
// not a collaborator resolves to RoleNone without error.
type RoleLookup interface {
	Role(ctx context.Context, username string) (Role, error)
}

// AssignmentCounter counts a contributor's currently open assigned
// issues in the repository.
type AssignmentCounter interface {
	CountOpenAssigned(ctx context.Context, username string) (int, error)
}

// SpamChecker reports spam-list membership.
type SpamChecker interface {
	Contains(username string) bool
}

// Engine evaluates a contributor against one tier's rules. Checks run
// in a fixed order and the first failing rule decides: bypass, spam,
// capacity, then prerequisites in ascending tier order.
type Engine struct {
	table   Table
	roles   RoleLookup
	spam    SpamChecker
	counter AssignmentCounter
	scanner *Scanner
	verbose bool
}

// NewEngine creates an eligibility engine over the given collaborators.
func NewEngine(table Table, roles RoleLookup, spam SpamChecker, counter AssignmentCounter, scanner *Scanner) *Engine {
	return &Engine{
		table:   table,
		roles:   roles,
		spam:    spam,
		counter: counter,
		scanner: scanner,
	}
}

// WithVerbose enables per-rule logging.
func (e *Engine) WithVerbose(v bool) *Engine {
	e.verbose = v
	return e
}

// Table returns the policy table the engine runs.
func (e *Engine) Table() Table {
	return e.table
}

// Evaluate decides whether username may take an issue of the given
// tier. Evaluation never returns an error: lookup failures fold into
// the conservative default for the failing rule (no role, unlimited
// open count, zero completions), so policy always resolves to a
// decision.
func (e *Engine) Evaluate(ctx context.Context, username string, tier Tier) Decision {
	policy, ok := e.table[tier]
	if !ok {
		log.Printf("[eligibility] no policy configured for tier %q, denying", tier)
		return deny(ReasonCapacity, DecisionContext{})
	}

	// 1. Bypass: an exempt role skips everything, spam and capacity
	// included.
	role := e.roleOf(ctx, username)
	if policy.Bypass.Exempts(role) {
		if e.verbose {
			log.Printf("[eligibility] %s bypasses %s checks (role=%s)", username, tier, role)
		}
		return allow()
	}

	// 2. Spam list.
	spamListed := e.spam != nil && e.spam.Contains(username)
	if spamListed && !policy.SpamAllowed {
		return deny(ReasonSpam, DecisionContext{SpamListed: true})
	}

	// 3. Capacity.
	maxOpen := policy.EffectiveMaxOpen(spamListed)
	open := e.openAssigned(ctx, username)
	if open >= maxOpen {
		return deny(ReasonCapacity, DecisionContext{
			OpenAssigned: open,
			MaxAllowed:   maxOpen,
			SpamListed:   spamListed,
		})
	}

	// 4. Prerequisites, easiest tier first.
	for _, prereq := range policy.Prerequisites {
		prereqPolicy, ok := e.table[prereq.Tier]
		if !ok {
			log.Printf("[eligibility] prerequisite tier %q has no policy, skipping", prereq.Tier)
			continue
		}

		completed, err := e.scanner.CompletedCount(ctx, username, prereqPolicy.Label, prereq.Count, prereqPolicy.Cutoff)
		if err != nil {
			// Fail closed: an unreadable history grants nothing.
			log.Printf("[eligibility] completion scan for %s/%s failed: %v", username, prereq.Tier, err)
		}
		if completed < prereq.Count {
			return deny(missingReasonFor(prereq.Tier), DecisionContext{
				RequiredCount:  prereq.Count,
				CompletedCount: completed,
				PrereqTier:     prereq.Tier,
				PrereqLabel:    prereqPolicy.Label,
			})
		}
	}

	return allow()
}

// roleOf resolves the role, treating every failure as no role.
func (e *Engine) roleOf(ctx context.Context, username string) Role {
	if e.roles == nil {
		return RoleNone
	}
	role, err := e.roles.Role(ctx, username)
	if err != nil {
		log.Printf("[eligibility] role lookup for %s failed, assuming none: %v", username, err)
		return RoleNone
	}
	return role
}

// openAssigned counts open assignments, failing closed: an error is
// reported as the maximum representable count so capacity comparisons
// deny rather than silently permit.
func (e *Engine) openAssigned(ctx context.Context, username string) int {
	if e.counter == nil {
		return math.MaxInt
	}
	count, err := e.counter.CountOpenAssigned(ctx, username)
	if err != nil {
		log.Printf("[eligibility] open-assignment count for %s failed, failing closed: %v", username, err)
		return math.MaxInt
	}
	if count < 0 {
		return 0
	}
	return count
}
