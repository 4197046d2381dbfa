package policy

// RejectionReason identifies why an eligibility check failed. The set
// is closed; the message router switches over it exhaustively.
type RejectionReason string

const (
	ReasonMissingGFI          RejectionReason = "missing_gfi"
	ReasonMissingBeginner     RejectionReason = "missing_beginner"
	ReasonMissingIntermediate RejectionReason = "missing_intermediate"
	ReasonCapacity            RejectionReason = "capacity"
	ReasonSpam                RejectionReason = "spam"
)

// missingReasonFor maps a prerequisite tier to its rejection reason.
func missingReasonFor(t Tier) RejectionReason {
	switch t {
	case TierGFI:
		return ReasonMissingGFI
	case TierBeginner:
		return ReasonMissingBeginner
	default:
		return ReasonMissingIntermediate
	}
}

// DecisionContext carries the numbers a rejection message needs.
// Only the fields relevant to the reason are populated.
type DecisionContext struct {
	OpenAssigned   int    `json:"open_assigned,omitempty"`
	MaxAllowed     int    `json:"max_allowed,omitempty"`
	SpamListed     bool   `json:"spam_listed,omitempty"`
	RequiredCount  int    `json:"required_count,omitempty"`
	CompletedCount int    `json:"completed_count,omitempty"`
	PrereqTier     Tier   `json:"prereq_tier,omitempty"`
	PrereqLabel    string `json:"prereq_label,omitempty"`
}

// Decision is the outcome of evaluating a contributor against a tier.
type Decision struct {
	Eligible bool            `json:"eligible"`
	Reason   RejectionReason `json:"reason,omitempty"`
	Context  DecisionContext `json:"context,omitzero"`
}

func allow() Decision {
	return Decision{Eligible: true}
}

func deny(reason RejectionReason, dctx DecisionContext) Decision {
	return Decision{Eligible: false, Reason: reason, Context: dctx}
}
