package messages

import (
	"strings"
	"testing"

	"github.com/tiergh/tier-bot/internal/core/policy"
)

func baseContext() RenderContext {
	return RenderContext{
		Username:       "newbie",
		Org:            "acme",
		Repo:           "widgets",
		TierLabel:      "beginner",
		PrereqLabel:    "good first issue",
		RequiredCount:  1,
		CompletedCount: 0,
		OpenAssigned:   2,
		MaxAllowed:     2,
	}
}

func TestRenderTotalOverReasonEnum(t *testing.T) {
	// Every member of the enum must render non-empty, even with a
	// minimal context.
	reasons := []policy.RejectionReason{
		policy.ReasonMissingGFI,
		policy.ReasonMissingBeginner,
		policy.ReasonMissingIntermediate,
		policy.ReasonCapacity,
		policy.ReasonSpam,
	}

	for _, reason := range reasons {
		t.Run(string(reason), func(t *testing.T) {
			out := Render(reason, RenderContext{Username: "u"})
			if out == "" {
				t.Fatalf("Render(%q) returned empty string", reason)
			}
			if !strings.Contains(out, DefaultRejectionMarker) {
				t.Fatalf("Render(%q) missing duplicate-guard marker", reason)
			}
			if !strings.Contains(out, "@u") {
				t.Fatalf("Render(%q) does not mention the user", reason)
			}
		})
	}
}

func TestRenderUnknownReasonReturnsEmpty(t *testing.T) {
	if out := Render(policy.RejectionReason("garbage"), baseContext()); out != "" {
		t.Fatalf("expected empty render for unknown reason, got %q", out)
	}
}

func TestRenderMissingPrerequisiteCounts(t *testing.T) {
	out := Render(policy.ReasonMissingGFI, baseContext())

	for _, want := range []string{"@newbie", "0 / 1", "good first issue", "beginner", "acme/widgets"} {
		if !strings.Contains(out, want) {
			t.Errorf("message missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCapacity(t *testing.T) {
	rctx := baseContext()
	out := Render(policy.ReasonCapacity, rctx)
	if !strings.Contains(out, "**2** open assigned") || !strings.Contains(out, "limit of **2**") {
		t.Fatalf("capacity message missing counts:\n%s", out)
	}
	if strings.Contains(out, "reduced limit") {
		t.Fatal("non-spam capacity message must not mention the reduced limit")
	}

	rctx.SpamListed = true
	rctx.OpenAssigned = 1
	rctx.MaxAllowed = 1
	out = Render(policy.ReasonCapacity, rctx)
	if !strings.Contains(out, "limit of **1**") || !strings.Contains(out, "reduced limit") {
		t.Fatalf("spam-adjusted capacity message wrong:\n%s", out)
	}
}

func TestRenderCustomMarker(t *testing.T) {
	rctx := baseContext()
	rctx.Marker = "<!-- fork:custom -->"
	out := Render(policy.ReasonSpam, rctx)
	if !strings.HasPrefix(out, "<!-- fork:custom -->") {
		t.Fatalf("expected custom marker prefix, got:\n%s", out)
	}
}

func TestRenderMentorPing(t *testing.T) {
	out := RenderMentorPing(MentorContext{Assignee: "newbie", Mentor: "alice"})
	for _, want := range []string{DefaultMentorMarker, "@newbie", "@alice"} {
		if !strings.Contains(out, want) {
			t.Errorf("mentor ping missing %q:\n%s", want, out)
		}
	}
}

func TestHasMarker(t *testing.T) {
	bodies := []string{
		"unrelated comment",
		DefaultRejectionMarker + "\nHi @user",
	}

	if !HasMarker(bodies, DefaultRejectionMarker) {
		t.Fatal("expected marker to be found")
	}
	if HasMarker(bodies, DefaultMentorMarker) {
		t.Fatal("mentor marker should not be found")
	}
	if HasMarker(bodies, "") {
		t.Fatal("empty marker must never match")
	}
}
