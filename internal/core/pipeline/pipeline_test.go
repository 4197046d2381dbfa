package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tiergh/tier-bot/internal/core/config"
	"github.com/tiergh/tier-bot/internal/core/policy"
)

type stubStep struct {
	name string
	err  error
	ran  *[]string
}

func (s *stubStep) Name() string { return s.name }

func (s *stubStep) Run(ctx *Context) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func TestPipelineRunsStepsInOrder(t *testing.T) {
	var ran []string
	p := New(
		&stubStep{name: "first", ran: &ran},
		&stubStep{name: "second", ran: &ran},
	)

	ctx := NewContext(context.Background(), &Event{Number: 1}, &config.Config{}, policy.DefaultTable())
	if err := p.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ran, []string{"first", "second"}) {
		t.Errorf("ran = %v", ran)
	}
}

func TestPipelineSkipIsGraceful(t *testing.T) {
	var ran []string
	p := New(
		&stubStep{name: "first", err: ErrSkipPipeline, ran: &ran},
		&stubStep{name: "second", ran: &ran},
	)

	ctx := NewContext(context.Background(), &Event{Number: 1}, &config.Config{}, policy.DefaultTable())
	if err := p.Run(ctx); err != nil {
		t.Fatalf("skip must not surface as an error, got %v", err)
	}
	if !reflect.DeepEqual(ran, []string{"first"}) {
		t.Errorf("later steps must not run after a skip, ran = %v", ran)
	}
}

func TestPipelineStopsOnError(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	p := New(
		&stubStep{name: "first", err: boom, ran: &ran},
		&stubStep{name: "second", ran: &ran},
	)

	ctx := NewContext(context.Background(), &Event{Number: 1}, &config.Config{}, policy.DefaultTable())
	err := p.Run(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped step error, got %v", err)
	}
	if len(ran) != 1 {
		t.Errorf("later steps must not run after an error, ran = %v", ran)
	}
}

func TestResolveSteps(t *testing.T) {
	tests := []struct {
		name     string
		explicit []string
		workflow string
		event    *Event
		want     []string
	}{
		{
			name:     "explicit wins",
			explicit: []string{"gatekeeper"},
			workflow: "assign-request",
			want:     []string{"gatekeeper"},
		},
		{
			name:     "workflow preset",
			workflow: "mentor-ping",
			want:     Presets["mentor-ping"],
		},
		{
			name:  "comment event infers assign-request",
			event: &Event{EventType: "issue_comment", Action: "created"},
			want:  Presets["assign-request"],
		},
		{
			name:  "assigned event infers enforcement",
			event: &Event{EventType: "issues", Action: "assigned"},
			want:  Presets["assignment-enforce"],
		},
		{
			name:  "labeled event infers cleanup",
			event: &Event{EventType: "issues", Action: "labeled"},
			want:  Presets["candidate-cleanup"],
		},
		{
			name: "nil event falls back to assign-request",
			want: Presets["assign-request"],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSteps(tt.explicit, tt.workflow, tt.event)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveSteps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistryBuildFromNames(t *testing.T) {
	registry := NewRegistry()
	registry.Register("noop", func(deps *Dependencies) (Step, error) {
		var ran []string
		return &stubStep{name: "noop", ran: &ran}, nil
	})

	p, err := registry.BuildFromNames([]string{"noop"}, &Dependencies{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Steps()) != 1 {
		t.Errorf("steps = %d, want 1", len(p.Steps()))
	}

	if _, err := registry.BuildFromNames([]string{"missing"}, &Dependencies{}); err == nil {
		t.Error("unknown step name must be an error")
	}
}
