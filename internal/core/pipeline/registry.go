// Package pipeline provides step registration and preset workflow building.
package pipeline

import (
	"fmt"
	"sync"
)

// Registry holds registered step factories.
// Step factories create Step instances, allowing for dependency injection.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]StepFactory
}

// StepFactory is a function that creates a Step.
// It receives dependencies (like clients, config) as parameters.
type StepFactory func(deps *Dependencies) (Step, error)

// NewRegistry creates a new step registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]StepFactory),
	}
}

// Register adds a step factory to the registry.
func (r *Registry) Register(name string, factory StepFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a step factory by name.
func (r *Registry) Get(name string) (StepFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	return factory, ok
}

// BuildFromNames creates a pipeline from a list of step names.
func (r *Registry) BuildFromNames(names []string, deps *Dependencies) (*Pipeline, error) {
	var steps []Step
	for _, name := range names {
		factory, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown step: %s", name)
		}
		step, err := factory(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to create step '%s': %w", name, err)
		}
		steps = append(steps, step)
	}
	return New(steps...), nil
}

// Presets defines the built-in workflow presets, one per webhook
// trigger.
var Presets = map[string][]string{
	// assign-request: a contributor asked for an issue via /assign.
	"assign-request": {
		"gatekeeper",
		"command_parser",
		"eligibility",
		"response_builder",
		"action_executor",
	},

	// assignment-enforce: someone was assigned directly; verify and
	// revert if ineligible.
	"assignment-enforce": {
		"gatekeeper",
		"eligibility",
		"response_builder",
		"action_executor",
	},

	// mentor-ping: a human took a good-first-issue; name a mentor.
	"mentor-ping": {
		"gatekeeper",
		"mentor_commenter",
	},

	// candidate-cleanup: a real tier label landed; drop the candidate
	// triage label.
	"candidate-cleanup": {
		"gatekeeper",
		"candidate_cleaner",
	},
}

// GetPreset returns the step names for a preset workflow.
func GetPreset(name string) ([]string, bool) {
	steps, ok := Presets[name]
	return steps, ok
}

// ResolveSteps determines the steps to use based on config.
// Priority: explicit steps > workflow preset > default by event.
func ResolveSteps(explicitSteps []string, workflow string, event *Event) []string {
	if len(explicitSteps) > 0 {
		return explicitSteps
	}
	if workflow != "" {
		if preset, ok := GetPreset(workflow); ok {
			return preset
		}
	}
	// Infer from the event shape.
	if event != nil {
		if event.EventType == "issue_comment" {
			return Presets["assign-request"]
		}
		if event.Action == "assigned" {
			return Presets["assignment-enforce"]
		}
		if event.Action == "labeled" {
			return Presets["candidate-cleanup"]
		}
	}
	return Presets["assign-request"]
}
