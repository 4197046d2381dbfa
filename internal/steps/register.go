package steps

import "github.com/tiergh/tier-bot/internal/core/pipeline"

// RegisterAll registers every step with the registry under the names
// the workflow presets reference.
func RegisterAll(registry *pipeline.Registry) {
	registry.Register("gatekeeper", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewGatekeeper(deps), nil
	})
	registry.Register("command_parser", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewCommandParser(deps), nil
	})
	registry.Register("eligibility", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewEligibility(deps), nil
	})
	registry.Register("response_builder", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewResponseBuilder(deps), nil
	})
	registry.Register("action_executor", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewActionExecutor(deps), nil
	})
	registry.Register("mentor_commenter", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewMentorCommenter(deps), nil
	})
	registry.Register("candidate_cleaner", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewCandidateCleaner(deps), nil
	})
}
