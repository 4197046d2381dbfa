package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tiergh/tier-bot/internal/core/config"
	"github.com/tiergh/tier-bot/internal/core/pipeline"
	"github.com/tiergh/tier-bot/internal/core/policy"
	"github.com/tiergh/tier-bot/internal/steps"
	"github.com/tiergh/tier-bot/internal/tui"
)

// Wrapper step to send status updates
type statusReportingStep struct {
	inner      pipeline.Step
	statusChan chan<- tui.PipelineStatusMsg
}

func (s *statusReportingStep) Name() string {
	return s.inner.Name()
}

func (s *statusReportingStep) Run(ctx *pipeline.Context) error {
	s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "started", Message: "Starting..."}
	time.Sleep(100 * time.Millisecond) // Artificial delay for visual effect

	err := s.inner.Run(ctx)

	if err != nil {
		if err == pipeline.ErrSkipPipeline {
			s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "skipped", Message: ctx.Result.SkipReason}
			return err
		}
		s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "error", Message: err.Error()}
		return err
	}

	s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "success", Message: "Completed"}
	return nil
}

// ExecutePipeline runs the named steps against one event without any
// UI. It returns the accumulated result; ErrSkipPipeline counts as
// success.
func ExecutePipeline(ctx context.Context, event *pipeline.Event, cfg *config.Config, table policy.Table, deps *pipeline.Dependencies, stepNames []string) (*pipeline.Result, error) {
	pCtx := pipeline.NewContext(ctx, event, cfg, table)

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	built, err := registry.BuildFromNames(stepNames, deps)
	if err != nil {
		return nil, err
	}
	if err := built.Run(pCtx); err != nil {
		return pCtx.Result, err
	}
	return pCtx.Result, nil
}

func runPipeline(p *tea.Program, deps *pipeline.Dependencies, stepNames []string, event *pipeline.Event, cfg *config.Config, table policy.Table, statusChan chan tui.PipelineStatusMsg) {
	defer close(statusChan)

	ctx := context.Background()

	// Headless mode: no program to report to, run directly.
	if p == nil {
		result, err := ExecutePipeline(ctx, event, cfg, table, deps, stepNames)
		if err != nil {
			fmt.Printf("Pipeline failed: %v\n", err)
			os.Exit(1)
		}
		resultBytes, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(resultBytes))
		return
	}

	pCtx := pipeline.NewContext(ctx, event, cfg, table)

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	// Build the actual steps
	builtSteps, err := registry.BuildFromNames(stepNames, deps)
	if err != nil {
		statusChan <- tui.PipelineStatusMsg{Step: "init", Status: "error", Message: err.Error()}
		p.Send(tui.ResultMsg{Success: false, Output: err.Error()})
		return
	}

	// Wrap steps with status reporting
	var wrappedSteps []pipeline.Step
	for _, step := range builtSteps.Steps() {
		wrappedSteps = append(wrappedSteps, &statusReportingStep{inner: step, statusChan: statusChan})
	}

	finalPipeline := pipeline.New(wrappedSteps...)

	if err := finalPipeline.Run(pCtx); err != nil {
		p.Send(tui.ResultMsg{Success: false, Output: err.Error(), Result: pCtx.Result})
		return
	}

	p.Send(tui.ResultMsg{Success: true, Result: pCtx.Result})
}
