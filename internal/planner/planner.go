// Package planner turns a question into a whitelisted query plan through a
// language model and runs that plan against the ledger.
package planner

import (
	"context"
	"errors"
	"fmt"

	"argos-engine/internal/apperr"
	"argos-engine/internal/ledger"
	"argos-engine/internal/llm"

	"go.uber.org/zap"
)

const DefaultMaxSteps = 3

type Planner struct {
	backend  llm.Backend
	executor *Executor
	maxSteps int
	logger   *zap.Logger
}

func New(backend llm.Backend, executor *Executor, maxSteps int, logger *zap.Logger) *Planner {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Planner{
		backend:  backend,
		executor: executor,
		maxSteps: maxSteps,
		logger:   logger,
	}
}

// Answer asks the backend for a plan and executes it. A plan that fails to
// parse or execute is sent back to the backend with the reason, up to
// maxSteps attempts. Backend call failures end the loop immediately.
func (p *Planner) Answer(ctx context.Context, question string, table *ledger.Table) (Result, error) {
	var (
		feedback []string
		lastErr  error
	)

	for step := 1; step <= p.maxSteps; step++ {
		prompt := BuildPrompt(question, table, feedback)

		raw, err := p.backend.GenerateStep(ctx, prompt)
		if err != nil {
			return Result{}, apperr.Planning("planner.Answer", fmt.Errorf("failed to generate plan: %w", err))
		}

		plan, err := ParsePlan(raw)
		if err != nil {
			p.logger.Warn("Rejected model plan",
				zap.Int("step", step),
				zap.String("output", truncate(raw, 500)),
				zap.Error(err),
			)
			lastErr = apperr.Planning("planner.Answer", err)
			feedback = append(feedback, err.Error())
			continue
		}

		res, err := p.executor.Execute(ctx, plan, table)
		if err != nil {
			if errors.Is(err, ErrRender) {
				return Result{}, err
			}
			p.logger.Warn("Plan failed during execution",
				zap.Int("step", step),
				zap.Error(err),
			)
			lastErr = err
			feedback = append(feedback, errors.Unwrap(err).Error())
			continue
		}

		p.logger.Info("Question answered",
			zap.Int("steps", step),
			zap.String("operation", string(plan.Operation)),
			zap.Stringer("result", res.Kind),
		)
		return res, nil
	}

	return Result{}, lastErr
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
