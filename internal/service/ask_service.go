package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"argos-engine/internal/apperr"
	"argos-engine/internal/ledger"
	"argos-engine/internal/models"
	"argos-engine/internal/planner"

	"go.uber.org/zap"
)

var ErrEmptyQuestion = errors.New("no question provided")

type Answerer interface {
	Answer(ctx context.Context, question string, table *ledger.Table) (planner.Result, error)
}

type Classifier interface {
	Classify(res planner.Result, err error) models.Envelope
}

type TableProvider interface {
	Current() *ledger.Table
}

type AskService struct {
	answerer   Answerer
	tables     TableProvider
	classifier Classifier
	logger     *zap.Logger
}

func NewAskService(answerer Answerer, tables TableProvider, classifier Classifier, logger *zap.Logger) *AskService {
	return &AskService{
		answerer:   answerer,
		tables:     tables,
		classifier: classifier,
		logger:     logger,
	}
}

// Ask answers one question against the current ledger snapshot. The only
// error it returns is a validation error for a blank question; every
// pipeline failure comes back as an error envelope.
func (s *AskService) Ask(ctx context.Context, question string) (env models.Envelope, err error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.Envelope{}, apperr.Validation("service.Ask", ErrEmptyQuestion)
	}

	defer func() {
		if r := recover(); r != nil {
			env = s.classifier.Classify(planner.Result{}, fmt.Errorf("panic while answering: %v", r))
			err = nil
		}
	}()

	table := s.tables.Current()
	start := time.Now()

	res, answerErr := s.answerer.Answer(ctx, question, table)
	env = s.classifier.Classify(res, answerErr)

	s.logger.Info("Question answered",
		zap.String("question", question),
		zap.Int("rows", table.Len()),
		zap.String("type", string(env.Kind)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return env, nil
}
