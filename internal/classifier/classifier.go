// Package classifier turns planner outcomes into response envelopes.
package classifier

import (
	"fmt"
	"path/filepath"

	"argos-engine/internal/apperr"
	"argos-engine/internal/chart"
	"argos-engine/internal/models"
	"argos-engine/internal/planner"

	"go.uber.org/zap"
)

const ChartRoute = "/charts/"

const (
	msgPlanning   = "I couldn't work out how to answer that question. Please try rephrasing it."
	msgExecution  = "I couldn't compute an answer to that question from the available transactions."
	msgDataSource = "Transaction data is currently unavailable. Please try again later."
	msgValidation = "The request was not valid."
	msgUnknown    = "Something went wrong while answering your question."
	msgNoAnswer   = "I don't have an answer for that."
)

type Classifier struct {
	chartsEnabled bool
	logger        *zap.Logger
}

func New(chartsEnabled bool, logger *zap.Logger) *Classifier {
	return &Classifier{
		chartsEnabled: chartsEnabled,
		logger:        logger,
	}
}

// Classify maps a typed planner result, or its error, to an envelope.
func (c *Classifier) Classify(res planner.Result, err error) models.Envelope {
	if err != nil {
		return c.errorEnvelope(err)
	}

	if res.Kind == planner.ResultChart {
		if !c.chartsEnabled {
			return textEnvelope(firstNonEmpty(res.Text, res.ChartFile))
		}
		name, nameErr := chart.SafeName(res.ChartFile)
		if nameErr != nil {
			return c.errorEnvelope(apperr.Execution("classifier.Classify", nameErr))
		}
		return models.Envelope{Kind: models.EnvelopeChart, Payload: ChartRoute + name}
	}

	return textEnvelope(res.Text)
}

// ClassifyRaw handles untyped results: errors first, then strings that look
// like image paths (only while charts are enabled), then anything else as text.
func (c *Classifier) ClassifyRaw(raw any) models.Envelope {
	switch v := raw.(type) {
	case error:
		return c.errorEnvelope(v)
	case string:
		if c.chartsEnabled && chart.IsImageName(v) {
			if name, err := chart.SafeName(filepath.Base(v)); err == nil {
				return models.Envelope{Kind: models.EnvelopeChart, Payload: ChartRoute + name}
			}
		}
		return models.Envelope{Kind: models.EnvelopeText, Payload: v}
	case nil:
		return models.Envelope{Kind: models.EnvelopeText, Payload: ""}
	default:
		return models.Envelope{Kind: models.EnvelopeText, Payload: fmt.Sprint(v)}
	}
}

func (c *Classifier) errorEnvelope(err error) models.Envelope {
	kind := apperr.KindOf(err)
	c.logger.Error("Question pipeline failed",
		zap.String("kind", kind.String()),
		zap.Error(err),
	)
	return models.Envelope{Kind: models.EnvelopeError, Payload: Sanitize(PublicMessage(err))}
}

// PublicMessage is the caller-facing text for an error. It never includes
// the error's own text.
func PublicMessage(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindPlanning:
		return msgPlanning
	case apperr.KindExecution:
		return msgExecution
	case apperr.KindDataSource:
		return msgDataSource
	case apperr.KindValidation:
		return msgValidation
	default:
		return msgUnknown
	}
}

func textEnvelope(text string) models.Envelope {
	if text == "" {
		text = msgNoAnswer
	}
	return models.Envelope{Kind: models.EnvelopeText, Payload: text}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
