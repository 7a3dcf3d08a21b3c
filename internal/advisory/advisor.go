// Package advisory annotates risk assessments with an optional language-model
// opinion. The annotation is advisory: it can nudge the rug probability by a
// bounded amount but never crosses a decision boundary unless explicitly
// allowed.
package advisory

import (
	"context"

	"rug-surfer/internal/domain"
)

// Sentiment is the advisor's coarse read of a token context.
type Sentiment int

const (
	// SentimentNeutral leaves the probability untouched.
	SentimentNeutral Sentiment = iota
	// SentimentBearish nudges the probability up.
	SentimentBearish
	// SentimentBullish nudges the probability down.
	SentimentBullish
)

// Annotation is the advisor's output for one evaluation.
type Annotation struct {
	// Sentiment is the coarse direction of the advisor's opinion.
	Sentiment Sentiment
	// Commentary is the advisor's free-text risk note, for logs and alerts.
	Commentary string
}

// Advisor produces annotations for token evaluations.
type Advisor interface {
	// Analyze returns the advisor's read of the features and current
	// probability. pos is nil when flat.
	Analyze(ctx context.Context, features *domain.FeatureVector, pos *domain.Position, pRug float64) (*Annotation, error)
}

// MaxNudge bounds how far a single annotation can move the probability.
const MaxNudge = 0.05

// AdjustProbability applies the annotation's sentiment to pRug. The result
// stays within [0, 1] and moves at most MaxNudge from the input. When
// allowFlip is false the adjustment is additionally clamped so it cannot move
// the probability across the pMax decision boundary.
func AdjustProbability(pRug, pMax float64, ann *Annotation, allowFlip bool) float64 {
	if ann == nil {
		return pRug
	}

	adjusted := pRug
	switch ann.Sentiment {
	case SentimentBearish:
		adjusted += MaxNudge
	case SentimentBullish:
		adjusted -= MaxNudge
	}

	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 1 {
		adjusted = 1
	}

	if !allowFlip {
		if pRug < pMax && adjusted >= pMax {
			adjusted = pMax - 1e-9
			if adjusted < pRug {
				adjusted = pRug
			}
		} else if pRug >= pMax && adjusted < pMax {
			adjusted = pMax
		}
	}
	return adjusted
}
