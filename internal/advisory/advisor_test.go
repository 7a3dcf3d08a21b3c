package advisory

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"rug-surfer/internal/domain"
)

func TestAdjustProbability_Bearish(t *testing.T) {
	ann := &Annotation{Sentiment: SentimentBearish}
	got := AdjustProbability(0.10, 0.50, ann, false)
	if math.Abs(got-0.15) > 1e-9 {
		t.Errorf("expected 0.15, got %v", got)
	}
}

func TestAdjustProbability_Bullish(t *testing.T) {
	ann := &Annotation{Sentiment: SentimentBullish}
	got := AdjustProbability(0.10, 0.50, ann, false)
	if math.Abs(got-0.05) > 1e-9 {
		t.Errorf("expected 0.05, got %v", got)
	}
}

func TestAdjustProbability_Neutral(t *testing.T) {
	ann := &Annotation{Sentiment: SentimentNeutral}
	if got := AdjustProbability(0.30, 0.50, ann, false); got != 0.30 {
		t.Errorf("expected unchanged probability, got %v", got)
	}
}

func TestAdjustProbability_NilAnnotation(t *testing.T) {
	if got := AdjustProbability(0.30, 0.50, nil, false); got != 0.30 {
		t.Errorf("expected unchanged probability, got %v", got)
	}
}

func TestAdjustProbability_ClampsToUnitInterval(t *testing.T) {
	up := &Annotation{Sentiment: SentimentBearish}
	if got := AdjustProbability(0.98, 0.5, up, true); got != 1.0 {
		t.Errorf("expected clamp to 1, got %v", got)
	}
	down := &Annotation{Sentiment: SentimentBullish}
	if got := AdjustProbability(0.02, 0.5, down, true); got != 0.0 {
		t.Errorf("expected clamp to 0, got %v", got)
	}
}

func TestAdjustProbability_CannotFlipAcrossBoundary(t *testing.T) {
	pMax := 0.20

	// Below the boundary, a bearish nudge must stay below it.
	bear := &Annotation{Sentiment: SentimentBearish}
	got := AdjustProbability(0.18, pMax, bear, false)
	if got >= pMax {
		t.Errorf("bearish nudge crossed pMax: %v >= %v", got, pMax)
	}
	if got < 0.18 {
		t.Errorf("nudge moved the wrong way: %v", got)
	}

	// At or above the boundary, a bullish nudge must not drop below it.
	bull := &Annotation{Sentiment: SentimentBullish}
	got = AdjustProbability(0.22, pMax, bull, false)
	if got < pMax {
		t.Errorf("bullish nudge crossed pMax: %v < %v", got, pMax)
	}
}

func TestAdjustProbability_FlipAllowed(t *testing.T) {
	bear := &Annotation{Sentiment: SentimentBearish}
	got := AdjustProbability(0.18, 0.20, bear, true)
	if math.Abs(got-0.23) > 1e-9 {
		t.Errorf("expected 0.23 when flips allowed, got %v", got)
	}
}

func TestOpenAIAdvisor_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"BEARISH\nSupply is concentrated."}}]}`)
	}))
	defer server.Close()

	advisor := NewOpenAIAdvisor("test-key", WithEndpoint(server.URL))
	ann, err := advisor.Analyze(context.Background(), &domain.FeatureVector{Mint: "MintA"}, nil, 0.3)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if ann.Sentiment != SentimentBearish {
		t.Errorf("expected bearish sentiment, got %v", ann.Sentiment)
	}
	if ann.Commentary == "" {
		t.Error("expected commentary")
	}
}

func TestParseSentiment(t *testing.T) {
	cases := []struct {
		in   string
		want Sentiment
	}{
		{"BEARISH\nnotes", SentimentBearish},
		{"bullish", SentimentBullish},
		{" Neutral \nmore", SentimentNeutral},
		{"The token looks risky", SentimentNeutral},
		{"", SentimentNeutral},
	}
	for _, tc := range cases {
		if got := parseSentiment(tc.in); got != tc.want {
			t.Errorf("parseSentiment(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
