package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rug-surfer/internal/domain"
)

// Default configuration values.
const (
	DefaultEndpoint  = "https://api.openai.com/v1/chat/completions"
	DefaultModel     = "gpt-4o-mini"
	DefaultCallLimit = 15 * time.Second
)

const systemPrompt = "You are an expert quant trading assistant specialized in Solana rug detection. " +
	"Start your answer with exactly one word on its own line: BEARISH, BULLISH or NEUTRAL. " +
	"Then give concise risk notes."

// OpenAIAdvisor queries an OpenAI chat-completions endpoint for a second
// opinion on the current token context.
type OpenAIAdvisor struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// OpenAIOption configures OpenAIAdvisor.
type OpenAIOption func(*OpenAIAdvisor)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(u string) OpenAIOption {
	return func(a *OpenAIAdvisor) {
		a.endpoint = u
	}
}

// WithModel overrides the model name.
func WithModel(m string) OpenAIOption {
	return func(a *OpenAIAdvisor) {
		a.model = m
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(a *OpenAIAdvisor) {
		a.client = c
	}
}

// NewOpenAIAdvisor creates an advisor backed by the OpenAI API.
func NewOpenAIAdvisor(apiKey string, opts ...OpenAIOption) *OpenAIAdvisor {
	a := &OpenAIAdvisor{
		endpoint: DefaultEndpoint,
		apiKey:   apiKey,
		model:    DefaultModel,
		client:   &http.Client{Timeout: DefaultCallLimit},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ Advisor = (*OpenAIAdvisor)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze sends the token context to the model and parses its verdict.
func (a *OpenAIAdvisor) Analyze(ctx context.Context, features *domain.FeatureVector, pos *domain.Position, pRug float64) (*Annotation, error) {
	payload, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(features, pos, pRug)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	content := chat.Choices[0].Message.Content
	return &Annotation{
		Sentiment:  parseSentiment(content),
		Commentary: content,
	}, nil
}

func buildPrompt(features *domain.FeatureVector, pos *domain.Position, pRug float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze the following token context and risk metrics:\n")
	fmt.Fprintf(&sb, "Mint: %s\n", features.Mint)
	fmt.Fprintf(&sb, "Price: %.8f Liquidity: %.0f MarketCap: %.0f Age: %.0fs\n",
		features.Price, features.Liquidity, features.MarketCap, features.AgeSeconds)
	fmt.Fprintf(&sb, "RugSupplyShare: %.4f ConcentrationTop3: %.4f WhaleDumpScore: %.2f Momentum: %.3f\n",
		features.RugSupplyShare, features.ConcentrationTop3, features.WhaleDumpScore, features.Momentum)
	if pos != nil {
		fmt.Fprintf(&sb, "Current position: entry %.8f size %.4f\n", pos.EntryPrice, pos.SizeBase)
	} else {
		fmt.Fprintf(&sb, "Current position: none\n")
	}
	fmt.Fprintf(&sb, "Rug probability: %.4f\n", pRug)
	fmt.Fprintf(&sb, "Provide concise risk notes and suggestions.")
	return sb.String()
}

// parseSentiment reads the verdict word from the first line of the reply.
// Anything unrecognized is neutral.
func parseSentiment(content string) Sentiment {
	first := content
	if idx := strings.IndexByte(first, '\n'); idx >= 0 {
		first = first[:idx]
	}
	switch strings.ToUpper(strings.TrimSpace(first)) {
	case "BEARISH":
		return SentimentBearish
	case "BULLISH":
		return SentimentBullish
	default:
		return SentimentNeutral
	}
}
