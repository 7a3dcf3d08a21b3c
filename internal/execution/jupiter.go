package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultJupiterBase = "https://quote-api.jup.ag/v6"
	DefaultCallTimeout = 30 * time.Second
	DefaultSlippageBps = 100

	wrappedSOLMint = "So11111111111111111111111111111111111111112"
	lamportsPerSOL = 1_000_000_000
)

// JupiterExecutor fills orders through the Jupiter aggregator: fetch a quote,
// build the swap transaction, submit it through the Solana RPC endpoint.
type JupiterExecutor struct {
	baseURL     string
	rpcEndpoint string
	wallet      string
	slippageBps int
	client      *http.Client
	logger      *log.Logger
}

// JupiterOption configures JupiterExecutor.
type JupiterOption func(*JupiterExecutor)

// WithBaseURL overrides the aggregator API base URL.
func WithBaseURL(u string) JupiterOption {
	return func(e *JupiterExecutor) {
		e.baseURL = u
	}
}

// WithCallTimeout sets the HTTP timeout for each aggregator call.
func WithCallTimeout(d time.Duration) JupiterOption {
	return func(e *JupiterExecutor) {
		e.client.Timeout = d
	}
}

// WithSlippageBps sets the allowed slippage in basis points.
func WithSlippageBps(bps int) JupiterOption {
	return func(e *JupiterExecutor) {
		e.slippageBps = bps
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) JupiterOption {
	return func(e *JupiterExecutor) {
		e.client = client
	}
}

// NewJupiterExecutor creates a live executor trading from the wallet address
// through the given Solana RPC endpoint.
func NewJupiterExecutor(rpcEndpoint, wallet string, logger *log.Logger, opts ...JupiterOption) *JupiterExecutor {
	e := &JupiterExecutor{
		baseURL:     DefaultJupiterBase,
		rpcEndpoint: rpcEndpoint,
		wallet:      wallet,
		slippageBps: DefaultSlippageBps,
		client:      &http.Client{Timeout: DefaultCallTimeout},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ Executor = (*JupiterExecutor)(nil)

type quoteResponse struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	RoutePlan  []struct {
		SwapInfo json.RawMessage `json:"swapInfo"`
	} `json:"routePlan"`
}

type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// Buy swaps amountBase SOL into the mint's token.
func (e *JupiterExecutor) Buy(ctx context.Context, mint string, amountBase float64, price float64) (*Settlement, error) {
	lamports := int64(math.Round(amountBase * lamportsPerSOL))
	sig, err := e.swap(ctx, wrappedSOLMint, mint, lamports)
	if err != nil {
		return nil, fmt.Errorf("buy %s: %w", mint, err)
	}
	return &Settlement{
		Signature:  sig,
		Price:      price,
		Tokens:     amountBase / price,
		FilledAtMs: nowMs(),
	}, nil
}

// Sell swaps amountTokens of the mint's token back into SOL. Token amounts
// are passed through in whole raw units.
func (e *JupiterExecutor) Sell(ctx context.Context, mint string, amountTokens float64, price float64) (*Settlement, error) {
	sig, err := e.swap(ctx, mint, wrappedSOLMint, int64(math.Round(amountTokens)))
	if err != nil {
		return nil, fmt.Errorf("sell %s: %w", mint, err)
	}
	return &Settlement{
		Signature:  sig,
		Price:      price,
		Tokens:     amountTokens,
		FilledAtMs: nowMs(),
	}, nil
}

// swap runs the quote, swap-build and send steps for one order.
func (e *JupiterExecutor) swap(ctx context.Context, inputMint, outputMint string, amount int64) (string, error) {
	rawQuote, quote, err := e.fetchQuote(ctx, inputMint, outputMint, amount)
	if err != nil {
		return "", err
	}
	if len(quote.RoutePlan) == 0 {
		return "", ErrNoRoute
	}

	tx, err := e.fetchSwapTransaction(ctx, rawQuote)
	if err != nil {
		return "", err
	}

	sig, err := e.sendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}
	e.logger.Printf("[EXEC] swap %s -> %s amount=%d sig=%s", inputMint, outputMint, amount, sig)
	return sig, nil
}

func (e *JupiterExecutor) fetchQuote(ctx context.Context, inputMint, outputMint string, amount int64) (json.RawMessage, *quoteResponse, error) {
	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", strconv.FormatInt(amount, 10))
	q.Set("slippageBps", strconv.Itoa(e.slippageBps))

	body, err := e.do(ctx, http.MethodGet, e.baseURL+"/quote?"+q.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("quote: %w", err)
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, nil, fmt.Errorf("unmarshal quote: %w", err)
	}
	return body, &quote, nil
}

func (e *JupiterExecutor) fetchSwapTransaction(ctx context.Context, rawQuote json.RawMessage) (string, error) {
	payload, err := json.Marshal(swapRequest{
		QuoteResponse:    rawQuote,
		UserPublicKey:    e.wallet,
		WrapAndUnwrapSol: true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	body, err := e.do(ctx, http.MethodPost, e.baseURL+"/swap", payload)
	if err != nil {
		return "", fmt.Errorf("swap build: %w", err)
	}

	var swap swapResponse
	if err := json.Unmarshal(body, &swap); err != nil {
		return "", fmt.Errorf("unmarshal swap: %w", err)
	}
	if swap.SwapTransaction == "" {
		return "", fmt.Errorf("swap build: empty transaction")
	}
	return swap.SwapTransaction, nil
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// sendTransaction submits the base64-encoded transaction and returns its
// signature.
func (e *JupiterExecutor) sendTransaction(ctx context.Context, txBase64 string) (string, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "sendTransaction",
		Params: []interface{}{
			txBase64,
			map[string]interface{}{"encoding": "base64"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal send request: %w", err)
	}

	body, err := e.do(ctx, http.MethodPost, e.rpcEndpoint, payload)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal send response: %w", err)
	}
	if resp.Error != nil {
		return "", resp.Error
	}

	var sig string
	if err := json.Unmarshal(resp.Result, &sig); err != nil {
		return "", fmt.Errorf("unmarshal signature: %w", err)
	}
	return sig, nil
}

func (e *JupiterExecutor) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
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
	return body, nil
}
