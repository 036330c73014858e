package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
)

// Request captures the normalized helper input: what the requester needs and
// the bounded context it was handed.
type Request struct {
	Instructions string         `json:"instructions"`
	RequestType  string         `json:"request_type"`
	Description  string         `json:"description"`
	Context      map[string]any `json:"context"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the structured analysis a helper produced for a request.
type Response struct {
	Data       core.ResponseData `json:"data"`
	Confidence float64           `json:"confidence"`
	Usage      *TokenUsage       `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface a helper backend must satisfy. Analyze
// blocks until the provider answers or ctx is canceled; request-level
// timeouts are enforced by the caller through ctx.
type Model interface {
	Analyze(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// BuildPrompt renders the user prompt shared by all provider adapters. The
// context package is embedded as JSON so helpers see exactly what the
// requester shared, no more.
func BuildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request type: %s\n", req.RequestType)
	fmt.Fprintf(&b, "Task: %s\n", req.Description)
	if len(req.Context) > 0 {
		if data, err := json.Marshal(req.Context); err == nil {
			fmt.Fprintf(&b, "Context package:\n%s\n", data)
		}
	}
	b.WriteString("Respond with a JSON object: {\"analysis\": string, \"findings\": [string], \"recommendations\": [string], \"confidence_metrics\": {string: number}}")
	return b.String()
}

// ParseResponse decodes a provider completion into structured response data.
// Providers sometimes wrap JSON in prose or code fences; the parser extracts
// the outermost object before decoding. Free-form text that carries no JSON
// at all becomes the analysis verbatim with reduced confidence.
func ParseResponse(text string) Response {
	payload := text
	if start := strings.Index(payload, "{"); start >= 0 {
		if end := strings.LastIndex(payload, "}"); end > start {
			payload = payload[start : end+1]
		}
	}

	var data core.ResponseData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return Response{
			Data:       core.ResponseData{Analysis: strings.TrimSpace(text)},
			Confidence: 0.3,
		}
	}

	confidence := 0.5
	if overall, ok := data.ConfidenceMetrics["overall"]; ok {
		confidence = overall
	}
	return Response{Data: data, Confidence: confidence}
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
type MockModel struct {
	info      Info
	responses map[string]Response
	err       error
	block     bool
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]Response),
	}
}

// AddResponse registers a deterministic canned response for a description.
func (m *MockModel) AddResponse(description string, resp Response) {
	m.responses[description] = resp
}

// FailWith makes every Analyze call return err.
func (m *MockModel) FailWith(err error) { m.err = err }

// BlockUntilCanceled makes Analyze hang until ctx is done, for timeout tests.
func (m *MockModel) BlockUntilCanceled() { m.block = true }

// Analyze implements Model.
func (m *MockModel) Analyze(ctx context.Context, req Request) (*Response, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	if resp, ok := m.responses[req.Description]; ok {
		return &resp, nil
	}
	return &Response{
		Data: core.ResponseData{
			Analysis:          fmt.Sprintf("Mock analysis for: %s", req.Description),
			Findings:          []string{"mock finding"},
			ConfidenceMetrics: map[string]float64{"overall": 0.8},
		},
		Confidence: 0.8,
	}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
