package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/oauth2/google"
)

// GenAIAdapter wraps the Vertex AI Gemini client to implement
// provider.LLM. Supports regional endpoints via the Go SDK and the
// global endpoint via the REST API (the SDK has no global-endpoint
// support).
type GenAIAdapter struct {
	client     *genai.Client // nil when using the global endpoint
	httpClient *http.Client  // used for global endpoint REST calls
	project    string
	location   string
	model      string
	useREST    bool
}

// NewGenAIAdapter creates a GenAIAdapter.
func NewGenAIAdapter(ctx context.Context, project, location, model string) (*GenAIAdapter, error) {
	if location == "global" {
		httpClient, err := google.DefaultClient(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return nil, fmt.Errorf("vertex.NewGenAIAdapter: default credentials: %w", err)
		}
		return &GenAIAdapter{
			httpClient: httpClient,
			project:    project,
			location:   location,
			model:      model,
			useREST:    true,
		}, nil
	}

	client, err := genai.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("vertex.NewGenAIAdapter: %w", err)
	}
	return &GenAIAdapter{
		client:   client,
		project:  project,
		location: location,
		model:    model,
	}, nil
}

// Complete sends prompt to Gemini and returns the text response.
// Implements provider.LLM.
func (a *GenAIAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	return withRetry(ctx, "Complete", func() (string, error) {
		if a.useREST {
			return a.completeREST(ctx, prompt)
		}
		return a.completeSDK(ctx, prompt)
	})
}

func (a *GenAIAdapter) completeSDK(ctx context.Context, prompt string) (string, error) {
	model := a.client.GenerativeModel(a.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("vertex.Complete: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("vertex.Complete: empty response from model")
	}
	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			parts = append(parts, string(t))
		}
	}
	return strings.Join(parts, ""), nil
}

type restGenerateRequest struct {
	Contents []restContent `json:"contents"`
}

type restContent struct {
	Role  string     `json:"role"`
	Parts []restPart `json:"parts"`
}

type restPart struct {
	Text string `json:"text"`
}

type restGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *GenAIAdapter) completeREST(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf(
		"https://aiplatform.googleapis.com/v1/projects/%s/locations/global/publishers/google/models/%s:generateContent",
		a.project, a.model,
	)

	reqBody := restGenerateRequest{
		Contents: []restContent{
			{Role: "user", Parts: []restPart{{Text: prompt}}},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("vertex.Complete: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("vertex.Complete: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vertex.Complete: call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("vertex.Complete: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vertex.Complete: status %d: %s", resp.StatusCode, respBody)
	}

	var genResp restGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("vertex.Complete: decode: %w", err)
	}

	if genResp.Error != nil {
		return "", fmt.Errorf("vertex.Complete: API error %d: %s", genResp.Error.Code, genResp.Error.Message)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("vertex.Complete: empty response from model")
	}

	var parts []string
	for _, p := range genResp.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("vertex.Complete: no text in response")
	}
	return strings.Join(parts, ""), nil
}

// HealthCheck validates the Vertex AI connection by making a minimal API call.
func (a *GenAIAdapter) HealthCheck(ctx context.Context) error {
	resp, err := a.Complete(ctx, "Reply with only: OK")
	if err != nil {
		return fmt.Errorf("vertex AI health check failed (model: %s, location: %s): %w", a.model, a.location, err)
	}
	if resp == "" {
		return fmt.Errorf("vertex AI returned empty response (model: %s)", a.model)
	}
	slog.Info("vertex ai health check passed", "model", a.model, "location", a.location)
	return nil
}

// Close closes the underlying client.
func (a *GenAIAdapter) Close() {
	if a.client != nil {
		a.client.Close()
	}
}
