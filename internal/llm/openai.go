package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// openAIClient speaks the OpenAI responses API.
type openAIClient struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

type responsesRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type responsesResponse struct {
	OutputText string `json:"output_text"`
}

func (c *openAIClient) Available() bool {
	return c.apiKey != ""
}

func (c *openAIClient) Model() string {
	return c.model
}

func (c *openAIClient) Generate(ctx context.Context, message, kbContext string) (string, error) {
	reqBody, err := json.Marshal(responsesRequest{
		Model: c.model,
		Input: buildPrompt(message, kbContext),
	})
	if err != nil {
		return "", &ProviderError{Provider: "openai", Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", &ProviderError{Provider: "openai", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ProviderError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		}
	}

	var result responsesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ProviderError{Provider: "openai", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	text := strings.TrimSpace(result.OutputText)
	if text == "" {
		return "", &ProviderError{Provider: "openai", Err: fmt.Errorf("empty output")}
	}
	return text, nil
}
