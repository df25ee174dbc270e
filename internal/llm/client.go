// Package llm models the optional generative answer source as a capability:
// an availability check plus a fallible generate call. Two provider shapes
// are supported, selected from configuration; the router only ever sees the
// Client interface.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gluebot/internal/config"
)

const (
	defaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenAIURL     = "https://api.openai.com/v1/responses"

	systemPrompt = "You are GlueBot, a Kubernetes + OpenStack SRE assistant. " +
		"Give concise troubleshooting steps and safe automation scripts."
)

// Client is the fallback capability. Available reports whether a usable key
// is configured (checked, not exercised); Generate calls the provider and
// returns a ProviderError on any failure, never a panic and never an
// unbounded hang.
type Client interface {
	Available() bool
	Model() string
	Generate(ctx context.Context, message, kbContext string) (string, error)
}

// ProviderError is any failure talking to the provider: transport errors,
// non-2xx statuses, undecodable payloads, or an empty completion. The
// router downgrades it to the fallback:unavailable tag.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewFromConfig selects the provider variant from configuration: OpenRouter
// when the base URL mentions it or when only an OpenRouter key is set,
// the OpenAI responses API otherwise.
func NewFromConfig(cfg *config.Config) Client {
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	base := strings.ToLower(cfg.APIBase)
	if strings.Contains(base, "openrouter") || cfg.OpenRouterAPIKey != "" {
		url := cfg.APIBase
		if url == "" {
			url = defaultOpenRouterURL
		}
		return &openRouterClient{
			apiKey:     cfg.APIKey(),
			model:      cfg.Model,
			url:        url,
			siteURL:    cfg.SiteURL,
			appName:    cfg.AppName,
			httpClient: httpClient,
		}
	}

	url := cfg.APIBase
	if url == "" {
		url = defaultOpenAIURL
	}
	return &openAIClient{
		apiKey:     cfg.APIKey(),
		model:      cfg.Model,
		url:        url,
		httpClient: httpClient,
	}
}

// buildPrompt frames the user issue with the curated KB topics so the model
// stays consistent with answers curators already wrote.
func buildPrompt(message, kbContext string) string {
	if kbContext == "" {
		kbContext = "- No curated KB answers yet."
	}
	return "You are GlueBot, a Kubernetes + OpenStack SRE assistant. " +
		"Provide concise, actionable troubleshooting steps. " +
		"For Kubernetes, include kubectl commands. For OpenStack, include openstack CLI commands. " +
		"If user asks for scripts/automation, return a safe script with dry-run default and a short warning.\n\n" +
		"Known KB:\n" + kbContext + "\n\n" +
		"User issue: " + message
}
