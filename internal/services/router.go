// Package services holds the request-routing chain and its telemetry.
package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gluebot/internal/intent"
	"gluebot/internal/knowledge"
	"gluebot/internal/llm"
	"gluebot/internal/logging"
	"gluebot/internal/models"
	"gluebot/internal/scripts"
)

const maxKBContextEntries = 30

// Router runs each message through a fixed precedence chain: intent,
// knowledge, template, LLM fallback, static fallback. Exactly one branch
// answers; the store is written only on the two terminal fallback branches.
// Every branch resolves to a valid ChatResponse, so routing never returns
// an error to the transport layer.
type Router struct {
	store     *knowledge.Store
	intents   *intent.Classifier
	templates *scripts.Matcher
	fallback  llm.Client
}

// NewRouter wires the routing chain.
func NewRouter(store *knowledge.Store, intents *intent.Classifier, templates *scripts.Matcher, fallback llm.Client) *Router {
	return &Router{
		store:     store,
		intents:   intents,
		templates: templates,
		fallback:  fallback,
	}
}

// Route decides which answer source responds to message.
func (r *Router) Route(ctx context.Context, message string) models.ChatResponse {
	log := logging.WithRequest(uuid.NewString())
	metrics := GetMetrics()
	if metrics != nil {
		metrics.ChatRequests.Inc()
	}

	respond := func(answer, source string) models.ChatResponse {
		log.Info("chat routed", "source", source)
		if metrics != nil {
			metrics.ChatResponses.WithLabelValues(stageLabel(source)).Inc()
		}
		return models.ChatResponse{Answer: answer, Source: source}
	}

	// 1. Small-talk and meta messages never touch the store.
	if reply, ok := r.intents.Classify(message); ok {
		return respond(reply, models.SourceIntent)
	}

	// 2. Curated knowledge, answer returned verbatim.
	if entry, ok := r.store.Lookup(message); ok {
		return respond(entry.Answer, models.SourceKnowledge)
	}

	// 3. Canned safe script templates.
	if name, script, ok := r.templates.Match(message); ok {
		return respond(script, models.SourceTemplatePrefix+name)
	}

	// 4. No key configured: log the question for a curator and say so.
	if !r.fallback.Available() {
		r.capture(log, message)
		return respond(r.fallbackReply(message), models.SourceFallbackNoAPIKey)
	}

	// 5/6. Provider call, bounded by the client timeout.
	start := time.Now()
	answer, err := r.fallback.Generate(ctx, message, r.kbContext())
	if metrics != nil {
		metrics.ProviderLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		log.Warn("fallback provider failed", "error", err)
		r.capture(log, message)
		return respond(r.fallbackReply(message), models.SourceFallbackUnavail)
	}

	return respond(answer, models.SourceLLMPrefix+r.fallback.Model())
}

// capture appends the message as an unresolved entry. Failures are logged
// and swallowed: a full disk must not turn into a failed chat request.
func (r *Router) capture(log *slog.Logger, message string) {
	if err := r.store.CaptureUnresolved(message); err != nil {
		log.Error("failed to capture unresolved question", "error", err)
		return
	}
	if m := GetMetrics(); m != nil {
		m.Captures.Inc()
	}
}

func (r *Router) fallbackReply(message string) string {
	return staticFallback(message, r.store.RelatedTopics(message, 3))
}

// kbContext renders curated topics for the provider prompt.
func (r *Router) kbContext() string {
	entries, _ := r.store.Load()

	var b strings.Builder
	count := 0
	for i := range entries {
		if count >= maxKBContextEntries {
			break
		}
		e := &entries[i]
		if !e.Resolved() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(e.Question))
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(e.Answer))
		count++
	}
	return b.String()
}

// stageLabel flattens tag suffixes (template:<name>, llm:<model>) for the
// metrics label.
func stageLabel(source string) string {
	if i := strings.IndexByte(source, ':'); i > 0 {
		prefix := source[:i+1]
		if prefix == models.SourceTemplatePrefix || prefix == models.SourceLLMPrefix {
			return strings.TrimSuffix(prefix, ":")
		}
	}
	return source
}
