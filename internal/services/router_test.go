package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gluebot/internal/intent"
	"gluebot/internal/knowledge"
	"gluebot/internal/models"
	"gluebot/internal/scripts"
)

// fakeLLM implements llm.Client for router tests.
type fakeLLM struct {
	available bool
	answer    string
	err       error
	calls     int
}

func (f *fakeLLM) Available() bool { return f.available }
func (f *fakeLLM) Model() string   { return "test-model" }

func (f *fakeLLM) Generate(ctx context.Context, message, kbContext string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func setupRouter(t *testing.T, entries []models.KnowledgeEntry, fallback *fakeLLM) (*Router, *knowledge.Store) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "knowledge.json")
	if entries != nil {
		data, err := json.Marshal(entries)
		if err != nil {
			t.Fatalf("Failed to marshal seed entries: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("Failed to seed knowledge file: %v", err)
		}
	}

	store := knowledge.NewStore(path)
	router := NewRouter(store, intent.NewClassifier(), scripts.NewMatcher(), fallback)
	return router, store
}

func entriesOnDisk(t *testing.T, store *knowledge.Store) []models.KnowledgeEntry {
	t.Helper()
	store.InvalidateCache()
	entries, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return entries
}

func TestRouteIntentNeverTouchesStore(t *testing.T) {
	fallback := &fakeLLM{available: false}
	router, store := setupRouter(t, nil, fallback)

	resp := router.Route(context.Background(), "hello")
	if resp.Source != models.SourceIntent {
		t.Fatalf("Expected source intent, got %q", resp.Source)
	}
	if resp.Answer == "" {
		t.Error("Intent reply must not be empty")
	}

	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("Greeting must not create or write the knowledge file")
	}
	if fallback.calls != 0 {
		t.Error("Greeting must not reach the LLM")
	}
}

func TestRouteKnowledgeMatch(t *testing.T) {
	router, _ := setupRouter(t, []models.KnowledgeEntry{
		{Question: "pod stuck in termination", Answer: "Check finalizers...", Status: models.StatusResolved},
	}, &fakeLLM{available: true, answer: "should not be used"})

	resp := router.Route(context.Background(), "pod stuck in termination")
	if resp.Source != models.SourceKnowledge {
		t.Fatalf("Expected source knowledge, got %q", resp.Source)
	}
	if resp.Answer != "Check finalizers..." {
		t.Errorf("Expected stored answer verbatim, got %q", resp.Answer)
	}
}

func TestRouteKnowledgeBeforeTemplate(t *testing.T) {
	router, _ := setupRouter(t, []models.KnowledgeEntry{
		{Question: "delete all openstack volumes in available state", Answer: "Use the curated runbook.", Status: models.StatusResolved},
	}, &fakeLLM{})

	resp := router.Route(context.Background(), "delete all openstack volumes in available state")
	if resp.Source != models.SourceKnowledge {
		t.Errorf("Knowledge must take precedence over templates, got %q", resp.Source)
	}
}

func TestRouteTemplateMatch(t *testing.T) {
	fallback := &fakeLLM{available: true, answer: "should not be used"}
	router, store := setupRouter(t, nil, fallback)

	resp := router.Route(context.Background(), "delete all openstack volumes in available state")
	if resp.Source != "template:volume_delete" {
		t.Fatalf("Expected source template:volume_delete, got %q", resp.Source)
	}
	if !strings.Contains(resp.Answer, "DRY_RUN") {
		t.Error("Template answer must carry the dry-run default")
	}
	if fallback.calls != 0 {
		t.Error("Template match must not reach the LLM")
	}
	if len(entriesOnDisk(t, store)) != 0 {
		t.Error("Template match must not capture the message")
	}
}

func TestRouteNoAPIKeyCapturesOnce(t *testing.T) {
	fallback := &fakeLLM{available: false}
	router, store := setupRouter(t, nil, fallback)

	resp := router.Route(context.Background(), "asdkjhaskjdh random gibberish")
	if resp.Source != models.SourceFallbackNoAPIKey {
		t.Fatalf("Expected source fallback:no_api_key, got %q", resp.Source)
	}
	if resp.Answer == "" {
		t.Error("Fallback reply must not be empty")
	}
	if fallback.calls != 0 {
		t.Error("Route must never call Generate when the client is unavailable")
	}

	entries := entriesOnDisk(t, store)
	if len(entries) != 1 {
		t.Fatalf("Expected exactly one captured entry, got %d", len(entries))
	}
	if entries[0].Question != "asdkjhaskjdh random gibberish" {
		t.Errorf("Captured question must be verbatim, got %q", entries[0].Question)
	}
	if entries[0].Status != models.StatusUnresolved {
		t.Errorf("Captured entry must be unresolved, got %q", entries[0].Status)
	}
}

func TestRouteLLMSuccess(t *testing.T) {
	fallback := &fakeLLM{available: true, answer: "Here is what to check."}
	router, store := setupRouter(t, nil, fallback)

	resp := router.Route(context.Background(), "something nobody asked before")
	if resp.Source != "llm:test-model" {
		t.Fatalf("Expected source llm:test-model, got %q", resp.Source)
	}
	if resp.Answer != "Here is what to check." {
		t.Errorf("Expected generated answer, got %q", resp.Answer)
	}
	if len(entriesOnDisk(t, store)) != 0 {
		t.Error("Successful generation must not capture the message")
	}
}

func TestRouteLLMFailureCaptures(t *testing.T) {
	fallback := &fakeLLM{available: true, err: errors.New("upstream timeout")}
	router, store := setupRouter(t, nil, fallback)

	resp := router.Route(context.Background(), "openstack instance stuck in error")
	if resp.Source != models.SourceFallbackUnavail {
		t.Fatalf("Expected source fallback:unavailable, got %q", resp.Source)
	}
	if resp.Answer == "" {
		t.Error("Fallback reply must not be empty")
	}

	entries := entriesOnDisk(t, store)
	if len(entries) != 1 {
		t.Fatalf("Expected exactly one captured entry, got %d", len(entries))
	}
}

func TestRouteRepeatCapturesAtMostOnce(t *testing.T) {
	router, store := setupRouter(t, nil, &fakeLLM{available: false})

	router.Route(context.Background(), "etcd disk almost full")
	router.Route(context.Background(), "etcd disk almost full")

	if entries := entriesOnDisk(t, store); len(entries) != 1 {
		t.Fatalf("Expected repeated unknown question to capture once, got %d entries", len(entries))
	}
}

func TestRouteFallbackSuggestsRelatedTopics(t *testing.T) {
	router, _ := setupRouter(t, []models.KnowledgeEntry{
		{Question: "openstack volume stuck detaching", Answer: "Reset state.", Status: models.StatusResolved},
	}, &fakeLLM{available: false})

	resp := router.Route(context.Background(), "openstack volume broken somehow")
	if !strings.Contains(resp.Answer, "openstack volume stuck detaching") {
		t.Errorf("Expected fallback reply to suggest the related topic, got %q", resp.Answer)
	}
}
