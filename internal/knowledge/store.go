package knowledge

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	cache "github.com/patrickmn/go-cache"

	"gluebot/internal/models"
)

// ErrCorrupt is returned by Load when the knowledge file exists but cannot
// be parsed. The router treats this as "store empty" and keeps serving; the
// broken file is backed up first so a curator's edits are never lost.
var ErrCorrupt = errors.New("knowledge file is not valid JSON")

const (
	captureNote = "Captured from unknown user issue. Fill answer later."

	cacheKey = "entries"
	cacheTTL = 30 * time.Second
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Store owns the knowledge file. All reads and writes go through it: the
// write path is a full load-modify-rewrite of the file, serialized by an
// in-process mutex plus an advisory OS lock so concurrent captures (from
// this process or a curator tool) never lose each other's appends.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	path     string
	mu       sync.Mutex
	fileLock *flock.Flock
	cache    *cache.Cache

	// Backup dedup state: a persistently corrupt file must produce one
	// backup, not one per read until a curator repairs it.
	backupMu   sync.Mutex
	lastBackup [sha256.Size]byte
	hasBackup  bool
}

// cachedLoad is the cache entry for Load. The ErrCorrupt outcome is cached
// too, so a broken file is parsed (and backed up) once per TTL instead of
// on every lookup.
type cachedLoad struct {
	entries []models.KnowledgeEntry
	err     error
}

// NewStore creates a store backed by the JSON file at path. The file does
// not need to exist yet.
func NewStore(path string) *Store {
	return &Store{
		path:     path,
		fileLock: flock.New(path + ".lock"),
		cache:    cache.New(cacheTTL, 2*cacheTTL),
	}
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted entries. A missing or empty file is an empty
// store. An unparsable file is backed up, logged, and reported as ErrCorrupt
// alongside an empty slice so callers can keep serving.
func (s *Store) Load() ([]models.KnowledgeEntry, error) {
	if v, ok := s.cache.Get(cacheKey); ok {
		c := v.(cachedLoad)
		return c.entries, c.err
	}

	entries, err := s.read()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return []models.KnowledgeEntry{}, err
	}

	s.cache.Set(cacheKey, cachedLoad{entries: entries, err: err}, cache.DefaultExpiration)
	return entries, err
}

// Count returns the number of persisted entries, for the health endpoint.
func (s *Store) Count() int {
	entries, _ := s.Load()
	return len(entries)
}

// Lookup finds a resolved entry whose normalized question matches message
// by bidirectional substring: stored question contained in the message, or
// the message contained in the stored question. First match in stored order
// wins. Read-only and deterministic.
func (s *Store) Lookup(message string) (*models.KnowledgeEntry, bool) {
	text := Normalize(message)
	if text == "" {
		return nil, false
	}

	entries, _ := s.Load()
	for i := range entries {
		e := &entries[i]
		if !e.Resolved() {
			continue
		}
		if questionMatches(Normalize(e.Question), text) {
			match := *e
			return &match, true
		}
	}
	return nil, false
}

// CaptureUnresolved appends message as an unresolved entry unless any
// existing entry (resolved or unresolved) already matches it under the same
// substring rule. The reload-check-append-rewrite runs under the mutex and
// the file lock, so concurrent captures append at most once and never
// clobber each other.
func (s *Store) CaptureUnresolved(message string) error {
	question := strings.TrimSpace(message)
	if question == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to lock knowledge file: %w", err)
	}
	defer s.fileLock.Unlock()

	// Reload under the lock: another writer may have appended since our
	// caller last looked. A corrupt file was already backed up by read(),
	// so continuing with the empty slice cannot destroy curator data.
	entries, err := s.read()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}

	text := Normalize(question)
	for i := range entries {
		if questionMatches(Normalize(entries[i].Question), text) {
			return nil
		}
	}

	entries = append(entries, models.KnowledgeEntry{
		Question: question,
		Answer:   "",
		Status:   models.StatusUnresolved,
		Note:     captureNote,
	})

	if err := s.write(entries); err != nil {
		return err
	}

	s.cache.Delete(cacheKey)
	slog.Info("captured unresolved question", "question", question, "total", len(entries))
	return nil
}

// RelatedTopics returns up to limit resolved questions ranked by token
// overlap with message. Used to suggest follow-ups in fallback replies.
func (s *Store) RelatedTopics(message string, limit int) []string {
	msgTokens := tokenize(message)
	if len(msgTokens) == 0 || limit <= 0 {
		return nil
	}

	entries, _ := s.Load()

	type scored struct {
		score    float64
		question string
	}
	var ranked []scored
	for i := range entries {
		e := &entries[i]
		if !e.Resolved() {
			continue
		}
		qTokens := tokenize(e.Question)
		if len(qTokens) == 0 {
			continue
		}
		score := float64(len(intersect(msgTokens, qTokens))) / float64(len(qTokens))
		if score > 0 {
			ranked = append(ranked, scored{score: score, question: strings.TrimSpace(e.Question)})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	topics := make([]string, 0, len(ranked))
	for _, r := range ranked {
		topics = append(topics, r.question)
	}
	return topics
}

// InvalidateCache drops the cached entries so the next Load re-reads the
// file. Called by the file watcher when a curator edits the file.
func (s *Store) InvalidateCache() {
	s.cache.Delete(cacheKey)
}

// read parses the file, tolerating the legacy single-object shape and the
// legacy q/a keys. It never returns a nil slice.
func (s *Store) read() ([]models.KnowledgeEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.KnowledgeEntry{}, nil
		}
		return []models.KnowledgeEntry{}, fmt.Errorf("failed to read knowledge file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.KnowledgeEntry{}, nil
	}

	var entries []models.KnowledgeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Curators sometimes save a single object instead of a list.
		var single models.KnowledgeEntry
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			s.backupCorrupt(data)
			slog.Error("knowledge file is corrupt, continuing with empty store",
				"path", s.path, "error", err)
			return []models.KnowledgeEntry{}, ErrCorrupt
		}
		entries = []models.KnowledgeEntry{single}
	}

	for i := range entries {
		if entries[i].Question == "" && entries[i].LegacyQ != "" {
			entries[i].Question = entries[i].LegacyQ
		}
		if entries[i].Answer == "" && entries[i].LegacyA != "" {
			entries[i].Answer = entries[i].LegacyA
		}
		entries[i].LegacyQ = ""
		entries[i].LegacyA = ""
	}
	return entries, nil
}

// write rewrites the whole collection atomically: marshal to a temp file in
// the same directory, then rename over the original. A concurrent reader
// sees either the old file or the new one, never a partial write.
func (s *Store) write(entries []models.KnowledgeEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal knowledge entries: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".knowledge-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp knowledge file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp knowledge file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp knowledge file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp knowledge file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace knowledge file: %w", err)
	}
	return nil
}

// backupCorrupt copies the unparsable payload aside so a later capture
// rewriting the file cannot destroy whatever the curator had. Each distinct
// payload is backed up once; re-reading the same broken file must not pile
// up backups until someone repairs it.
func (s *Store) backupCorrupt(data []byte) {
	sum := sha256.Sum256(data)

	s.backupMu.Lock()
	defer s.backupMu.Unlock()
	if s.hasBackup && sum == s.lastBackup {
		return
	}

	backup := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().UnixNano())
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		slog.Error("failed to back up corrupt knowledge file", "path", backup, "error", err)
		return
	}
	s.lastBackup = sum
	s.hasBackup = true
	slog.Warn("backed up corrupt knowledge file", "path", backup)
}

// Normalize lowercases, trims, and collapses internal whitespace so that
// matching is insensitive to formatting.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// questionMatches applies the bidirectional substring rule. Short stored
// questions can over-match long messages; that looseness is intentional and
// load-bearing for existing knowledge files, so tighten with care.
func questionMatches(question, message string) bool {
	if question == "" || message == "" {
		return false
	}
	return strings.Contains(message, question) || strings.Contains(question, message)
}

func tokenize(s string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, t := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		tokens[t] = struct{}{}
	}
	return tokens
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for t := range a {
		if _, ok := b[t]; ok {
			out[t] = struct{}{}
		}
	}
	return out
}
