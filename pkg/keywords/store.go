package keywords

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"
)

// limits for the active keyword set
const (
	MaxKeywords = 5
	MinLength   = 2
	MaxLength   = 50
)

// sentinel errors returned by mutating operations, matched with errors.Is
var (
	ErrValidation = errors.New("keyword validation failed")
	ErrCapacity   = errors.New("keyword capacity reached")
	ErrDuplicate  = errors.New("keyword already exists")
	ErrNotFound   = errors.New("keyword not found")
)

// Defaults returns the fallback keyword set used when nothing is persisted
func Defaults() []string {
	return []string{
		"artificial intelligence",
		"climate change",
		"cryptocurrency",
		"space exploration",
		"renewable energy",
	}
}

// Persistence stores the keyword list; any backend satisfying load/save works
type Persistence interface {
	LoadKeywords(ctx context.Context) ([]string, error)
	SaveKeywords(ctx context.Context, list []string, updated time.Time) error
}

// Store is the authoritative holder of the active keyword list. All mutations
// go through a single lock around the read-modify-persist sequence; reads
// return a copy of the last committed value without blocking on persistence.
type Store struct {
	persist Persistence

	mu          sync.RWMutex
	list        []string
	lastUpdated time.Time
}

// Rejection explains why a candidate was dropped by SetAll or Validate
type Rejection struct {
	Keyword string `json:"keyword"`
	Reason  string `json:"reason"`
}

// SetResult reports the outcome of a bulk set operation
type SetResult struct {
	Accepted []string    `json:"accepted"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

// NewStore creates a store backed by the given persistence. It never fails:
// if nothing was ever persisted or the load errors, the default set is used.
// A persisted empty list (nil vs empty from LoadKeywords) stays empty.
func NewStore(ctx context.Context, persist Persistence) *Store {
	s := &Store{persist: persist}

	list, err := persist.LoadKeywords(ctx)
	if err != nil {
		lgr.Printf("[WARN] failed to load keywords, using defaults: %v", err)
		s.list = Defaults()
		return s
	}
	if list == nil {
		s.list = Defaults()
		return s
	}
	s.list = list
	return s
}

// All returns a copy of the active keyword list in order
func (s *Store) All() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]string, len(s.list))
	copy(res, s.list)
	return res
}

// LastUpdated returns the time of the last successful mutation
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Add appends a single keyword after validation. Returns ErrValidation,
// ErrCapacity or ErrDuplicate; the set is unchanged on any failure.
func (s *Store) Add(ctx context.Context, candidate string) error {
	cleaned := clean(candidate)
	if reason := checkFormat(cleaned); reason != "" {
		return fmt.Errorf("%w: %s", ErrValidation, reason)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.list) >= MaxKeywords {
		return fmt.Errorf("%w: maximum %d keywords reached", ErrCapacity, MaxKeywords)
	}
	if containsFold(s.list, cleaned) {
		return fmt.Errorf("%w: %q", ErrDuplicate, cleaned)
	}

	updated := append(append([]string{}, s.list...), cleaned)
	return s.commit(ctx, updated)
}

// Remove deletes a keyword, matched case-insensitively. Removing the last
// keyword is allowed; an empty set is valid state.
func (s *Store) Remove(ctx context.Context, candidate string) error {
	target := strings.ToLower(clean(candidate))

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]string, 0, len(s.list))
	for _, k := range s.list {
		if strings.ToLower(k) != target {
			updated = append(updated, k)
		}
	}
	if len(updated) == len(s.list) {
		return fmt.Errorf("%w: %q", ErrNotFound, candidate)
	}
	return s.commit(ctx, updated)
}

// SetAll replaces the whole set. Every candidate is cleaned and checked;
// invalid or duplicate entries are dropped with a reason, the remainder is
// truncated to MaxKeywords preserving input order. Fails with ErrValidation
// only when validation leaves zero usable keywords.
func (s *Store) SetAll(ctx context.Context, candidates []string) (SetResult, error) {
	res := SetResult{Accepted: []string{}}
	seen := map[string]bool{}

	for _, c := range candidates {
		cleaned := clean(c)
		if reason := checkFormat(cleaned); reason != "" {
			res.Rejected = append(res.Rejected, Rejection{Keyword: c, Reason: reason})
			continue
		}
		if seen[strings.ToLower(cleaned)] {
			res.Rejected = append(res.Rejected, Rejection{Keyword: c, Reason: "duplicate"})
			continue
		}
		if len(res.Accepted) >= MaxKeywords {
			res.Rejected = append(res.Rejected, Rejection{Keyword: c, Reason: fmt.Sprintf("over the %d keyword limit", MaxKeywords)})
			continue
		}
		seen[strings.ToLower(cleaned)] = true
		res.Accepted = append(res.Accepted, cleaned)
	}

	if len(res.Accepted) == 0 {
		return res, fmt.Errorf("%w: no usable keywords in batch", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commit(ctx, res.Accepted); err != nil {
		return res, err
	}
	return res, nil
}

// ResetDefaults overwrites the set with the fixed default list
func (s *Store) ResetDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, Defaults())
}

// Validate checks candidates without mutating anything. The report carries
// one entry per input in order.
func (s *Store) Validate(candidates []string) []Rejection {
	report := make([]Rejection, 0, len(candidates))
	seen := map[string]bool{}
	for _, c := range candidates {
		cleaned := clean(c)
		reason := checkFormat(cleaned)
		if reason == "" && seen[strings.ToLower(cleaned)] {
			reason = "duplicate"
		}
		if reason == "" {
			seen[strings.ToLower(cleaned)] = true
			reason = "ok"
		}
		report = append(report, Rejection{Keyword: c, Reason: reason})
	}
	return report
}

// commit persists the new list and swaps it in. Caller holds the write lock.
// The in-memory list is updated only after a successful save, so a failed
// persistence leaves the last committed value observable.
func (s *Store) commit(ctx context.Context, list []string) error {
	now := time.Now().UTC()
	if err := s.persist.SaveKeywords(ctx, list, now); err != nil {
		return fmt.Errorf("save keywords: %w", err)
	}
	s.list = list
	s.lastUpdated = now
	return nil
}

// clean trims and collapses inner whitespace
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// checkFormat returns an empty string for a valid keyword, a reason otherwise.
// Length bounds count characters, not bytes.
func checkFormat(cleaned string) string {
	switch {
	case cleaned == "":
		return "empty"
	case utf8.RuneCountInString(cleaned) < MinLength:
		return fmt.Sprintf("shorter than %d characters", MinLength)
	case utf8.RuneCountInString(cleaned) > MaxLength:
		return fmt.Sprintf("longer than %d characters", MaxLength)
	}
	return ""
}

func containsFold(list []string, candidate string) bool {
	for _, k := range list {
		if strings.EqualFold(k, candidate) {
			return true
		}
	}
	return false
}
