package planner

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TripRequest holds the immutable inputs of one planning session.
type TripRequest struct {
	Destination string `json:"destination"`
	Days        int    `json:"days"`
	Budget      int    `json:"budget"`
	Language    string `json:"language"`
}

const (
	MinDays   = 1
	MaxDays   = 30
	MinBudget = 5000
	MaxBudget = 5000000
)

// Validate checks the request against the fixed input bounds and normalizes
// the language to its canonical name.
func (r *TripRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return errors.New("destination is required")
	}
	if r.Days < MinDays || r.Days > MaxDays {
		return fmt.Errorf("days must be between %d and %d", MinDays, MaxDays)
	}
	if r.Budget < MinBudget || r.Budget > MaxBudget {
		return fmt.Errorf("budget must be between %d and %d INR", MinBudget, MaxBudget)
	}
	name, ok := NormalizeLanguage(r.Language)
	if !ok {
		return fmt.Errorf("unsupported language %q (supported: %s)", r.Language, strings.Join(SupportedLanguages(), ", "))
	}
	r.Language = name
	return nil
}

// CategorySelection records one category's refinement outcome: the chosen
// preference label, the raw recommendation text (empty when the sentinel was
// chosen), and the user's chosen options.
type CategorySelection struct {
	Preference      string   `json:"preference"`
	Recommendations string   `json:"recommendations,omitempty"`
	Choices         []string `json:"choices"`
}

// TripRecord is one finalized planning outcome. It is created exactly once,
// when synthesis succeeds, and is never mutated afterwards.
type TripRecord struct {
	ID              string                         `json:"id"`
	Request         TripRequest                    `json:"request"`
	Research        string                         `json:"research"`
	Selections      map[Category]CategorySelection `json:"selections"`
	SpecialRequests string                         `json:"specialRequests,omitempty"`
	Itinerary       string                         `json:"itinerary"`
	CreatedAt       time.Time                      `json:"createdAt"`
}

// State names one phase of the planning workflow.
type State string

const (
	StateCollecting   State = "collecting_request"
	StateResearching  State = "researching"
	StateRefining     State = "refining_preferences"
	StateSynthesizing State = "synthesizing"
	StateExporting    State = "exporting"
)

// Session is the single mutable record of one interactive planning run.
// It exists only in memory and is discarded when the store expires it.
type Session struct {
	mu sync.Mutex

	ID         string
	Request    TripRequest
	State      State
	Research   string
	Selections map[Category]CategorySelection
	History    []*TripRecord
	CreatedAt  time.Time
}

// NewSession builds a session in the collecting state for a validated request.
func NewSession(req TripRequest) *Session {
	return &Session{
		ID:         uuid.NewString()[:8],
		Request:    req,
		State:      StateCollecting,
		Selections: map[Category]CategorySelection{},
		CreatedAt:  time.Now().UTC(),
	}
}

// ErrResearchPending is returned when a stage that depends on the research
// artifact runs before research has completed.
var ErrResearchPending = errors.New("research has not completed for this session")

// BeginResearch moves the session into the researching state. Research may be
// re-triggered from any settled state; only a concurrent research or synthesis
// run blocks it.
func (s *Session) BeginResearch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State == StateResearching || s.State == StateSynthesizing {
		return fmt.Errorf("session is busy (%s)", s.State)
	}
	s.State = StateResearching
	return nil
}

// CompleteResearch replaces the research artifact and clears stale selections,
// since they referenced the previous artifact.
func (s *Session) CompleteResearch(artifact string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Research = artifact
	s.Selections = map[Category]CategorySelection{}
	s.State = StateRefining
}

// FailResearch reverts to the collecting state, leaving any previous artifact
// untouched only if none existed; a failed re-run keeps the old artifact.
func (s *Session) FailResearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Research == "" {
		s.State = StateCollecting
		return
	}
	s.State = StateRefining
}

// ResearchArtifact returns the current artifact, or ErrResearchPending.
func (s *Session) ResearchArtifact() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Research == "" {
		return "", ErrResearchPending
	}
	return s.Research, nil
}

// RecordPreference stores the chosen preference label and its recommendation
// text for a category. For sentinel labels the selection is the sentinel
// itself and no recommendation text exists.
func (s *Session) RecordPreference(c Category, sel CategorySelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Selections[c] = sel
}

// Selection returns the recorded refinement for a category.
func (s *Session) Selection(c Category) (CategorySelection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.Selections[c]
	return sel, ok
}

// BeginSynthesis moves the session into the synthesizing state. Every category
// must have a recorded selection with at least one chosen option first, so the
// synthesis prompt never references an empty selection.
func (s *Session) BeginSynthesis() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Research == "" {
		return ErrResearchPending
	}
	if s.State == StateResearching || s.State == StateSynthesizing {
		return fmt.Errorf("session is busy (%s)", s.State)
	}
	for _, c := range Categories {
		sel, ok := s.Selections[c]
		if !ok {
			return fmt.Errorf("no selection recorded for %s", c)
		}
		if len(sel.Choices) == 0 {
			return fmt.Errorf("no options chosen for %s yet", c)
		}
	}
	s.State = StateSynthesizing
	return nil
}

// CompleteSynthesis appends a new TripRecord and moves to the exporting state.
// History is append-only: a re-synthesis adds a record, it never replaces one.
func (s *Session) CompleteSynthesis(rec *TripRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = append(s.History, rec)
	s.State = StateExporting
}

// FailSynthesis returns the session to preference refinement.
func (s *Session) FailSynthesis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = StateRefining
}

// LatestRecord returns the most recent TripRecord, if any. Exports always act
// on the latest record.
func (s *Session) LatestRecord() (*TripRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.History) == 0 {
		return nil, false
	}
	return s.History[len(s.History)-1], true
}

// Records returns the trip history, newest first.
func (s *Session) Records() []*TripRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*TripRecord, 0, len(s.History))
	for i := len(s.History) - 1; i >= 0; i-- {
		out = append(out, s.History[i])
	}
	return out
}

// Snapshot is the read-only view of a session returned by the API.
type Snapshot struct {
	ID         string                         `json:"id"`
	Request    TripRequest                    `json:"request"`
	State      State                          `json:"state"`
	Research   string                         `json:"research,omitempty"`
	Selections map[Category]CategorySelection `json:"selections"`
	Trips      int                            `json:"trips"`
	CreatedAt  time.Time                      `json:"createdAt"`
}

// Snapshot captures the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	selections := make(map[Category]CategorySelection, len(s.Selections))
	for c, sel := range s.Selections {
		selections[c] = sel
	}
	return Snapshot{
		ID:         s.ID,
		Request:    s.Request,
		State:      s.State,
		Research:   s.Research,
		Selections: selections,
		Trips:      len(s.History),
		CreatedAt:  s.CreatedAt,
	}
}

// Store keeps sessions in memory with a sliding TTL. Nothing is persisted;
// a process restart discards every session.
type Store struct {
	sessions *cache.Cache
}

// NewStore builds a session store. Sessions idle longer than ttl are dropped.
func NewStore(ttl time.Duration) *Store {
	return &Store{sessions: cache.New(ttl, ttl/2)}
}

// Put registers a session under its ID.
func (st *Store) Put(s *Session) {
	st.sessions.Set(s.ID, s, cache.DefaultExpiration)
}

// Get returns a live session and refreshes its TTL.
func (st *Store) Get(id string) (*Session, bool) {
	v, ok := st.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	st.sessions.Set(id, s, cache.DefaultExpiration)
	return s, true
}
