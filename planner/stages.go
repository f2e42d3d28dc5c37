package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"backend/ai"
)

// StageError marks an upstream model/search failure, as opposed to an
// invalid-input error. The stage's output is left unset; the caller may
// re-trigger the stage at any time.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// IsStageFailure reports whether err is an upstream stage failure.
func IsStageFailure(err error) bool {
	var se *StageError
	return errors.As(err, &se)
}

// ResearchRunner drives the search-augmented research agent.
type ResearchRunner interface {
	Run(ctx context.Context, instruction string) (string, error)
}

// Planner orchestrates the staged workflow: research, per-category preference
// refinement, and itinerary synthesis. Every stage issues at most one
// best-effort call; nothing is retried.
type Planner struct {
	Completer  ai.Completer
	Researcher ResearchRunner
}

// Research runs the Research Stage once and stores the artifact on the
// session. A failed run leaves any previous artifact in place.
func (p *Planner) Research(ctx context.Context, s *Session) error {
	if err := s.BeginResearch(); err != nil {
		return err
	}
	artifact, err := p.Researcher.Run(ctx, ResearchPrompt(s.Request))
	if err != nil {
		s.FailResearch()
		return &StageError{Stage: "research", Err: err}
	}
	s.CompleteResearch(artifact)
	return nil
}

// Recommend records a category preference and, for non-sentinel labels,
// issues one recommendation completion for exactly three options. The
// sentinel label skips the call and becomes the selection itself.
func (p *Planner) Recommend(ctx context.Context, s *Session, c Category, preference string) (CategorySelection, error) {
	spec, ok := Spec(c)
	if !ok {
		return CategorySelection{}, fmt.Errorf("unknown category %q", c)
	}
	if !spec.ValidPreference(preference) {
		return CategorySelection{}, fmt.Errorf("%q is not a valid %s preference", preference, c)
	}
	research, err := s.ResearchArtifact()
	if err != nil {
		return CategorySelection{}, err
	}

	if spec.IsSentinel(preference) {
		sel := CategorySelection{
			Preference: preference,
			Choices:    []string{preference},
		}
		s.RecordPreference(c, sel)
		return sel, nil
	}

	text, err := p.Completer.Complete(ctx, RecommendationPrompt(c, s.Request, research, preference))
	if err != nil {
		return CategorySelection{}, &StageError{Stage: string(c) + " recommendation", Err: err}
	}
	sel := CategorySelection{
		Preference:      preference,
		Recommendations: text,
	}
	s.RecordPreference(c, sel)
	return sel, nil
}

// The generated options are always presented as Option 1..3; single-choice
// categories additionally allow one free-form escape hatch.
var (
	baseChoices  = []string{"Option 1", "Option 2", "Option 3"}
	extraChoices = map[Category]string{
		CategoryAccommodation:  "Let AI decide based on budget",
		CategoryTransportation: "Combination of options",
	}
)

// ChoiceMenu lists the selectable options for a category.
func ChoiceMenu(c Category) []string {
	if extra, ok := extraChoices[c]; ok {
		return append(append([]string{}, baseChoices...), extra)
	}
	return baseChoices
}

// Select records the user's pick among the generated options. An empty
// multi-choice selection defaults to Option 1 so synthesis always has a
// non-empty selection to reference. Sentinel selections are left untouched.
func (p *Planner) Select(s *Session, c Category, choices []string) (CategorySelection, error) {
	spec, ok := Spec(c)
	if !ok {
		return CategorySelection{}, fmt.Errorf("unknown category %q", c)
	}
	sel, ok := s.Selection(c)
	if !ok {
		return CategorySelection{}, fmt.Errorf("no %s preference recorded yet", c)
	}
	if spec.IsSentinel(sel.Preference) {
		return sel, nil
	}

	menu := ChoiceMenu(c)
	for _, choice := range choices {
		if !lo.Contains(menu, choice) {
			return CategorySelection{}, fmt.Errorf("%q is not one of the %s options", choice, c)
		}
	}

	if spec.MultiChoice {
		choices = lo.Uniq(choices)
		if len(choices) == 0 {
			choices = []string{"Option 1"}
		}
	} else {
		if len(choices) != 1 {
			return CategorySelection{}, fmt.Errorf("%s requires exactly one choice", c)
		}
	}

	sel.Choices = choices
	s.RecordPreference(c, sel)
	return sel, nil
}

// Synthesize issues the single synthesis completion and appends the resulting
// TripRecord to the session history.
func (p *Planner) Synthesize(ctx context.Context, s *Session, specialRequests string) (*TripRecord, error) {
	if err := s.BeginSynthesis(); err != nil {
		return nil, err
	}

	snap := s.Snapshot()
	itinerary, err := p.Completer.Complete(ctx, SynthesisPrompt(snap.Request, snap.Research, snap.Selections, specialRequests))
	if err != nil {
		s.FailSynthesis()
		return nil, &StageError{Stage: "synthesis", Err: err}
	}

	rec := &TripRecord{
		ID:              uuid.NewString()[:8],
		Request:         snap.Request,
		Research:        snap.Research,
		Selections:      snap.Selections,
		SpecialRequests: specialRequests,
		Itinerary:       itinerary,
		CreatedAt:       time.Now().UTC(),
	}
	s.CompleteSynthesis(rec)
	return rec, nil
}
