package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubResearcher struct {
	artifact string
	err      error
	calls    int
}

func (s *stubResearcher) Run(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.artifact, nil
}

func parisRequest() TripRequest {
	return TripRequest{Destination: "Paris", Days: 5, Budget: 150000, Language: "English"}
}

func researchedSession(t *testing.T, p *Planner) *Session {
	t.Helper()
	s := NewSession(parisRequest())
	require.NoError(t, p.Research(context.Background(), s))
	return s
}

func TestResearchStoresArtifactAndAdvancesState(t *testing.T) {
	p := &Planner{Researcher: &stubResearcher{artifact: "accommodation, activity and dining findings"}}
	s := NewSession(parisRequest())

	require.Equal(t, StateCollecting, s.State)
	require.NoError(t, p.Research(context.Background(), s))

	artifact, err := s.ResearchArtifact()
	require.NoError(t, err)
	assert.Equal(t, "accommodation, activity and dining findings", artifact)
	assert.Equal(t, StateRefining, s.Snapshot().State)
}

func TestResearchFailurePropagatesAndLeavesArtifactUnset(t *testing.T) {
	p := &Planner{Researcher: &stubResearcher{err: errors.New("search down")}}
	s := NewSession(parisRequest())

	err := p.Research(context.Background(), s)
	require.Error(t, err)
	assert.True(t, IsStageFailure(err))

	_, err = s.ResearchArtifact()
	assert.ErrorIs(t, err, ErrResearchPending)
	assert.Equal(t, StateCollecting, s.Snapshot().State)
}

func TestResearchRerunReplacesArtifactAndClearsSelections(t *testing.T) {
	researcher := &stubResearcher{artifact: "first run"}
	p := &Planner{Researcher: researcher, Completer: &stubCompleter{reply: "options"}}
	s := researchedSession(t, p)

	_, err := p.Recommend(context.Background(), s, CategoryActivity, "Mix of Everything")
	require.NoError(t, err)

	researcher.artifact = "second run"
	require.NoError(t, p.Research(context.Background(), s))

	artifact, err := s.ResearchArtifact()
	require.NoError(t, err)
	assert.Equal(t, "second run", artifact)
	_, ok := s.Selection(CategoryActivity)
	assert.False(t, ok, "selections made against the old artifact must be cleared")
}

func TestSentinelSkipsRecommendationCall(t *testing.T) {
	for _, tc := range []struct {
		category Category
		sentinel string
	}{
		{CategoryAccommodation, "No Preference"},
		{CategoryActivity, "Mix of Everything"},
		{CategoryDining, "No Preference"},
		{CategoryTransportation, "No Preference"},
	} {
		t.Run(string(tc.category), func(t *testing.T) {
			completer := &stubCompleter{reply: "should not be called"}
			p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: completer}
			s := researchedSession(t, p)

			sel, err := p.Recommend(context.Background(), s, tc.category, tc.sentinel)
			require.NoError(t, err)

			assert.Zero(t, completer.calls, "sentinel must not trigger a model call")
			assert.Equal(t, tc.sentinel, sel.Preference)
			assert.Equal(t, []string{tc.sentinel}, sel.Choices)
			assert.Empty(t, sel.Recommendations)
		})
	}
}

func TestRecommendIssuesOneCallForConcretePreference(t *testing.T) {
	completer := &stubCompleter{reply: "**Option 1: Hotel A**\n**Option 2: Hotel B**\n**Option 3: Hotel C**"}
	p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: completer}
	s := researchedSession(t, p)

	sel, err := p.Recommend(context.Background(), s, CategoryAccommodation, "Mid-range Hotels (₹4,000-15,000 per night)")
	require.NoError(t, err)
	assert.Equal(t, 1, completer.calls)
	assert.Contains(t, sel.Recommendations, "Hotel A")
	assert.Empty(t, sel.Choices, "choices are recorded in the selection step")
}

func TestRecommendRejectsUnknownPreference(t *testing.T) {
	p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: &stubCompleter{}}
	s := researchedSession(t, p)

	_, err := p.Recommend(context.Background(), s, CategoryDining, "Molecular Gastronomy Only")
	require.Error(t, err)
	assert.False(t, IsStageFailure(err))
}

func TestRecommendBeforeResearchFails(t *testing.T) {
	p := &Planner{Completer: &stubCompleter{}}
	s := NewSession(parisRequest())

	_, err := p.Recommend(context.Background(), s, CategoryDining, "No Preference")
	assert.ErrorIs(t, err, ErrResearchPending)
}

func TestEmptyMultiChoiceSelectionDefaultsToOptionOne(t *testing.T) {
	for _, category := range []Category{CategoryActivity, CategoryDining} {
		t.Run(string(category), func(t *testing.T) {
			p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: &stubCompleter{reply: "options"}}
			s := researchedSession(t, p)

			spec, _ := Spec(category)
			pref := spec.Options[0].Label
			_, err := p.Recommend(context.Background(), s, category, pref)
			require.NoError(t, err)

			sel, err := p.Select(s, category, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"Option 1"}, sel.Choices)
		})
	}
}

func TestSingleChoiceCategoriesRequireExactlyOneChoice(t *testing.T) {
	p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: &stubCompleter{reply: "options"}}
	s := researchedSession(t, p)

	_, err := p.Recommend(context.Background(), s, CategoryAccommodation, "Luxury Hotels (₹15,000-40,000+ per night)")
	require.NoError(t, err)

	_, err = p.Select(s, CategoryAccommodation, nil)
	assert.Error(t, err)
	_, err = p.Select(s, CategoryAccommodation, []string{"Option 1", "Option 2"})
	assert.Error(t, err)

	sel, err := p.Select(s, CategoryAccommodation, []string{"Option 2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Option 2"}, sel.Choices)
}

func TestSelectRejectsChoicesOutsideMenu(t *testing.T) {
	p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: &stubCompleter{reply: "options"}}
	s := researchedSession(t, p)

	_, err := p.Recommend(context.Background(), s, CategoryDining, "Fine Dining (₹3,500-10,000+ per meal)")
	require.NoError(t, err)

	_, err = p.Select(s, CategoryDining, []string{"Option 9"})
	assert.Error(t, err)
}

func TestSelectOnSentinelIsANoOp(t *testing.T) {
	p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: &stubCompleter{}}
	s := researchedSession(t, p)

	_, err := p.Recommend(context.Background(), s, CategoryTransportation, "No Preference")
	require.NoError(t, err)

	sel, err := p.Select(s, CategoryTransportation, []string{"Option 1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"No Preference"}, sel.Choices)
}

func TestSynthesisRequiresAllCategories(t *testing.T) {
	p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: &stubCompleter{reply: "plan"}}
	s := researchedSession(t, p)

	_, err := p.Synthesize(context.Background(), s, "")
	require.Error(t, err)
	assert.False(t, IsStageFailure(err))
}

func TestSynthesisRequiresChosenOptions(t *testing.T) {
	p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: &stubCompleter{reply: "plan"}}
	s := researchedSession(t, p)

	// Accommodation gets a concrete preference but the selection step is
	// skipped, leaving its choices empty.
	_, err := p.Recommend(context.Background(), s, CategoryAccommodation, "Luxury Hotels (₹15,000-40,000+ per night)")
	require.NoError(t, err)
	for _, c := range []Category{CategoryActivity, CategoryDining, CategoryTransportation} {
		spec, _ := Spec(c)
		_, err := p.Recommend(context.Background(), s, c, spec.Sentinel)
		require.NoError(t, err)
	}

	_, err = p.Synthesize(context.Background(), s, "")
	require.Error(t, err)
	assert.False(t, IsStageFailure(err))
	assert.Empty(t, s.Records())

	_, err = p.Select(s, CategoryAccommodation, []string{"Option 1"})
	require.NoError(t, err)
	rec, err := p.Synthesize(context.Background(), s, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Option 1"}, rec.Selections[CategoryAccommodation].Choices)
}

func TestHistoryIsAppendOnlyAcrossSyntheses(t *testing.T) {
	p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: &stubCompleter{reply: "itinerary text"}}
	s := researchedSession(t, p)

	for _, c := range Categories {
		spec, _ := Spec(c)
		_, err := p.Recommend(context.Background(), s, c, spec.Sentinel)
		require.NoError(t, err)
	}

	const n = 3
	var ids []string
	for i := 0; i < n; i++ {
		rec, err := p.Synthesize(context.Background(), s, "")
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	records := s.Records()
	require.Len(t, records, n)
	// Newest first, and every earlier record still present.
	for i, rec := range records {
		assert.Equal(t, ids[n-1-i], rec.ID)
	}
}

func TestSynthesisFailureLeavesHistoryUntouched(t *testing.T) {
	completer := &stubCompleter{reply: "itinerary"}
	p := &Planner{Researcher: &stubResearcher{artifact: "findings"}, Completer: completer}
	s := researchedSession(t, p)

	for _, c := range Categories {
		spec, _ := Spec(c)
		_, err := p.Recommend(context.Background(), s, c, spec.Sentinel)
		require.NoError(t, err)
	}

	completer.err = errors.New("model down")
	_, err := p.Synthesize(context.Background(), s, "")
	require.Error(t, err)
	assert.True(t, IsStageFailure(err))
	assert.Empty(t, s.Records())
	assert.Equal(t, StateRefining, s.Snapshot().State)

	completer.err = nil
	_, err = p.Synthesize(context.Background(), s, "")
	require.NoError(t, err)
	assert.Len(t, s.Records(), 1)
}

func TestEndToEndParisScenario(t *testing.T) {
	completer := &stubCompleter{reply: "Day 1: Louvre. Day 2: Montmartre."}
	p := &Planner{Researcher: &stubResearcher{artifact: "paris research findings"}, Completer: completer}

	req := TripRequest{Destination: "Paris", Days: 5, Budget: 150000, Language: "English"}
	require.NoError(t, req.Validate())
	s := NewSession(req)

	require.NoError(t, p.Research(context.Background(), s))

	_, err := p.Recommend(context.Background(), s, CategoryAccommodation, "Mid-range Hotels (₹4,000-15,000 per night)")
	require.NoError(t, err)
	_, err = p.Select(s, CategoryAccommodation, []string{"Option 1"})
	require.NoError(t, err)

	_, err = p.Recommend(context.Background(), s, CategoryActivity, "Mix of Everything")
	require.NoError(t, err)

	_, err = p.Recommend(context.Background(), s, CategoryDining, "Budget-Friendly (₹300-1,500 per meal)")
	require.NoError(t, err)
	_, err = p.Select(s, CategoryDining, []string{"Option 2", "Option 3"})
	require.NoError(t, err)

	callsBefore := completer.calls
	_, err = p.Recommend(context.Background(), s, CategoryTransportation, "No Preference")
	require.NoError(t, err)
	assert.Equal(t, callsBefore, completer.calls, "sentinel transportation must skip the recommendation call")

	rec, err := p.Synthesize(context.Background(), s, "window seats please")
	require.NoError(t, err)

	assert.NotEmpty(t, rec.Itinerary)
	assert.Equal(t, "paris research findings", rec.Research)
	assert.Equal(t, "window seats please", rec.SpecialRequests)
	require.Len(t, rec.Selections, 4)
	assert.Equal(t, []string{"Option 1"}, rec.Selections[CategoryAccommodation].Choices)
	assert.Equal(t, []string{"Mix of Everything"}, rec.Selections[CategoryActivity].Choices)
	assert.Equal(t, []string{"Option 2", "Option 3"}, rec.Selections[CategoryDining].Choices)
	assert.Equal(t, []string{"No Preference"}, rec.Selections[CategoryTransportation].Choices)
	assert.Len(t, s.Records(), 1)
}
