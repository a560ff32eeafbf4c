package ideascope

import (
	"testing"
	"time"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/usecase/retrieval"
)

func TestIdeaToDomain(t *testing.T) {
	idea := Idea{
		Title:        "AI Meal Planner",
		Summary:      "Meal plans from pantry photos",
		Audience:     "Busy families",
		MarketSize:   "$5B",
		TeamStrength: 7,
		Traction:     "MVP",
	}

	got := idea.toDomain()
	if got.Title != idea.Title || got.Summary != idea.Summary {
		t.Errorf("title/summary mismatch: %+v", got)
	}
	if got.TeamStrength != 7 || got.Traction != "MVP" {
		t.Errorf("team/traction mismatch: %+v", got)
	}
}

func TestAnalysisFromDomain(t *testing.T) {
	now := time.Now()
	result := domain.AnalysisResult{
		IdeaTitle: "AI Meal Planner",
		Domain:    "FoodTech",
		Scores: domain.ScoreBreakdown{
			MarketViability:      80,
			InnovationIndex:      70,
			CompetitionIntensity: 60,
			ScalabilityPotential: 75,
			ExecutionFeasibility: 85,
		},
		Competitors:  []domain.Competitor{{Name: "Mealime", Stage: "Growth"}},
		FinalVerdict: "Viable",
		Provider:     "gemini",
		Attempts:     2,
		AnalyzedAt:   now,
	}

	got := analysisFromDomain(result)
	if got.OverallScore != 74 {
		t.Errorf("expected overall 74, got %d", got.OverallScore)
	}
	if got.FinalVerdict != "Viable" {
		t.Errorf("expected verdict Viable, got %q", got.FinalVerdict)
	}
	if len(got.Competitors) != 1 || got.Competitors[0].Name != "Mealime" {
		t.Errorf("competitor mapping broken: %+v", got.Competitors)
	}
	if got.Provider != "gemini" || got.Attempts != 2 || !got.AnalyzedAt.Equal(now) {
		t.Errorf("provenance mapping broken: %+v", got)
	}
}

func TestRetrievedFromDomain(t *testing.T) {
	ctx := retrieval.Context{
		HasSimilar: true,
		Matches: []domain.SimilarityMatch{
			{
				Record: domain.IdeaRecord{
					Title:    "Prior idea",
					Domain:   "SaaS",
					Score:    82,
					Verdict:  domain.VerdictViable,
					Traction: "Revenue",
				},
				Similarity: 0.91,
			},
		},
		Patterns:  []string{"p1"},
		Insights:  "promising space",
		StoreSize: 4,
	}

	got := retrievedFromDomain(ctx)
	if !got.HasSimilar || got.StoreSize != 4 {
		t.Errorf("context mapping broken: %+v", got)
	}
	m := got.Matches[0]
	if m.Title != "Prior idea" || m.Verdict != "Viable" || m.Similarity != 0.91 {
		t.Errorf("match mapping broken: %+v", m)
	}
	if m.Traction != "Revenue" || m.Score != 82 {
		t.Errorf("match fields broken: %+v", m)
	}
}
