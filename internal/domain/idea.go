package domain

import (
	"fmt"
	"strings"
	"time"
)

// Verdict is the categorical outcome assigned to an evaluated idea.
type Verdict string

const (
	VerdictRisky       Verdict = "Risky"
	VerdictPromising   Verdict = "Promising"
	VerdictViable      Verdict = "Viable"
	VerdictExceptional Verdict = "Exceptional"
)

// ParseVerdict normalizes a free-form verdict label.
func ParseVerdict(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "risky":
		return VerdictRisky, nil
	case "promising":
		return VerdictPromising, nil
	case "viable":
		return VerdictViable, nil
	case "exceptional":
		return VerdictExceptional, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", s)
	}
}

// IdeaInput is the caller-supplied description of a startup idea.
type IdeaInput struct {
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Description  string `json:"description"`
	Audience     string `json:"audience"`
	MarketSize   string `json:"market_size"`
	TeamStrength int    `json:"team_strength"`
	Traction     string `json:"traction"`
}

// EmbeddingText builds the canonical text representation used for
// vectorization. Query and stored sides must use the same shape or
// similarity scores drift.
func (i IdeaInput) EmbeddingText() string {
	return fmt.Sprintf("%s: %s. %s. Target: %s", i.Title, i.Summary, i.Description, i.Audience)
}

// Validate checks the minimum fields required for an analysis request.
func (i IdeaInput) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(i.Summary) == "" && strings.TrimSpace(i.Description) == "" {
		return fmt.Errorf("summary or description is required")
	}
	if i.TeamStrength < 0 || i.TeamStrength > 10 {
		return fmt.Errorf("team_strength must be between 0 and 10, got %d", i.TeamStrength)
	}
	return nil
}

// IdeaRecord is a completed evaluation kept for retrieval. Immutable once
// stored; evicted oldest-first when the store is full.
type IdeaRecord struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Description      string    `json:"description"`
	Audience         string    `json:"audience"`
	Domain           string    `json:"domain"`
	Score            int       `json:"score"`
	Verdict          Verdict   `json:"verdict"`
	MarketSize       string    `json:"market_size"`
	TeamStrength     int       `json:"team_strength"`
	Traction         string    `json:"traction"`
	CompetitorsCount int       `json:"competitors_count"`
	StoredAt         time.Time `json:"stored_at"`
}

// EmbeddingText mirrors IdeaInput.EmbeddingText for stored records.
func (r IdeaRecord) EmbeddingText() string {
	return fmt.Sprintf("%s: %s. %s. Target: %s", r.Title, r.Summary, r.Description, r.Audience)
}

// laterStageTractions are the traction labels counted as a working product.
var laterStageTractions = map[string]struct{}{
	"MVP":         {},
	"Early Users": {},
	"Revenue":     {},
}

// HasLaterStageTraction reports whether the record's traction label
// indicates a working product.
func (r IdeaRecord) HasLaterStageTraction() bool {
	_, ok := laterStageTractions[r.Traction]
	return ok
}
