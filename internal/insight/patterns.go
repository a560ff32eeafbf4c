// Package insight derives human-readable observations from ranked
// similarity matches. Everything here is pure: no I/O, no failure modes.
package insight

import (
	"fmt"

	"github.com/arcline/ideascope/internal/domain"
)

// Team strength thresholds for qualitative remarks.
const (
	strongTeamThreshold = 7
	weakTeamThreshold   = 4
)

// Patterns extracts statistical observations from similar ideas.
// Empty input yields an empty list.
func Patterns(matches []domain.SimilarityMatch) []string {
	if len(matches) == 0 {
		return nil
	}

	var patterns []string

	avgScore := meanScore(matches)
	patterns = append(patterns, fmt.Sprintf("Similar ideas averaged %d/100 score", round(avgScore)))

	patterns = append(patterns,
		fmt.Sprintf("Most similar ideas were rated as %q", modalVerdict(matches)))

	working := 0
	for _, m := range matches {
		if m.Record.HasLaterStageTraction() {
			working++
		}
	}
	if working > 0 {
		patterns = append(patterns,
			fmt.Sprintf("%d/%d similar ideas had working products", working, len(matches)))
	}

	avgTeam := meanTeamStrength(matches)
	switch {
	case avgTeam >= strongTeamThreshold:
		patterns = append(patterns,
			fmt.Sprintf("Similar ideas had strong teams (avg %.1f/10)", avgTeam))
	case avgTeam <= weakTeamThreshold:
		patterns = append(patterns,
			fmt.Sprintf("Similar ideas had weaker teams (avg %.1f/10) - consider strengthening your team", avgTeam))
	}

	return patterns
}

// Summary builds an aggregate narrative over the matches. Empty input
// yields a fixed "no similar ideas" sentence.
func Summary(matches []domain.SimilarityMatch) string {
	if len(matches) == 0 {
		return "This is a unique concept - no similar ideas found in our database yet."
	}

	avgScore := meanScore(matches)
	highScorers := 0
	for _, m := range matches {
		if m.Record.Score >= 70 {
			highScorers++
		}
	}

	s := fmt.Sprintf("We've analyzed %d similar ideas. ", len(matches))

	switch {
	case avgScore >= 70:
		s += fmt.Sprintf("This is a promising space - similar ideas averaged %d/100. ", round(avgScore))
	case avgScore < 50:
		s += fmt.Sprintf("This space is challenging - similar ideas averaged only %d/100. "+
			"Consider what makes your approach different. ", round(avgScore))
	default:
		s += fmt.Sprintf("This space shows moderate potential - similar ideas averaged %d/100. ", round(avgScore))
	}

	if highScorers > 0 {
		s += fmt.Sprintf("%d out of %d achieved strong scores (70+). ", highScorers, len(matches))
	}

	top := matches[0]
	s += fmt.Sprintf("Most similar: %q (%d/100, %d%% match).",
		top.Record.Title, top.Record.Score, round(top.Similarity*100))

	return s
}

// modalVerdict returns the most frequent verdict; ties break toward the
// first-encountered verdict in match order.
func modalVerdict(matches []domain.SimilarityMatch) domain.Verdict {
	counts := make(map[domain.Verdict]int)
	var order []domain.Verdict
	for _, m := range matches {
		if counts[m.Record.Verdict] == 0 {
			order = append(order, m.Record.Verdict)
		}
		counts[m.Record.Verdict]++
	}

	var best domain.Verdict
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

func meanScore(matches []domain.SimilarityMatch) float64 {
	var sum float64
	for _, m := range matches {
		sum += float64(m.Record.Score)
	}
	return sum / float64(len(matches))
}

func meanTeamStrength(matches []domain.SimilarityMatch) float64 {
	var sum float64
	for _, m := range matches {
		ts := m.Record.TeamStrength
		if ts == 0 {
			ts = 5 // unreported teams count as average
		}
		sum += float64(ts)
	}
	return sum / float64(len(matches))
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
