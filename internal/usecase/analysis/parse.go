package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arcline/ideascope/internal/domain"
)

// parseResult extracts the JSON analysis object from a raw completion.
// Providers often wrap the object in markdown code fences or surround it
// with prose; both are stripped before unmarshaling.
func parseResult(raw string) (domain.AnalysisResult, error) {
	cleaned := stripFences(raw)

	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end <= start {
		return domain.AnalysisResult{}, fmt.Errorf("no JSON object in response: %w", domain.ErrMalformedResponse)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &result); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("decode analysis: %v: %w", err, domain.ErrMalformedResponse)
	}

	if _, err := domain.ParseVerdict(result.FinalVerdict); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("verdict %q: %w", result.FinalVerdict, domain.ErrMalformedResponse)
	}

	return result, nil
}

// stripFences removes markdown code fences (``` or ```json) around the body.
func stripFences(s string) string {
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop the language tag line (e.g. "json").
		first := strings.TrimSpace(s[:i])
		if first == "" || !strings.ContainsAny(first, "{}") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
