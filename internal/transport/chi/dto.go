package chi

import (
	"time"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/usecase/retrieval"
	"github.com/arcline/ideascope/internal/vectorstore"
)

// Error response codes.
const (
	codeBadRequest           = "bad_request"
	codeValidationFailed     = "validation_failed"
	codeUnauthorized         = "unauthorized"
	codeProvidersUnavailable = "providers_unavailable"
	codeUpstreamMalformed    = "upstream_malformed"
	codeQuotaExceeded        = "quota_exceeded"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type similarResponse struct {
	HasSimilar bool        `json:"has_similar"`
	Matches    []matchItem `json:"matches"`
	Patterns   []string    `json:"patterns"`
	Insights   string      `json:"insights"`
	StoreSize  int         `json:"store_size"`
}

type matchItem struct {
	Record     domain.IdeaRecord `json:"record"`
	Similarity float64           `json:"similarity"`
}

type statsResponse struct {
	TotalAnalyses       int            `json:"total_analyses"`
	AverageScore        int            `json:"average_score"`
	VerdictDistribution map[string]int `json:"verdict_distribution,omitempty"`
	Scheme              string         `json:"scheme,omitempty"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Providers int               `json:"providers"`
	StoreSize int               `json:"store_size"`
	Version   string            `json:"version"`
	Time      time.Time         `json:"time"`
}

func similarToDTO(c retrieval.Context) similarResponse {
	items := make([]matchItem, len(c.Matches))
	for i, m := range c.Matches {
		items[i] = matchItem{Record: m.Record, Similarity: m.Similarity}
	}
	return similarResponse{
		HasSimilar: c.HasSimilar,
		Matches:    items,
		Patterns:   c.Patterns,
		Insights:   c.Insights,
		StoreSize:  c.StoreSize,
	}
}

func statsToDTO(s vectorstore.Stats) statsResponse {
	return statsResponse{
		TotalAnalyses:       s.TotalAnalyses,
		AverageScore:        s.AverageScore,
		VerdictDistribution: s.VerdictDistribution,
		Scheme:              string(s.Scheme),
	}
}
