// Package types contains shapes shared between the app service and the
// transport adapters.
package types

// Entry is a rendered leaderboard row returned by read queries.
type Entry struct {
	Rank        int     `json:"rank"`
	DisplayName string  `json:"display_name"`
	AverageMs   float64 `json:"average_ms"`
	BestMs      float64 `json:"best_ms"`
}

// Submission is the payload of one score submission.
type Submission struct {
	Token     string
	AverageMs float64
	BestMs    float64
	Runs      int
}

// Outcome classifies the result of a submission.
type Outcome string

// Submission outcomes. These are the exact codes the HTTP boundary reports.
const (
	OutcomeAccepted       Outcome = "accepted"
	OutcomeInvalidPayload Outcome = "invalid_payload"
	OutcomeInvalidToken   Outcome = "invalid_or_expired_token"
	OutcomeWrongRunLength Outcome = "wrong_run_length"
	OutcomeServerError    Outcome = "server_error"
)
