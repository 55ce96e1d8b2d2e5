package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/quickdraw/internal/domain/types"
)

// SubmitHandler handles score submissions.
type SubmitHandler struct {
	deps Dependencies
}

// NewSubmitHandler creates a new submit handler.
func NewSubmitHandler(deps Dependencies) *SubmitHandler {
	return &SubmitHandler{deps: deps}
}

// submitRequest mirrors the submission payload. Pointer fields distinguish
// "absent" from zero; a non-numeric value fails JSON decoding outright.
type submitRequest struct {
	Token     *string  `json:"token"`
	AverageMs *float64 `json:"average_ms"`
	BestMs    *float64 `json:"best_ms"`
	Runs      *float64 `json:"runs"`
}

func (r submitRequest) validate() error {
	switch {
	case r.Token == nil || strings.TrimSpace(*r.Token) == "":
		return errors.New("missing token")
	case r.AverageMs == nil:
		return errors.New("missing average_ms")
	case r.BestMs == nil:
		return errors.New("missing best_ms")
	case r.Runs == nil:
		return errors.New("missing runs")
	case *r.Runs != float64(int(*r.Runs)):
		return errors.New("runs must be an integer")
	}
	return nil
}

// HandleSubmit handles POST /submit requests.
func (h *SubmitHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(types.OutcomeInvalidPayload), err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, string(types.OutcomeInvalidPayload), err)
		return
	}

	outcome := h.deps.Submit(r.Context(), types.Submission{
		Token:     *req.Token,
		AverageMs: *req.AverageMs,
		BestMs:    *req.BestMs,
		Runs:      int(*req.Runs),
	})

	switch outcome {
	case types.OutcomeAccepted:
		writeJSON(w, http.StatusAccepted, statusResponse{Status: string(outcome)})
	case types.OutcomeInvalidPayload:
		writeError(w, http.StatusBadRequest, string(outcome), nil)
	case types.OutcomeInvalidToken:
		writeError(w, http.StatusUnauthorized, string(outcome), nil)
	case types.OutcomeWrongRunLength:
		writeError(w, http.StatusUnprocessableEntity, string(outcome), nil)
	default:
		writeError(w, http.StatusInternalServerError, string(types.OutcomeServerError), nil)
	}
}
