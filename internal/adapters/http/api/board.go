package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/quickdraw/internal/domain/types"
)

// BoardHandler serves leaderboard reads.
type BoardHandler struct {
	deps         Dependencies
	defaultLimit int
	maxLimit     int
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(deps Dependencies, defaultLimit, maxLimit int) *BoardHandler {
	return &BoardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandleGetBoard handles GET /board?channel_id=X&limit=N requests.
func (h *BoardHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	channelID := strings.TrimSpace(r.URL.Query().Get("channel_id"))
	if channelID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing channel_id"))
		return
	}

	n := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		n = parsed
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
		return
	}

	entries, err := h.deps.TopN(r.Context(), channelID, n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
