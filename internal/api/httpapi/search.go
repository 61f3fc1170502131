package httpapi

import (
	"net/http"
	"strconv"

	zlog "github.com/rs/zerolog/log"
)

// handleSearch queries the configured catalog providers.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_query", "query parameter q is required")
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_query", "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := h.searcher.Search(r.Context(), query, limit)
	if err != nil {
		zlog.Warn().Msgf("search failed: query=%s error=%v", query, err)
		writeError(w, http.StatusBadGateway, "search_failed", "all catalog providers failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": toSearchResultDTOs(results),
	})
}
