package httpapi

import (
	"net/http"

	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/domain/clip"
)

type selectRequest struct {
	PostID string   `json:"post_id,omitempty"`
	Clip   *clipDTO `json:"clip,omitempty"`
}

type seekRequest struct {
	PositionMs int64 `json:"position_ms"`
}

type visibilityRequest struct {
	ItemID string  `json:"item_id"`
	Ratio  float64 `json:"ratio"`
	Clip   clipDTO `json:"clip"`
}

// resolveClip resolves the clip referenced by a select/toggle request:
// either a post ID or an inline clip.
func (h *Handler) resolveClip(w http.ResponseWriter, req selectRequest) (clip.Clip, bool) {
	if req.PostID != "" {
		p, err := h.posts.Get(req.PostID)
		if err != nil {
			writeError(w, http.StatusNotFound, "post_not_found", "post not found")
			return clip.Clip{}, false
		}
		return p.Clip, true
	}

	if req.Clip != nil && req.Clip.ID != "" {
		return fromClipDTO(*req.Clip), true
	}

	writeError(w, http.StatusBadRequest, "invalid_body", "post_id or clip is required")
	return clip.Clip{}, false
}

// handleSelect starts looping a clip, replacing the current one.
func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cl, ok := h.resolveClip(w, req)
	if !ok {
		return
	}

	if err := h.player.Select(cl); err != nil {
		zlog.Warn().Msgf("select failed: clip=%s error=%v", cl.ID, err)
		writeError(w, http.StatusUnprocessableEntity, "source_failed", "clip could not be loaded")
		return
	}

	h.notifier.Broadcast("clip_selected", toClipDTO(cl))
	h.writeStatus(w)
}

// handleToggle toggles play/pause for a clip.
func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cl, ok := h.resolveClip(w, req)
	if !ok {
		return
	}

	if err := h.player.Toggle(cl); err != nil {
		zlog.Warn().Msgf("toggle failed: clip=%s error=%v", cl.ID, err)
		writeError(w, http.StatusUnprocessableEntity, "source_failed", "clip could not be loaded")
		return
	}

	h.writeStatus(w)
}

// handlePause pauses playback in place.
func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.player.Pause()
	h.writeStatus(w)
}

// handleStop stops playback and resets the engine.
func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	h.player.Stop()
	h.notifier.Broadcast("stopped", nil)
	h.writeStatus(w)
}

// handleSeek moves the playhead.
func (h *Handler) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PositionMs < 0 {
		writeError(w, http.StatusBadRequest, "invalid_body", "position_ms must be non-negative")
		return
	}

	h.player.Seek(millis(req.PositionMs))
	h.writeStatus(w)
}

// handleVisibility feeds a feed item's visibility-ratio change into the
// auto-play controller.
func (h *Handler) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", "item_id is required")
		return
	}
	if req.Ratio < 0 || req.Ratio > 1 {
		writeError(w, http.StatusBadRequest, "invalid_body", "ratio must be in [0, 1]")
		return
	}

	if err := h.visibility.Observe(req.ItemID, fromClipDTO(req.Clip), req.Ratio); err != nil {
		zlog.Warn().Msgf("visibility observe failed: item=%s error=%v", req.ItemID, err)
		writeError(w, http.StatusUnprocessableEntity, "source_failed", "clip could not be loaded")
		return
	}

	h.writeStatus(w)
}

// handleStatus returns the player readouts.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w)
}

func (h *Handler) writeStatus(w http.ResponseWriter) {
	status := statusDTO{
		State:      h.player.State().String(),
		Paused:     h.player.Paused(),
		ElapsedMs:  h.player.Elapsed().Milliseconds(),
		DurationMs: h.player.Duration().Milliseconds(),
		Progress:   h.player.Progress(),
	}
	if cl, ok := h.player.Current(); ok {
		dto := toClipDTO(cl)
		status.Clip = &dto
	}
	writeJSON(w, http.StatusOK, status)
}
