package httpapi

import (
	"net/http"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/okmt/cliploop/internal/infra/store"
)

type createPostRequest struct {
	Caption string  `json:"caption"`
	Clip    clipDTO `json:"clip"`
}

type updatePostRequest struct {
	Caption *string `json:"caption"`
}

// handleListPosts returns all posts, newest first.
func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"posts": toPostDTOs(h.posts.All()),
	})
}

// handleGetPost returns a single post.
func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "post not found")
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(p))
}

// handleCreatePost publishes a new post. The attached clip must pass the
// acceptance filter chain; a rejection is reported with the filter's code.
func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cl := fromClipDTO(req.Clip)
	if cl.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid_clip", "clip id is required")
		return
	}

	if result := h.filters.Execute(r.Context(), cl); !result.Accepted {
		zlog.Info().Msgf("post rejected by filter: clip=%s code=%s", cl.ID, result.Code)
		writeError(w, http.StatusUnprocessableEntity, result.Code, "clip rejected")
		return
	}

	p := h.posts.Create(req.Caption, cl)
	zlog.Info().Msgf("post created: id=%s clip=%s", p.ID, cl.ID)
	h.notifier.Broadcast("post_created", toPostDTO(p))

	writeJSON(w, http.StatusCreated, toPostDTO(p))
}

// handleUpdatePost updates a post's caption.
func (h *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Caption == nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "caption is required")
		return
	}

	id := r.PathValue("id")
	if err := h.posts.UpdateCaption(id, *req.Caption); err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "post not found")
		return
	}

	p, err := h.posts.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "post not found")
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(p))
}

// handleDeletePost removes a post. The visibility controller forgets the
// item; an already playing loop is left running.
func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.posts.Delete(id); err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post_not_found", "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete post")
		return
	}

	h.visibility.Forget(id)
	h.notifier.Broadcast("post_deleted", map[string]string{"post_id": id})
	writeJSON(w, http.StatusNoContent, nil)
}
