package httpapi

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

var allowedCoverExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// handleUploadCover attaches an uploaded cover image to a post. The file is
// stored under the uploads directory with a generated name; the original
// filename only contributes its extension.
func (h *Handler) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if _, err := h.posts.Get(postID); err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "post not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large", "cover image exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "multipart field cover is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedCoverExtensions[ext] {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_format", "cover must be jpg, png or webp")
		return
	}

	path, err := h.saveCover(file, ext)
	if err != nil {
		zlog.Error().Msgf("failed to save cover: post=%s error=%v", postID, err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to save cover image")
		return
	}

	if err := h.posts.SetCover(postID, path); err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "post not found")
		return
	}

	p, err := h.posts.Get(postID)
	if err != nil {
		writeError(w, http.StatusNotFound, "post_not_found", "post not found")
		return
	}

	zlog.Info().Msgf("cover uploaded: post=%s path=%s", postID, path)
	writeJSON(w, http.StatusOK, toPostDTO(p))
}

func (h *Handler) saveCover(src io.Reader, ext string) (string, error) {
	if err := os.MkdirAll(h.uploadsDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create uploads directory")
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.uploadsDir, name))
	if err != nil {
		return "", errors.Wrap(err, "failed to create cover file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "failed to write cover file")
	}

	return "/uploads/" + name, nil
}
