package api

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/trollornot/troll-analyzer/internal/enhance"
)

// maxImageSize caps uploaded screenshots at 10MB.
const maxImageSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type extractResponse struct {
	Success      bool   `json:"success"`
	Conversation string `json:"conversation"`
}

// handleExtract accepts a screenshot upload and returns the conversation
// text transcribed from it.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.enhancer == nil {
		respondError(w, http.StatusServiceUnavailable, "Screenshot extraction is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		respondError(w, http.StatusBadRequest, "Image exceeds the 10MB limit")
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if !allowedImageTypes[mediaType] {
		respondError(w, http.StatusBadRequest, "Unsupported image type, use JPEG, PNG, GIF or WebP")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read image")
		return
	}

	conversation, err := s.enhancer.ExtractConversation(r.Context(), base64.StdEncoding.EncodeToString(data), mediaType)
	if err != nil {
		if errors.Is(err, enhance.ErrNotAConversation) {
			respondError(w, http.StatusUnprocessableEntity, "No conversation found in the image")
			return
		}
		s.logger.Error("screenshot extraction failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "Extraction failed")
		return
	}

	respondJSON(w, http.StatusOK, extractResponse{Success: true, Conversation: conversation})
}
