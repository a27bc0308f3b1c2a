package handler

import (
	"mime"
	"net/http"
	"strconv"

	"billed/internal/app/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileHandler serves stored receipts. File ids are random, so the URLs handed
// out with the bills are the only way to reach them.
type FileHandler struct {
	billService *service.BillService
	log         *zap.Logger
}

func NewFileHandler(billService *service.BillService, log *zap.Logger) *FileHandler {
	return &FileHandler{billService: billService, log: log}
}

func (h *FileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{fileID}", h.getFile)
}

func (h *FileHandler) getFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.billService.File(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.FileName}))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		h.log.Debug("writing file", zap.String("file_id", file.ID), zap.Error(err))
	}
}
