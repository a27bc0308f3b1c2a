package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"billed/internal/common"
	"billed/internal/domain/model"
)

// parseMultipart limits the request body to maxBytes and parses the form.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("upload exceeds %d bytes: %w", maxBytes, common.ErrValidation)
		}
		return fmt.Errorf("invalid multipart form: %w", common.ErrBadRequest)
	}
	return nil
}

// formFile reads the uploaded file of a parsed multipart form. It returns
// common.ErrFileRequired when the field is absent.
func formFile(r *http.Request, field string) (model.FileAttachment, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return model.FileAttachment{}, common.ErrFileRequired
	}
	if err != nil {
		return model.FileAttachment{}, fmt.Errorf("reading %s: %w", field, common.ErrBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return model.FileAttachment{}, fmt.Errorf("reading %s: %w", header.Filename, err)
	}
	return model.FileAttachment{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
