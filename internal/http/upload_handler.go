package httpapi

import (
	"errors"
	"net/http"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/service"
)

// multipartOverhead headroom for boundaries and the folder field.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	Base
	uploads *service.UploadService
}

func NewUploadHandler(b Base, uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{Base: b, uploads: uploads}
}

// Upload accepts multipart/form-data with a "file" part and an optional "folder" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, "Upload", domain.NewValidationError("file", "file too large"))
			return
		}
		h.fail(w, r, "Upload", domain.NewValidationError("file", "expected multipart/form-data"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, "Upload", domain.NewValidationError("file", "file is required"))
		return
	}
	defer file.Close()

	stored, err := h.uploads.Upload(r.Context(), service.UploadRequest{
		Folder:      r.FormValue("folder"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		ActorID:     currentUser(r).ID,
	})
	if err != nil {
		h.fail(w, r, "Upload", err)
		return
	}
	h.created(w, stored)
}

func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.Delete(r.Context(), queryTrim(r, "path")); err != nil {
		h.fail(w, r, "DeleteUpload", err)
		return
	}
	h.noContent(w)
}
