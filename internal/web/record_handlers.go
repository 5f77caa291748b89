package web

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/bfcwefc/msme-desk/internal/apperr"
	"github.com/bfcwefc/msme-desk/internal/record"
)

// photoField is the multipart field carrying uploaded photos.
const photoField = "photos"

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.records.Repository().List(r.Context(), record.FilterFromQuery(r.URL.Query()))
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, recs, http.StatusOK)
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	g, err := s.stats.Global(r.Context())
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, g, http.StatusOK)
}

func (s *Server) handleExpertStats(w http.ResponseWriter, r *http.Request) {
	e, err := s.stats.Expert(r.Context(), mux.Vars(r)["expertName"])
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, e, http.StatusOK)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.Repository().GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, rec, http.StatusOK)
}

// handleCreateRecord accepts either a multipart form (scalar fields,
// repeatable expertName, optional photo files) or a JSON body.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec record.VisitRecord
	var uploads []record.Upload

	if isMultipart(r) {
		form, err := s.parseMultipart(w, r)
		if err != nil {
			apiFail(w, err)
			return
		}
		if err := recordFromForm(form.Value, &rec); err != nil {
			apiFail(w, err)
			return
		}
		var closeFiles func()
		uploads, closeFiles, err = openUploads(form.File[photoField])
		if err != nil {
			apiFail(w, err)
			return
		}
		defer closeFiles()
	} else if err := decodeJSON(r, &rec); err != nil {
		apiFail(w, err)
		return
	}

	// Server-assigned fields.
	rec.ID = ""
	rec.CreatedAt = time.Time{}

	created, err := s.records.Create(r.Context(), &rec, uploads)
	if err != nil {
		apiFail(w, err)
		return
	}
	s.stats.Invalidate()
	apiJSON(w, created, http.StatusCreated)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var p record.Patch
	if err := decodeJSON(r, &p); err != nil {
		apiFail(w, err)
		return
	}

	rec, err := s.records.Repository().Update(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		apiFail(w, err)
		return
	}
	s.stats.Invalidate()
	apiJSON(w, rec, http.StatusOK)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.records.Repository().Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		apiFail(w, err)
		return
	}
	s.stats.Invalidate()
	apiJSON(w, map[string]string{"message": "MSME deleted successfully"}, http.StatusOK)
}

func (s *Server) handleAddPhotos(w http.ResponseWriter, r *http.Request) {
	var uploads []record.Upload
	if isMultipart(r) {
		form, err := s.parseMultipart(w, r)
		if err != nil {
			apiFail(w, err)
			return
		}
		var closeFiles func()
		uploads, closeFiles, err = openUploads(form.File[photoField])
		if err != nil {
			apiFail(w, err)
			return
		}
		defer closeFiles()
	}

	rec, err := s.records.AddPhotos(r.Context(), mux.Vars(r)["id"], uploads)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, rec, http.StatusOK)
}

func (s *Server) handleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhotoURL string `json:"photoUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apiFail(w, err)
		return
	}

	rec, err := s.records.RemovePhoto(r.Context(), mux.Vars(r)["id"], req.PhotoURL)
	if err != nil {
		apiFail(w, err)
		return
	}
	apiJSON(w, rec, http.StatusOK)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return nil, apperr.Validation("invalid multipart body: %v", err)
	}
	return r.MultipartForm, nil
}

// recordFromForm maps form fields onto a record by their JSON names.
// expertName may repeat; every other field uses its first value.
func recordFromForm(values map[string][]string, rec *record.VisitRecord) error {
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		if len(v) == 0 || k == "id" || k == "createdAt" {
			continue
		}
		if k == "expertName" {
			fields[k] = v
			continue
		}
		fields[k] = v[0]
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding form: %w", err)
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return apperr.Validation("invalid form field: %v", err)
	}
	return nil
}

// openUploads opens every file header. The returned func closes them.
func openUploads(headers []*multipart.FileHeader) ([]record.Upload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			if err := f.Close(); err != nil {
				zap.L().Warn("closing upload", zap.Error(err))
			}
		}
	}

	uploads := make([]record.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening upload %s: %w", h.Filename, err)
		}
		files = append(files, f)
		uploads = append(uploads, record.Upload{Filename: h.Filename, Body: f})
	}
	return uploads, closeAll, nil
}
