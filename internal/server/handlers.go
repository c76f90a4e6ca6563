package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gdalmoro/jobpilot/internal/letter"
	"github.com/gdalmoro/jobpilot/internal/posting"
)

// BrandVoiceRequest represents the request body for POST /memory/brand-voice.
type BrandVoiceRequest struct {
	BrandVoice string `json:"brand_voice" validate:"required"`
}

// BrandVoiceResponse represents the response for GET /memory/brand-voice.
type BrandVoiceResponse struct {
	BrandVoice string `json:"brand_voice"`
	Stored     bool   `json:"stored"`
}

// IndexResumeRequest represents the request body for POST /memory/resume/index.
// Path defaults to the configured resume path.
type IndexResumeRequest struct {
	Path string `json:"path,omitempty"`
}

// IndexResumeResponse represents the response for POST /memory/resume/index.
type IndexResumeResponse struct {
	Chunks   int  `json:"chunks"`
	UpToDate bool `json:"up_to_date"`
}

// ProcessJobRequest represents the request body for POST /process-job.
type ProcessJobRequest struct {
	JobTitle string `json:"job_title" validate:"required"`
	Company  string `json:"company"`
	JobDesc  string `json:"job_desc" validate:"required"`
	JobURL   string `json:"job_url" validate:"omitempty,url"`
}

// ProcessJobURLRequest represents the request body for POST /process-job-from-url.
type ProcessJobURLRequest struct {
	JobURL string `json:"job_url" validate:"required,url"`
}

// handleSetBrandVoice stores the brand voice used for letter drafting.
func (s *Server) handleSetBrandVoice(w http.ResponseWriter, r *http.Request) {
	var req BrandVoiceRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.profile.Upsert(letter.BrandVoiceID, req.BrandVoice, map[string]string{"type": "preference"}); err != nil {
		s.log.Error("failed to store brand voice", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to store brand voice")
		return
	}

	s.jsonResponse(w, http.StatusOK, BrandVoiceResponse{BrandVoice: req.BrandVoice, Stored: true})
}

// handleGetBrandVoice returns the stored brand voice, or the default when
// none is stored.
func (s *Server) handleGetBrandVoice(w http.ResponseWriter, _ *http.Request) {
	stored, found, err := s.profile.Get(letter.BrandVoiceID)
	if err != nil {
		s.log.Error("failed to load brand voice", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load brand voice")
		return
	}

	resp := BrandVoiceResponse{BrandVoice: stored, Stored: found}
	if !found || stored == "" {
		resp.BrandVoice = letter.DefaultBrandVoice
		resp.Stored = false
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleIndexResume chunks and indexes the resume document.
func (s *Server) handleIndexResume(w http.ResponseWriter, r *http.Request) {
	var req IndexResumeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}
	path := req.Path
	if path == "" {
		path = s.cfg.ResumePath
	}

	result, err := s.indexer.Index(path)
	if err != nil {
		s.log.Error("resume indexing failed", zap.String("path", path), zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), "Failed to index resume: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, IndexResumeResponse{
		Chunks:   result.Chunks,
		UpToDate: result.UpToDate,
	})
}

// handleProcessJob runs the pipeline on an already-extracted posting.
func (s *Server) handleProcessJob(w http.ResponseWriter, r *http.Request) {
	var req ProcessJobRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	post := &posting.Posting{
		JobTitle: req.JobTitle,
		Company:  req.Company,
		JobDesc:  req.JobDesc,
		JobURL:   req.JobURL,
	}
	if err := post.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.pipeline.Process(r.Context(), post)
	if err != nil {
		s.log.Error("job processing failed", zap.String("job_title", req.JobTitle), zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), "Job processing failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleProcessJobFromURL acquires the posting from the URL, then runs the
// pipeline on it.
func (s *Server) handleProcessJobFromURL(w http.ResponseWriter, r *http.Request) {
	var req ProcessJobURLRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	report, err := s.pipeline.ProcessURL(r.Context(), req.JobURL)
	if err != nil {
		s.log.Error("job processing from URL failed", zap.String("job_url", req.JobURL), zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), "Job processing failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// decodeAndValidate decodes the JSON body into dst and applies its validation
// tags, writing a 400 and returning false on any failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid field: "+invalid[0].Field())
			return false
		}
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
