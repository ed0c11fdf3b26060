package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/webtrailhq/webtrail/pkg/ingest"
	"github.com/webtrailhq/webtrail/pkg/types"
)

// maxUploadSize bounds spreadsheet uploads.
const maxUploadSize = 10 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConfig reports the effective non-secret configuration.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	_, name := s.activeProvider()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"provider": name,
		"model":    s.cfg.LLM.Model(),
		"browser": map[string]interface{}{
			"engine":         s.cfg.Browser.Engine,
			"headless":       s.cfg.Browser.Headless,
			"max_iterations": s.cfg.Browser.MaxIterations,
		},
		"validation": map[string]interface{}{
			"max_length":      s.cfg.Validation.MaxLength,
			"check_injection": s.cfg.Validation.CheckInjection,
			"strict":          s.cfg.Validation.Strict,
		},
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	provider, name := s.activeProvider()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"active":       name,
		"active_model": provider.GetModel(),
		"available": []map[string]string{
			{"name": "openai", "model": s.cfg.LLM.OpenAIModel},
			{"name": "groq", "model": s.cfg.LLM.GroqModel},
		},
	})
}

func (s *Server) handleChangeProvider(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := parseJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Provider != "openai" && req.Provider != "groq" {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown provider %q, expected 'openai' or 'groq'", req.Provider))
		return
	}

	if err := s.switchProvider(req.Provider); err != nil {
		respondDomainError(w, err)
		return
	}

	provider, name := s.activeProvider()
	respondJSON(w, http.StatusOK, map[string]string{
		"provider": name,
		"model":    provider.GetModel(),
	})
}

func (s *Server) handleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	var tc types.TestCase
	if err := parseJSON(r, &tc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.newGenerator().GeneratePrompt(r.Context(), tc)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TestCases []types.TestCase `json:"test_cases"`
	}
	if err := parseJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.TestCases) == 0 {
		respondError(w, http.StatusBadRequest, "test_cases must not be empty")
		return
	}

	prompts, errs := s.newGenerator().GenerateBatch(r.Context(), req.TestCases)

	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"prompts": prompts,
		"errors":  messages,
	})
}

// handleUploadExcel stores an uploaded workbook and reports the test
// cases found in it.
func (s *Server) handleUploadExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing form file 'file'")
		return
	}
	defer file.Close()

	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	path := filepath.Join(s.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cannot store uploaded file")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		respondError(w, http.StatusInternalServerError, "cannot store uploaded file")
		return
	}
	dst.Close()

	cases, err := ingest.ReadTestCases(path)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"path":       path,
		"test_cases": cases,
		"count":      len(cases),
	})
}

func (s *Server) handleReadExcel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path   string `json:"path"`
		TestID string `json:"test_id,omitempty"`
	}
	if err := parseJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		respondError(w, http.StatusBadRequest, "path is required")
		return
	}

	if req.TestID != "" {
		tc, err := ingest.GetTestCaseByID(req.Path, req.TestID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, tc)
		return
	}

	cases, err := ingest.ReadTestCases(req.Path)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"test_cases": cases,
		"count":      len(cases),
	})
}

// handleExecuteRun executes one test instruction synchronously and
// returns the outcome record. Persistence failures never fail the run.
func (s *Server) handleExecuteRun(w http.ResponseWriter, r *http.Request) {
	var instruction types.TestInstruction
	if err := parseJSON(r, &instruction); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	outcome, err := s.newCoordinator().Execute(r.Context(), instruction)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var recordID uint
	if s.outcomes != nil {
		recordID, err = s.outcomes.Save(r.Context(), outcome)
		if err != nil && s.logger != nil {
			s.logger.Errorf("failed to persist outcome for %s: %v", outcome.TestID, err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"record_id": recordID,
		"outcome":   outcome,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.outcomes == nil {
		respondError(w, http.StatusServiceUnavailable, "outcome store is not configured")
		return
	}

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	outcome, err := s.outcomes.Get(r.Context(), uint(id))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}
