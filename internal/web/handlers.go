package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mkarlsen/convertd/internal/core"
	"github.com/mkarlsen/convertd/internal/logging"
)

// handleHealth reports service liveness and whether history is enabled.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"history": s.service.HistoryEnabled(),
	})
}

// handleConvert accepts a multipart upload ("file", optional "delimiter"),
// converts it to a spreadsheet archive and streams the archive back as an
// attachment. The uploaded file and the archive are staged in the work
// directory and removed when the response is done.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Convert.MaxFileSize)

	if err := r.ParseMultipartForm(4 << 20); err != nil {
		s.respondError(w, r, fmt.Errorf("parse upload: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	delimiter := r.FormValue("delimiter")
	if len(delimiter) > 8 {
		s.respondError(w, r, fmt.Errorf("delimiter too long"), http.StatusBadRequest)
		return
	}

	inputPath, err := s.stageUpload(file, header.Filename)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	defer os.Remove(inputPath)

	outputPath := inputPath + ".xlsx"
	defer os.Remove(outputPath)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Convert.Timeout)
	defer cancel()

	result, err := s.service.Convert(ctx, core.ConvertRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Delimiter:  delimiter,
	})
	if err != nil {
		s.respondError(w, r, err, convertStatus(err))
		return
	}

	logging.FromContext(r.Context()).Info("conversion complete",
		"file", header.Filename,
		"rows", result.Rows,
		"cells", result.Cells,
		"duration_ms", result.Duration.Milliseconds(),
	)

	attachment := attachmentName(header.Filename)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachment+`"`)
	http.ServeFile(w, r, outputPath)
}

// handleHistory lists recent conversions as JSON, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(w, r, fmt.Errorf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.service.ListHistory(r.Context(), limit)
	if err != nil {
		if errors.Is(err, core.ErrHistoryDisabled) {
			s.respondError(w, r, err, http.StatusNotImplemented)
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []core.HistoryEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// handleClearHistory deletes all history records.
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.service.ClearHistory(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrHistoryDisabled) {
			s.respondError(w, r, err, http.StatusNotImplemented)
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// stageUpload copies the uploaded stream to the work directory and returns
// the staged path. A sanitized form of the client file name is kept in the
// temp name to make stray files identifiable.
func (s *Server) stageUpload(src io.Reader, clientName string) (string, error) {
	dir := s.cfg.Convert.WorkDir
	if dir == "" {
		dir = os.TempDir()
	}

	tmp, err := os.CreateTemp(dir, "upload-*-"+sanitizeName(clientName))
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return tmp.Name(), nil
}

// sanitizeName strips path components and characters unsafe for temp file
// names from a client-supplied file name.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		return "input.txt"
	}
	return name
}

// attachmentName swaps the upload's extension for .xlsx.
func attachmentName(clientName string) string {
	base := sanitizeName(clientName)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".xlsx"
}

// convertStatus picks an HTTP status for a conversion error.
func convertStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrTooManyConversions):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		var srcErr *core.SourceError
		if errors.As(err, &srcErr) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	}
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
