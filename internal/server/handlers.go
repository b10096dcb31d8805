package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"adapter": s.svc.Name(),
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "adapter": s.svc.Name()})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.FeatureSet())
}

func (s *Server) handleNativeTypes(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]string, len(s.svc.NativeTypes()))
	for kind, nt := range s.svc.NativeTypes() {
		out[string(kind)] = nt.SQL()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := s.svc.Columns(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleClearColumns(w http.ResponseWriter, r *http.Request) {
	s.svc.ClearSchemaCache(chi.URLParam(r, "table"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.reader.ListTables(r.Context(), chi.URLParam(r, "schema"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	objs, err := s.snapshots.List(r.Context(), chi.URLParam(r, "schema"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, objs)
}

func (s *Server) handleTakeSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := s.reader.InspectSchema(r.Context(), chi.URLParam(r, "schema"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	obj, err := s.snapshots.Save(r.Context(), info)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     info.ID,
		"key":    obj.Key,
		"tables": len(info.Tables),
	})
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := s.snapshots.Latest(r.Context(), chi.URLParam(r, "schema"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// statusFor maps an error kind to the HTTP status reported to clients.
func statusFor(err error) int {
	switch {
	case errs.IsNotFound(err), errs.IsSchemaLookup(err):
		return http.StatusNotFound
	case errs.IsInvalidInput(err):
		return http.StatusBadRequest
	case errs.IsTypeDecode(err):
		return http.StatusUnprocessableEntity
	case errs.IsUnsupported(err):
		return http.StatusNotImplemented
	case errs.IsPermissionDenied(err):
		return http.StatusForbidden
	case errs.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errs.IsConnectionFailed(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]any{"path": r.URL.Path})
	}

	resp := errorResponse{Error: err.Error(), Kind: errs.ErrKindUnknown.String()}
	var e *errs.Error
	if errors.As(err, &e) {
		resp.Kind = e.Kind.String()
		resp.Code = e.Code
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
