package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"retagger/internal/catalog"
	"retagger/internal/config"
	"retagger/internal/core/library"
	"retagger/internal/tags"
)

type pathRequest struct {
	Path string `json:"path"`
}

type directoryRequest struct {
	Directory string `json:"directory"`
}

type selectRequest struct {
	Path string `json:"path"`
	ID   string `json:"id"`
}

type tagsRequest struct {
	Path string       `json:"path"`
	Tags *tags.Record `json:"tags"`
}

type configValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeFailure maps an operation error to a status code.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, library.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, library.ErrDuplicate),
		errors.Is(err, library.ErrStale):
		status = http.StatusConflict
	case errors.Is(err, library.ErrNotDirectory),
		errors.Is(err, config.ErrUnknownOption):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	writeError(w, status, err.Error())
}

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return false
	}
	return true
}

func (s *Server) decodePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req pathRequest
	if !decode(w, r, &req) {
		return "", false
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path_required")
		return "", false
	}
	return req.Path, true
}

func (s *Server) writeTrack(w http.ResponseWriter, path string) {
	t, ok := s.tagger.Collection().Get(path)
	if !ok {
		writeError(w, http.StatusNotFound, library.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tagger.Collection().List())
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path_required")
		return
	}
	s.writeTrack(w, path)
}

func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	path, ok := s.decodePath(w, r)
	if !ok {
		return
	}
	if err := s.tagger.Collection().Add(path); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeTrack(w, path)
}

func (s *Server) handleInsertTrack(w http.ResponseWriter, r *http.Request) {
	path, ok := s.decodePath(w, r)
	if !ok {
		return
	}
	if err := s.tagger.Collection().Insert(path); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeTrack(w, path)
}

func (s *Server) handleReloadTrack(w http.ResponseWriter, r *http.Request) {
	path, ok := s.decodePath(w, r)
	if !ok {
		return
	}
	t, err := s.tagger.Reload(path)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleRemoveTrack(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path_required")
		return
	}
	if err := s.tagger.Collection().Remove(path); err != nil {
		s.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearTracks(w http.ResponseWriter, r *http.Request) {
	s.tagger.Collection().Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadDirectory(w http.ResponseWriter, r *http.Request) {
	var req directoryRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Directory == "" {
		writeError(w, http.StatusBadRequest, "directory_required")
		return
	}
	n, err := s.tagger.Collection().LoadDirectory(req.Directory)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"loaded": n,
		"tracks": s.tagger.Collection().List(),
	})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	path, ok := s.decodePath(w, r)
	if !ok {
		return
	}
	t, err := s.tagger.Enrich(r.Context(), path)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" || req.ID == "" {
		writeError(w, http.StatusBadRequest, "path_and_id_required")
		return
	}
	t, err := s.tagger.SelectCandidate(r.Context(), req.Path, catalog.ID(req.ID))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTags(w http.ResponseWriter, r *http.Request) {
	var req tagsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" || req.Tags == nil {
		writeError(w, http.StatusBadRequest, "path_and_tags_required")
		return
	}
	t, err := s.tagger.UpdateTags(req.Path, *req.Tags)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleSave writes tags_to_save, or the record in the body when given.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req tagsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path_required")
		return
	}
	t, err := s.tagger.Save(r.Context(), req.Path, req.Tags)
	if t == nil && err != nil {
		s.writeFailure(w, err)
		return
	}
	resp := map[string]any{"track": t}
	if err != nil {
		// Saved but not moved.
		resp["warning"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.tagger.Config()
	values := make([]configValue, 0, len(config.OptionNames()))
	for _, name := range config.OptionNames() {
		v, _ := cfg.Get(name)
		values = append(values, configValue{Name: name, Value: v})
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	v, err := s.tagger.Config().Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, configValue{Name: name, Value: v})
}

// handleSetConfig never edits the config in use: running operations keep
// the copy they loaded and later ones see the published clone.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req configValue
	if !decode(w, r, &req) {
		return
	}

	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	next := s.tagger.Config().Clone()
	if err := next.Set(name, req.Value); err != nil {
		if errors.Is(err, config.ErrUnknownOption) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.configPath != "" {
		if err := config.SaveConfig(s.configPath, next); err != nil {
			s.writeFailure(w, err)
			return
		}
	}
	s.tagger.SetConfig(next)
	v, _ := next.Get(name)
	writeJSON(w, http.StatusOK, configValue{Name: name, Value: v})
}
