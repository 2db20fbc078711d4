// Package server serves variants over HTTP for tooling that cannot run the
// generator locally.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dattu/lab_variants/pkg/assignment"
	"github.com/dattu/lab_variants/pkg/metrics"
	"github.com/dattu/lab_variants/pkg/storage"
	"github.com/dattu/lab_variants/pkg/variant"
)

// Server generates bundles on demand. History is optional.
type Server struct {
	Metrics      *metrics.Metrics
	History      *storage.Batcher
	TemplatePath string
	Now          func() time.Time
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /variants/{id}", s.handleVariant)
	mux.HandleFunc("GET /variants/{id}/assignment", s.handleAssignment)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	return mux
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// generate builds and stamps the bundle for id and records it.
func (s *Server) generate(id string) (*variant.Bundle, error) {
	start := time.Now()
	b, err := variant.Generate(id)
	if s.Metrics != nil {
		s.Metrics.ObserveGenerate(start, err)
	}
	if err != nil {
		return nil, err
	}
	stamp := s.now().UTC()
	b.GeneratedAt = &stamp

	if s.History != nil {
		digest, err := storage.ContentDigest(b)
		if err != nil {
			return nil, err
		}
		s.History.Put(storage.Record{StudentID: id, Digest: digest, GeneratedAt: stamp})
	}
	return b, nil
}

func (s *Server) handleVariant(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b, err := s.generate(id)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("[Variant] %s", id)
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(b)
}

func (s *Server) handleAssignment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tmpl, err := os.ReadFile(s.TemplatePath)
	if errors.Is(err, os.ErrNotExist) {
		err = fmt.Errorf("%w: %s", assignment.ErrMissingTemplate, s.TemplatePath)
	}
	if err != nil {
		if s.Metrics != nil {
			s.Metrics.ObserveAssignment(err)
		}
		writeError(w, err)
		return
	}
	b, err := s.generate(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.ObserveAssignment(nil)
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(assignment.Render(string(tmpl), b)))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, variant.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, assignment.ErrMissingTemplate):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Printf("[Variant] internal error: %v", err)
	}
	http.Error(w, err.Error(), status)
}
