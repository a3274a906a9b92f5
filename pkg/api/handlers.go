package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/wiregraph/pkg/buildinfo"
	"github.com/matzehuels/wiregraph/pkg/errors"
	"github.com/matzehuels/wiregraph/pkg/pipeline"
	"github.com/matzehuels/wiregraph/pkg/render"
	"github.com/matzehuels/wiregraph/pkg/storage"
)

// Response headers set by the nets routes.
const (
	HeaderHash  = "X-Snapshot-Hash"
	HeaderCache = "X-Cache"
)

var contentTypes = map[string]string{
	pipeline.FormatText:     "text/plain; charset=utf-8",
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatSnapshot: "application/json",
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatDOT:      "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatGraphviz: "image/svg+xml",
	pipeline.FormatPNG:      "image/png",
	pipeline.FormatPDF:      "application/pdf",
}

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

type documentList struct {
	Documents []storage.Document `json:"documents"`
}

type healthBody struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Build: buildinfo.Get()})
}

// cleanup handles POST /v1/cleanup.
func (s *Server) cleanup(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	res, err := s.runner.Execute(r.Context(), body, pipeline.Options{
		Cleanup: true,
		Formats: []string{pipeline.FormatSnapshot},
		Logger:  s.logger,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set(HeaderHash, res.Hash)
	writeBytes(w, http.StatusOK, contentTypes[pipeline.FormatSnapshot], res.Artifacts[pipeline.FormatSnapshot])
}

// nets handles POST /v1/nets.
func (s *Server) nets(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	s.runNets(w, r, body)
}

func (s *Server) runNets(w http.ResponseWriter, r *http.Request, snapshot []byte) {
	opts, err := netsOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Logger = s.logger

	res, err := s.runner.Execute(r.Context(), snapshot, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set(HeaderHash, res.Hash)
	if res.CacheInfo.RenderHit {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
	writeBytes(w, http.StatusOK, contentTypes[format], res.Artifacts[format])
}

// netsOptions reads pipeline options from the query string. The format
// defaults to json.
func netsOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Formats: []string{pipeline.FormatJSON}}
	if f := q.Get("format"); f != "" {
		if err := pipeline.ValidateFormats([]string{f}); err != nil {
			return opts, err
		}
		opts.Formats = []string{f}
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"node_only", &opts.NodeOnly},
		{"cleanup", &opts.Cleanup},
		{"labels", &opts.Labels},
		{"refresh", &opts.Refresh},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s: expected a boolean, got %q", f.name, v)
		}
		*f.dst = b
	}

	if v := q.Get("scale"); v != "" {
		k, err := strconv.ParseFloat(v, 64)
		if err != nil || k <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "scale: expected a positive number, got %q", v)
		}
		opts.Scale = k
	}
	return opts, nil
}

// listDocuments handles GET /v1/documents.
func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, storageError(err, ""))
		return
	}
	if docs == nil {
		docs = []storage.Document{}
	}
	writeJSON(w, http.StatusOK, documentList{Documents: docs})
}

// createDocument handles POST /v1/documents.
func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := validateSnapshot(body); err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.store.Create(r.Context(), documentName(r, ""), body)
	if err != nil {
		s.fail(w, r, storageError(err, ""))
		return
	}
	s.logger.Info("document created", "id", doc.ID, "name", doc.Name)
	w.Header().Set("Location", "/v1/documents/"+doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

// getDocument handles GET /v1/documents/{id}.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	writeBytes(w, http.StatusOK, "application/json", doc.Snapshot)
}

// putDocument handles PUT /v1/documents/{id}. A missing document is
// created under the given id; an existing one keeps its name unless a new
// one is passed.
func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDocumentID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := validateSnapshot(body); err != nil {
		s.fail(w, r, err)
		return
	}

	status := http.StatusOK
	existing, err := s.store.Get(r.Context(), id)
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		existing, status = nil, http.StatusCreated
	case err != nil:
		s.fail(w, r, storageError(err, id))
		return
	}

	doc := &storage.Document{ID: id, Snapshot: body}
	if existing != nil {
		doc.Name = existing.Name
	}
	doc.Name = documentName(r, doc.Name)

	if err := s.store.Put(r.Context(), doc); err != nil {
		s.fail(w, r, storageError(err, id))
		return
	}
	s.logger.Info("document saved", "id", doc.ID, "name", doc.Name, "created", status == http.StatusCreated)
	writeJSON(w, status, doc)
}

// deleteDocument handles DELETE /v1/documents/{id}.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDocumentID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, storageError(err, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// documentNets handles GET /v1/documents/{id}/nets.
func (s *Server) documentNets(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	s.runNets(w, r, doc.Snapshot)
}

func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (*storage.Document, bool) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDocumentID(id); err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, storageError(err, id))
		return nil, false
	}
	return doc, true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
		} else {
			s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		}
		return nil, false
	}
	if len(body) == 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "request body is empty"))
		return nil, false
	}
	return body, true
}

// validateSnapshot rejects bodies that don't decode as a snapshot, so that
// the store only ever holds readable documents.
func validateSnapshot(body []byte) error {
	opts := pipeline.Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	_, err := pipeline.Parse(body, opts)
	return err
}

func documentName(r *http.Request, fallback string) string {
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		return name
	}
	if fallback != "" {
		return fallback
	}
	return "untitled"
}

// storageError attaches an error code to failures of the document store.
func storageError(err error, id string) error {
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return errors.Wrap(errors.ErrCodeDocumentNotFound, err, "document %s not found", id)
	case stderrors.Is(err, storage.ErrInvalidID):
		return errors.Wrap(errors.ErrCodeInvalidID, err, "invalid document id %q", id)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "document store timed out")
	default:
		return errors.Wrap(errors.ErrCodeStorage, err, "document store")
	}
}

// fail writes err as a JSON error body. Errors without a code are
// classified here before the status is chosen.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.GetCode(err) != "":
	case stderrors.Is(err, render.ErrNoConverter):
		err = errors.Wrap(errors.ErrCodeUnsupported, err, "format not available on this server")
	case stderrors.Is(err, context.DeadlineExceeded):
		err = errors.Wrap(errors.ErrCodeTimeout, err, "request timed out")
	default:
		err = errors.Wrap(errors.ErrCodeInternal, err, "%s", err.Error())
	}

	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	var body errorBody
	body.Error.Code = errors.GetCode(err)
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeBytes(w, status, "application/json", append(data, '\n'))
}

func writeBytes(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
