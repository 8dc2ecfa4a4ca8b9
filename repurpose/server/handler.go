package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"

	"repurpose.znkr.io/repurpose/diff"
	"repurpose.znkr.io/repurpose/highlight"
	"repurpose.znkr.io/repurpose/markdown"
	"repurpose.znkr.io/repurpose/rewrite"
	"repurpose.znkr.io/repurpose/tokens"
)

const maxBodySize = 1 << 20

type handler struct {
	state    atomic.Pointer[State]
	mux      *http.ServeMux
	renderer *renderer
}

func newHandler(state *State) (*handler, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	h := &handler{
		mux:      http.NewServeMux(),
		renderer: r,
	}
	h.state.Store(state)

	h.mux.HandleFunc("GET /{$}", h.index)
	h.mux.HandleFunc("POST /rewrite", h.rewrite)
	h.mux.HandleFunc("POST /download", h.download)
	h.mux.HandleFunc("POST /api/diff", h.diff)
	h.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	return h, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodySize)
	h.mux.ServeHTTP(w, req)
}

func (h *handler) index(w http.ResponseWriter, req *http.Request) {
	st := h.state.Load()
	p := &page{
		Title:   "Rewrite",
		Catalog: st.Catalog,
		Form:    rewrite.Request{Expand: true, Temperature: rewrite.DefaultTemperature},
	}
	if st.Completer == nil {
		p.Error = rewrite.ErrNoAPIKey.Error()
	}
	h.page(w, req, http.StatusOK, "index", p)
}

func (h *handler) rewrite(w http.ResponseWriter, req *http.Request) {
	st := h.state.Load()
	form, err := parseRequest(req, st)
	p := &page{
		Title:   "Rewrite",
		Catalog: st.Catalog,
		Form:    form,
	}
	if err != nil {
		p.Error = err.Error()
		h.page(w, req, http.StatusBadRequest, "index", p)
		return
	}
	if st.Completer == nil {
		p.Error = rewrite.ErrNoAPIKey.Error()
		h.page(w, req, http.StatusServiceUnavailable, "index", p)
		return
	}

	s := &rewrite.Service{Catalog: st.Catalog, Completer: st.Completer}
	res, err := s.Rewrite(req.Context(), form)
	if err != nil {
		p.Error = err.Error()
		status := http.StatusBadGateway
		if errors.Is(err, rewrite.ErrEmptyText) || errors.Is(err, rewrite.ErrUnknownPurpose) || errors.Is(err, rewrite.ErrUnknownPreset) {
			status = http.StatusBadRequest
		} else {
			log.Printf("failed to rewrite: %v", err)
		}
		h.page(w, req, status, "index", p)
		return
	}

	p.Title = "Result"
	p.Result = res
	p.Diff = highlight.HTML(res.Spans)
	if res.Expanded != "" {
		body, contents, err := markdown.Render([]byte(res.Expanded))
		if err != nil {
			h.fail(w, req, err)
			return
		}
		p.Expanded = template.HTML(body)
		p.Contents = template.HTML(contents)
	}
	if p.Raw, err = highlight.JSON(res.Raw); err != nil {
		h.fail(w, req, err)
		return
	}
	h.page(w, req, http.StatusOK, "result", p)
}

// parseRequest reads the rewrite form. The major purpose can be omitted, it's derived from the
// minor purpose.
func parseRequest(req *http.Request, st *State) (rewrite.Request, error) {
	if err := req.ParseForm(); err != nil {
		return rewrite.Request{}, fmt.Errorf("parsing form: %v", err)
	}
	f := req.PostForm
	r := rewrite.Request{
		Text:        f.Get("text"),
		Major:       f.Get("major"),
		Minor:       f.Get("minor"),
		Tone:        f.Get("tone"),
		Style:       f.Get("style"),
		Audience:    f.Get("audience"),
		Persona:     f.Get("persona"),
		Length:      f.Get("length"),
		Intensity:   f.Get("intensity"),
		Expand:      f.Get("expand") != "",
		Model:       f.Get("model"),
		Temperature: rewrite.DefaultTemperature,
	}
	if r.Major == "" {
		r.Major = st.Catalog.MajorOf(r.Minor)
	}
	if v := f.Get("temperature"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 || t > 1 {
			return r, fmt.Errorf("invalid temperature %q, must be between 0 and 1", v)
		}
		r.Temperature = t
	}
	return r, nil
}

var downloads = map[string]struct {
	filename, mimeType string
}{
	"txt": {"result.txt", "text/plain; charset=utf-8"},
	"md":  {"result.md", "text/markdown; charset=utf-8"},
}

func (h *handler) download(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := req.PostForm.Get("format")
	d, ok := downloads[format]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", d.mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(req.PostForm.Get("text"))); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

type diffRequest struct {
	Original  string `json:"original"`
	Revised   string `json:"revised"`
	Tokenizer string `json:"tokenizer,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
}

type diffResponse struct {
	Spans      []highlight.Span `json:"spans"`
	Opcodes    []diff.Opcode    `json:"opcodes"`
	HTML       template.HTML    `json:"html"`
	Similarity float64          `json:"similarity"`
}

func (h *handler) diff(w http.ResponseWriter, req *http.Request) {
	var in diffRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		h.json(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("decoding request: %v", err)})
		return
	}
	tokenize, err := tokens.ByName(in.Tokenizer)
	if err != nil {
		h.json(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	algorithm, err := diff.ByName(in.Algorithm)
	if err != nil {
		h.json(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	c := highlight.Compare(in.Original, in.Revised,
		highlight.WithTokenizer(tokenize),
		highlight.WithDiffOptions(algorithm),
	)
	out := diffResponse{
		Spans:      c.Spans,
		Opcodes:    c.Opcodes,
		HTML:       highlight.HTML(c.Spans),
		Similarity: c.Similarity(),
	}
	if out.Spans == nil {
		out.Spans = []highlight.Span{}
		out.Opcodes = []diff.Opcode{}
	}
	h.json(w, http.StatusOK, out)
}

func (h *handler) json(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Printf("failed to encode response: %v", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (h *handler) page(w http.ResponseWriter, req *http.Request, status int, name string, p *page) {
	b, err := h.renderer.render(name, p)
	if err != nil {
		h.fail(w, req, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (h *handler) fail(w http.ResponseWriter, req *http.Request, err error) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(err.Error()))
	log.Printf("failed to serve %v: %v", req.URL.EscapedPath(), err)
}
