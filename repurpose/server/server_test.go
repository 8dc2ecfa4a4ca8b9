package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"repurpose.znkr.io/repurpose/diff"
	"repurpose.znkr.io/repurpose/highlight"
	"repurpose.znkr.io/repurpose/purpose"
	"repurpose.znkr.io/repurpose/rewrite"
)

type fakeCompleter struct {
	reply string
	err   error
	got   rewrite.Prompt
}

func (f *fakeCompleter) Complete(_ context.Context, p rewrite.Prompt) (string, error) {
	f.got = p
	return f.reply, f.err
}

func newTestServer(t *testing.T, c rewrite.Completer) *httptest.Server {
	t.Helper()
	h, err := newHandler(&State{Catalog: purpose.Default(), Completer: c})
	if err != nil {
		t.Fatalf("newHandler failed: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(b)
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, &fakeCompleter{})
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	for _, want := range []string{
		`<form method="post" action="/rewrite">`,
		`<optgroup label="Business">`,
		`<option value="Email">Email</option>`,
		`name="expand"`,
		"Short (~300 characters)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index doesn't contain %q", want)
		}
	}
	if strings.Contains(body, `class="error"`) {
		t.Error("index shows an error with a completer configured")
	}
}

func TestIndex_NoAPIKey(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "OPENAI_API_KEY is not set") {
		t.Error("index doesn't mention the missing API key")
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); body != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

func TestRewrite(t *testing.T) {
	fake := &fakeCompleter{
		reply: `{"rewritten_text": "The dog sat.", "expanded_text": "## Dogs\n\nTakeaway: *Dogs* sit.\n\n## Cats",
			"change_points": ["animal <changed>"], "suggested_repurposes": ["Newsletter"]}`,
	}
	srv := newTestServer(t, fake)

	form := url.Values{
		"text":        {"The cat sat."},
		"minor":       {"Email"},
		"tone":        {"Formal"},
		"temperature": {"0.2"},
		"expand":      {"on"},
	}
	resp, err := http.PostForm(srv.URL+"/rewrite", form)
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d:\n%s", resp.StatusCode, http.StatusOK, body)
	}

	if fake.got.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", fake.got.Temperature)
	}
	if !strings.Contains(fake.got.User, "Purpose: Business → Email") {
		t.Errorf("major purpose wasn't derived from the minor purpose:\n%s", fake.got.User)
	}
	if !strings.Contains(fake.got.User, "Tone: Formal") {
		t.Errorf("tone missing from prompt:\n%s", fake.got.User)
	}

	if strings.Contains(body, "<changed>") {
		t.Error("result page doesn't escape change points")
	}
	for _, want := range []string{
		`The <span class="diff-rep">dog</span> sat.`,
		`<div class="callout takeaway">`,
		`<nav class="toc"><ul>`,
		`<a href="#dogs">Dogs</a>`,
		"<em>Dogs</em>",
		"animal &lt;changed",
		"<li>Newsletter</li>",
		"60/100",
		`value="The dog sat."`,
		`class="hl-`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("result page doesn't contain %q", want)
		}
	}
}

func TestRewrite_Errors(t *testing.T) {
	valid := url.Values{"text": {"Hello"}, "minor": {"Email"}}
	tests := []struct {
		name      string
		completer rewrite.Completer
		form      url.Values
		status    int
		want      string
	}{
		{
			name:      "empty_text",
			completer: &fakeCompleter{},
			form:      url.Values{"text": {"  "}, "minor": {"Email"}},
			status:    http.StatusBadRequest,
			want:      "empty text",
		},
		{
			name:      "unknown_purpose",
			completer: &fakeCompleter{},
			form:      url.Values{"text": {"Hello"}, "minor": {"Haiku"}},
			status:    http.StatusBadRequest,
			want:      "unknown purpose",
		},
		{
			name:      "bad_temperature",
			completer: &fakeCompleter{},
			form:      url.Values{"text": {"Hello"}, "minor": {"Email"}, "temperature": {"2"}},
			status:    http.StatusBadRequest,
			want:      "invalid temperature",
		},
		{
			name:   "no_api_key",
			form:   valid,
			status: http.StatusServiceUnavailable,
			want:   "OPENAI_API_KEY is not set",
		},
		{
			name:      "model_fails",
			completer: &fakeCompleter{err: errors.New("rate limited")},
			form:      valid,
			status:    http.StatusBadGateway,
			want:      "rate limited",
		},
		{
			name:      "no_json",
			completer: &fakeCompleter{reply: "Sorry, I can't."},
			form:      valid,
			status:    http.StatusBadGateway,
			want:      "reply contains no JSON object",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.completer)
			resp, err := http.PostForm(srv.URL+"/rewrite", tt.form)
			if err != nil {
				t.Fatal(err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body doesn't contain %q:\n%s", tt.want, body)
			}
			// The form is shown again with the input.
			if !strings.Contains(body, `action="/rewrite"`) {
				t.Error("body doesn't contain the form")
			}
		})
	}
}

func TestDownload(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		format      string
		status      int
		filename    string
		contentType string
	}{
		{"txt", http.StatusOK, "result.txt", "text/plain; charset=utf-8"},
		{"md", http.StatusOK, "result.md", "text/markdown; charset=utf-8"},
		{"pdf", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, err := http.PostForm(srv.URL+"/download", url.Values{"format": {tt.format}, "text": {"Dear team,\n"}})
			if err != nil {
				t.Fatal(err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			if body != "Dear team,\n" {
				t.Errorf("body = %q", body)
			}
			if got, want := resp.Header.Get("Content-Disposition"), `attachment; filename="`+tt.filename+`"`; got != want {
				t.Errorf("Content-Disposition = %q, want %q", got, want)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
		})
	}
}

func postDiff(t *testing.T, srv *httptest.Server, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/diff", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp)
}

func TestAPIDiff(t *testing.T) {
	srv := newTestServer(t, nil)
	status, body := postDiff(t, srv, `{"original": "The cat sat", "revised": "The dog sat", "algorithm": "myers"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d:\n%s", status, body)
	}

	var got diffResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	want := diffResponse{
		Spans: []highlight.Span{
			{Op: diff.Equal, Tokens: []string{"The"}},
			{Op: diff.Replace, Tokens: []string{"dog"}},
			{Op: diff.Equal, Tokens: []string{"sat"}},
		},
		Opcodes: []diff.Opcode{
			{Op: diff.Equal, I1: 0, I2: 1, J1: 0, J2: 1},
			{Op: diff.Replace, I1: 1, I2: 2, J1: 1, J2: 2},
			{Op: diff.Equal, I1: 2, I2: 3, J1: 2, J2: 3},
		},
		HTML:       `The <span class="diff-rep">dog</span> sat`,
		Similarity: 2.0 / 3.0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(body, `"op":"replace"`) {
		t.Errorf("ops aren't encoded by name: %s", body)
	}
}

func TestAPIDiff_Empty(t *testing.T) {
	srv := newTestServer(t, nil)
	status, body := postDiff(t, srv, `{"original": "", "revised": ""}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d:\n%s", status, body)
	}
	if want := `{"spans":[],"opcodes":[],"html":"","similarity":1}`; body != want {
		t.Errorf("body = %s, want %s", body, want)
	}
}

func TestAPIDiff_Errors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"original": `, "decoding request"},
		{"unknown_tokenizer", `{"original": "a", "revised": "b", "tokenizer": "chars"}`, `unknown tokenizer`},
		{"unknown_algorithm", `{"original": "a", "revised": "b", "algorithm": "patience"}`, `unknown diff algorithm`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postDiff(t, srv, tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body = %s, doesn't contain %q", body, tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	s, err := Run("localhost:0", &State{Catalog: purpose.Default()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cat, err := purpose.Parse([]byte(`
purposes:
  - name: Poetry
    minors: [{name: Haiku}]
lengths: [{name: Tiny, chars: 17}]
intensities: [{name: Light}]
`))
	if err != nil {
		t.Fatal(err)
	}
	s.ReplaceCatalog(cat)

	resp, err := http.Get("http://" + s.Addr() + "/")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, `<optgroup label="Poetry">`) {
		t.Error("replaced catalog isn't served")
	}
	if strings.Contains(body, `<optgroup label="Business">`) {
		t.Error("old catalog is still served")
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if err, ok := <-s.Error(); ok {
		t.Errorf("unexpected serving error: %v", err)
	}
}

func TestDiffPage(t *testing.T) {
	b, err := DiffPage("notes.txt", highlight.Compare("I like tea", "I really like tea"))
	if err != nil {
		t.Fatalf("DiffPage failed: %v", err)
	}
	for _, want := range []string{
		"<title>notes.txt · RePurpose</title>",
		`I <span class="diff-ins">really</span> like tea`,
		"Similarity: 86%",
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("page doesn't contain %q:\n%s", want, b)
		}
	}
}
