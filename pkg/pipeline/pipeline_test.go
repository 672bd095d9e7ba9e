package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stemma/pkg/cache"
	errs "github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/graph"
)

const chainJSON = `{
  "individuals": [
    {"id": "G1", "name": "Georg"},
    {"id": "G2", "name": "Greta"},
    {"id": "C1", "name": "Carl", "birth": "1901"},
    {"id": "S1"},
    {"id": "D1", "birth": "ABT 1930"}
  ],
  "unions": [
    {"id": "F1", "partners": ["G1", "G2"], "children": ["C1"], "date": "1899"},
    {"id": "F2", "partners": ["C1", "S1"], "children": ["D1"]}
  ]
}`

const cycleJSON = `{
  "individuals": [{"id": "a"}, {"id": "b"}],
  "unions": [
    {"id": "u1", "partners": ["a"], "children": ["b"]},
    {"id": "u2", "partners": ["b"], "children": ["a"]}
  ]
}`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "family.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg", "png", "pdf", "dot", "json"}, false},
		{nil, false},
		{[]string{"svg", "gif"}, true},
		{[]string{""}, true},
	}
	for _, tt := range tests {
		if err := ValidateFormats(tt.formats); (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
	}
}

func TestValidateRenderer(t *testing.T) {
	for _, r := range []string{"grid", "graphviz"} {
		if err := ValidateRenderer(r); err != nil {
			t.Errorf("ValidateRenderer(%q) error = %v", r, err)
		}
	}
	if err := ValidateRenderer("tower"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ValidateRenderer(tower) error = %v", err)
	}
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{Source: "family.json"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if diff := cmp.Diff([]string{FormatSVG}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Renderer != RendererGrid || opts.Logger == nil || opts.MaxIterations == 0 {
		t.Errorf("defaults not applied: %+v", opts)
	}

	var empty Options
	if err := empty.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("empty options error = %v, want INVALID_INPUT", err)
	}
}

func TestExecute_File(t *testing.T) {
	r := fileRunner(t)
	ctx := context.Background()
	opts := Options{Source: writeFile(t, chainJSON), Formats: []string{"svg", "json", "dot"}}

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Stats.Individuals != 5 || res.Stats.Unions != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Layout.Nodes) != 7 || res.Layout.Generations != 5 {
		t.Errorf("layout has %d nodes and %d generations", len(res.Layout.Nodes), res.Layout.Generations)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", res.CacheInfo)
	}
	if !strings.HasPrefix(string(res.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact missing")
	}
	if !strings.Contains(string(res.Artifacts["dot"]), "digraph") {
		t.Error("dot artifact missing")
	}
	decoded, err := graph.UnmarshalLayout(res.Artifacts["json"])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if diff := cmp.Diff(res.Layout.Nodes, decoded.Nodes); diff != "" {
		t.Errorf("json artifact nodes mismatch (-want +got):\n%s", diff)
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", again.CacheInfo)
	}
	if diff := cmp.Diff(res.Layout, again.Layout); diff != "" {
		t.Errorf("cached layout differs (-want +got):\n%s", diff)
	}
}

func TestExecute_InlineRecords(t *testing.T) {
	recs, err := Decode([]byte(chainJSON))
	if err != nil {
		t.Fatal(err)
	}
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Records: &recs, SkipOptimize: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Layout.Stats.Iterations != 0 {
		t.Errorf("SkipOptimize ran %d iterations", res.Layout.Stats.Iterations)
	}
}

func TestExecute_URL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/family.json" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chainJSON))
	}))
	defer srv.Close()

	r := fileRunner(t)
	ctx := context.Background()
	opts := Options{Source: srv.URL + "/family.json", Formats: []string{"json"}}

	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !res.CacheInfo.LoadHit {
		t.Error("second fetch missed the source cache")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}

	_, err = r.Execute(ctx, Options{Source: srv.URL + "/missing.json"})
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing URL error = %v, want NOT_FOUND", err)
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want errs.Code
	}{
		{"cycle", Options{Source: writeFile(t, cycleJSON)}, errs.ErrCodeCycle},
		{"malformed", Options{Source: writeFile(t, `{"individuals": [`)}, errs.ErrCodeInvalidRecords},
		{"duplicate key", Options{Source: writeFile(t, `{"individuals": [{"id": "a"}], "unions": [{"id": "a"}]}`)}, errs.ErrCodeInvalidRecords},
		{"missing file", Options{Source: filepath.Join(t.TempDir(), "nope.json")}, errs.ErrCodeNotFound},
		{"bad format", Options{Source: writeFile(t, chainJSON), Formats: []string{"gif"}}, errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, nil, nil).Execute(context.Background(), tt.opts)
			if !errs.Is(err, tt.want) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestRender_Detailed(t *testing.T) {
	recs, _ := Decode([]byte(chainJSON))
	l, _, err := ComputeLayout(context.Background(), recs, Options{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Render(context.Background(), l, Options{Formats: []string{"svg"}, Detailed: true})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(out["svg"]), `class="coord"`) {
		t.Error("detailed SVG lacks coordinates")
	}
}

func TestLoad_SourceTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chainJSON))
	}))
	defer srv.Close()

	saved := maxSourceBytes
	t.Cleanup(func() { maxSourceBytes = saved })
	r := NewRunner(nil, nil, nil)
	opts := Options{Source: srv.URL + "/family.json"}

	maxSourceBytes = int64(len(chainJSON))
	if _, err := r.Load(context.Background(), opts); err != nil {
		t.Fatalf("Load() at the cap error = %v", err)
	}

	maxSourceBytes = int64(len(chainJSON)) - 1
	_, err := r.Load(context.Background(), opts)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Fatalf("Load() error = %v, want INVALID_INPUT", err)
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("Load() error = %q, want it to name the size cap", err)
	}
}

func TestLayout_WarningsOnCacheHit(t *testing.T) {
	recs, err := Decode([]byte(`{
  "individuals": [{"id": "a"}, {"id": "b"}, {"id": "c"}],
  "unions": [{"id": "u", "partners": ["a", "b"], "children": ["c", "ghost"]}]
}`))
	if err != nil {
		t.Fatal(err)
	}
	r := fileRunner(t)
	opts := Options{SkipOptimize: true}

	for _, wantHit := range []bool{false, true} {
		_, warnings, hit, err := r.LayoutWithCacheInfo(context.Background(), recs, opts)
		if err != nil {
			t.Fatalf("LayoutWithCacheInfo() error = %v", err)
		}
		if hit != wantHit {
			t.Errorf("hit = %v, want %v", hit, wantHit)
		}
		if len(warnings) != 1 || warnings[0].Ref != "ghost" {
			t.Errorf("hit=%v: warnings = %v, want one for ghost", hit, warnings)
		}
	}
}
