package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/observability"
	"github.com/matzehuels/stemma/pkg/pipeline"
	"github.com/matzehuels/stemma/pkg/store"
)

const familyRecords = `{
  "individuals": [
    {"id": "G1", "name": "Georg"},
    {"id": "G2", "name": "Greta"},
    {"id": "C1", "name": "Carl", "birth": "1901"},
    {"id": "S1"},
    {"id": "D1"}
  ],
  "unions": [
    {"id": "F1", "partners": ["G1", "G2"], "children": ["C1"]},
    {"id": "F2", "partners": ["C1", "S1"], "children": ["D1"]}
  ]
}`

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	srv := New(pipeline.NewRunner(nil, nil, nil), st, Config{MaxBodyBytes: 1 << 16})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func post(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/layouts", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func createLayout(t *testing.T, ts *httptest.Server) graph.Layout {
	t.Helper()
	resp := post(t, ts, `{"records": `+familyRecords+`, "skip_optimize": true}`)
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST status = %d, body = %s", resp.StatusCode, body)
	}
	return decode[layoutResponse](t, resp.Body).Layout
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp.Body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
	if body["version"] == "" || body["go"] == "" {
		t.Errorf("build fields = %v, want version and go", body)
	}
}

func TestCreateAndGet(t *testing.T) {
	ts, st := newTestServer(t)

	created := createLayout(t, ts)
	if !store.ValidID(created.ID) {
		t.Fatalf("created ID = %q, want a UUID", created.ID)
	}
	if len(created.Nodes) != 7 {
		t.Errorf("len(Nodes) = %d, want 7", len(created.Nodes))
	}
	if created.Generations != 5 {
		t.Errorf("Generations = %d, want 5", created.Generations)
	}

	resp := get(t, ts.URL+"/v1/layouts/"+created.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", resp.StatusCode)
	}
	fetched := decode[graph.Layout](t, resp.Body)
	if diff := cmp.Diff(created.Nodes, fetched.Nodes); diff != "" {
		t.Errorf("fetched nodes mismatch (-created +fetched):\n%s", diff)
	}

	stored, err := st.Get(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if stored.Stats.Individuals != 5 || stored.Stats.Unions != 2 {
		t.Errorf("stored stats = %+v", stored.Stats)
	}
}

func TestCreate_Errors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
		status   int
	}{
		{"empty", `{}`, "INVALID_INPUT", http.StatusBadRequest},
		{"malformed", `{"records":`, "INVALID_INPUT", http.StatusBadRequest},
		{"unknown field", `{"record": {}}`, "INVALID_INPUT", http.StatusBadRequest},
		{"local source", `{"source": "/etc/passwd"}`, "INVALID_INPUT", http.StatusBadRequest},
		{"bad timeout", `{"records": {"individuals": [{"id": "a"}]}, "timeout": "soon"}`, "INVALID_INPUT", http.StatusBadRequest},
		{"duplicate id", `{"records": {"individuals": [{"id": "a"}, {"id": "a"}]}}`, "INVALID_RECORDS", http.StatusBadRequest},
		{
			"cycle",
			`{"records": {"individuals": [{"id": "a"}, {"id": "b"}], "unions": [
				{"id": "u1", "partners": ["a"], "children": ["b"]},
				{"id": "u2", "partners": ["b"], "children": ["a"]}]}}`,
			"CYCLE", http.StatusUnprocessableEntity,
		},
		{"too large", `{"records": {"individuals": [{"id": "` + strings.Repeat("x", 1<<16) + `"}]}}`, "INVALID_INPUT", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			got := decode[errorResponse](t, resp.Body)
			if got.Code != tt.wantCode {
				t.Errorf("code = %q (%s), want %q", got.Code, got.Error, tt.wantCode)
			}
		})
	}
}

func TestCreate_FromURL(t *testing.T) {
	records := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, familyRecords)
	}))
	defer records.Close()

	ts, _ := newTestServer(t)
	resp := post(t, ts, `{"source": "`+records.URL+`/family.json", "max_iterations": 50}`)
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/v1/layouts/") {
		t.Errorf("Location = %q", loc)
	}
}

func TestGet_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, id := range []string{"not-a-uuid", store.NewID()} {
		resp := get(t, ts.URL+"/v1/layouts/"+id)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", id, resp.StatusCode)
		}
		if got := decode[errorResponse](t, resp.Body).Code; got != "NOT_FOUND" {
			t.Errorf("GET %s code = %q, want NOT_FOUND", id, got)
		}
	}
}

func TestRender(t *testing.T) {
	ts, _ := newTestServer(t)
	l := createLayout(t, ts)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"svg", "image/svg+xml", "<svg"},
		{"dot", "text/vnd.graphviz; charset=utf-8", "digraph"},
		{"json", "application/json", `"generations"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp := get(t, ts.URL+"/v1/layouts/"+l.ID+"/"+tt.format)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body does not contain %q", tt.contains)
			}
		})
	}

	resp := get(t, ts.URL+"/v1/layouts/"+l.ID+"/gif")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("gif status = %d, want 400", resp.StatusCode)
	}
	resp = get(t, ts.URL+"/v1/layouts/"+l.ID+"/svg?renderer=crayon")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown renderer status = %d, want 400", resp.StatusCode)
	}
}

func TestListAndDelete(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := get(t, ts.URL+"/v1/layouts")
	if got := decode[[]store.Summary](t, resp.Body); len(got) != 0 {
		t.Fatalf("initial list = %v, want empty", got)
	}

	first := createLayout(t, ts)
	second := createLayout(t, ts)

	resp = get(t, ts.URL+"/v1/layouts?limit=1")
	list := decode[[]store.Summary](t, resp.Body)
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/layouts/"+first.ID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", delResp.StatusCode)
	}

	resp = get(t, ts.URL+"/v1/layouts")
	list = decode[[]store.Summary](t, resp.Body)
	if len(list) != 1 || list[0].ID != second.ID {
		t.Errorf("list after delete = %v, want only %s", list, second.ID)
	}

	resp = get(t, ts.URL+"/v1/layouts?limit=zero")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestStats(t *testing.T) {
	stats := observability.NewStats()
	observability.Register(stats)
	t.Cleanup(observability.Reset)

	srv := New(pipeline.NewRunner(nil, nil, nil), store.NewMemoryStore(), Config{Stats: stats})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	createLayout(t, ts)
	resp := get(t, ts.URL+"/v1/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	snap := decode[observability.Snapshot](t, resp.Body)
	if snap.Layout.Runs != 1 || snap.Layout.Records != 7 {
		t.Errorf("layout = %+v, want 1 run over 7 records", snap.Layout)
	}
	if snap.InFlight < 1 {
		t.Errorf("in-flight requests = %d, want the stats request itself counted", snap.InFlight)
	}
}

func TestStatsDisabled(t *testing.T) {
	ts, _ := newTestServer(t)
	if resp := get(t, ts.URL+"/v1/stats"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without stats", resp.StatusCode)
	}
}
