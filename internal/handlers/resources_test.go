package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/taxonomy"
)

type fixture struct {
	taxRepo  *storage.TaxonomyRepo
	files    *storage.FileRepo
	resolver *taxonomy.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "filesorter.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	repo := storage.NewTaxonomyRepo(db)
	store := taxonomy.NewStore(repo)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return &fixture{taxRepo: repo, files: storage.NewFileRepo(db), resolver: taxonomy.NewResolver(store)}
}

func (f *fixture) router() http.Handler {
	h := NewTaxonomyHandler(f.resolver)
	r := chi.NewRouter()
	r.Get("/api/taxonomy", h.List)
	r.Get("/api/taxonomy/{id}", h.Get)
	r.Post("/api/taxonomy/resolve", h.Resolve)
	return r
}

func TestTaxonomyHandler(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.resolver.Resolve(ctx, "Documents", "Reports")
	f.resolver.Resolve(ctx, "documents", "report") // fuzzy alias of the first entry
	f.resolver.Resolve(ctx, "Media", "Photos")

	router := f.router()

	t.Run("resolve", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/taxonomy/resolve", jsonBody(t, ResolveRequest{Category: "DOCUMENTS", Subcategory: "reports"}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %v, want 200 (body %s)", w.Code, w.Body.String())
		}
		var got taxonomy.Resolved
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != first {
			t.Errorf("Resolve() = %+v, want %+v", got, first)
		}
	})

	t.Run("resolve invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/taxonomy/resolve", strings.NewReader("nope"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %v, want 400", w.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/taxonomy", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %v, want 200", w.Code)
		}
		var got []TaxonomyEntry
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("List() = %+v, want 2 entries", got)
		}
		if got[0].Category != "Documents" || got[0].Subcategory != "Reports" {
			t.Errorf("List()[0] = %+v, want Documents/Reports", got[0])
		}
		if len(got[0].Aliases) != 1 || got[0].Aliases[0] != "documents : report" {
			t.Errorf("List()[0].Aliases = %v, want [documents : report]", got[0].Aliases)
		}
		if got[1].Aliases == nil {
			t.Error("List()[1].Aliases = nil, want empty slice")
		}
	})

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "get existing", path: "/api/taxonomy/1", wantStatus: http.StatusOK},
		{name: "get unknown", path: "/api/taxonomy/99", wantStatus: http.StatusNotFound},
		{name: "get invalid id", path: "/api/taxonomy/abc", wantStatus: http.StatusBadRequest},
		{name: "get zero id", path: "/api/taxonomy/0", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("GET %s status = %v, want %v", tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestFilesHandler_ServeHTTP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := t.TempDir()

	for _, rec := range []storage.FileRecord{
		{DirPath: root, FileName: "a.pdf", FileType: storage.FileTypeFile, Category: "Documents", Subcategory: "Reports"},
		{DirPath: filepath.Join(root, "sub"), FileName: "b.jpg", FileType: storage.FileTypeFile, Category: "Media", Subcategory: "Photos"},
	} {
		rec := rec
		if err := f.files.Upsert(ctx, &rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	tests := []struct {
		name       string
		method     string
		query      string
		wantStatus int
		wantCount  int
	}{
		{name: "top level", method: http.MethodGet, query: "?dir=" + root, wantStatus: http.StatusOK, wantCount: 1},
		{name: "recursive", method: http.MethodGet, query: "?dir=" + root + "&recursive=true", wantStatus: http.StatusOK, wantCount: 2},
		{name: "missing dir", method: http.MethodGet, query: "", wantStatus: http.StatusBadRequest},
		{name: "bad recursive", method: http.MethodGet, query: "?dir=" + root + "&recursive=maybe", wantStatus: http.StatusBadRequest},
		{name: "POST not allowed", method: http.MethodPost, query: "?dir=" + root, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewFilesHandler(f.files).ServeHTTP(w, httptest.NewRequest(tt.method, "/api/files"+tt.query, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %v, want %v (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got []FileRecord
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("records = %+v, want %d", got, tt.wantCount)
			}
		})
	}
}

type fakeSweeper struct {
	dir     string
	removed []storage.FileRecord
	err     error
}

func (s *fakeSweeper) Sweep(_ context.Context, dir string) ([]storage.FileRecord, error) {
	s.dir = dir
	return s.removed, s.err
}

func TestCleanupHandler_ServeHTTP(t *testing.T) {
	root := t.TempDir()

	t.Run("directory", func(t *testing.T) {
		sweeper := &fakeSweeper{removed: []storage.FileRecord{{DirPath: root, FileName: "x.tmp", FileType: storage.FileTypeFile}}}
		w := httptest.NewRecorder()
		NewCleanupHandler(sweeper).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cleanup", jsonBody(t, CleanupRequest{Dir: root})))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %v, want 200", w.Code)
		}
		if sweeper.dir != root {
			t.Errorf("Sweep() dir = %q, want %q", sweeper.dir, root)
		}
		var resp CleanupResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Removed) != 1 || resp.Removed[0].Name != "x.tmp" {
			t.Errorf("removed = %+v, want x.tmp", resp.Removed)
		}
	})

	t.Run("no body cleans everything", func(t *testing.T) {
		sweeper := &fakeSweeper{dir: "unset"}
		w := httptest.NewRecorder()
		NewCleanupHandler(sweeper).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cleanup", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %v, want 200", w.Code)
		}
		if sweeper.dir != "" {
			t.Errorf("Sweep() dir = %q, want empty", sweeper.dir)
		}
		if !strings.Contains(w.Body.String(), `"removed":[]`) {
			t.Errorf("body = %s, want an empty removed list", w.Body.String())
		}
	})

	t.Run("sweep error", func(t *testing.T) {
		sweeper := &fakeSweeper{err: errors.New("disk I/O error")}
		w := httptest.NewRecorder()
		NewCleanupHandler(sweeper).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cleanup", jsonBody(t, CleanupRequest{Dir: root})))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %v, want 500", w.Code)
		}
	})
}

func TestReportHandler_ServeHTTP(t *testing.T) {
	f := newFixture(t)
	f.resolver.Resolve(context.Background(), "Documents", "Reports")
	handler := NewReportHandler(f.resolver.Store())

	t.Run("html", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/report", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %v, want 200", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q, want text/html", ct)
		}
		body := w.Body.String()
		if !strings.Contains(body, "<table>") || !strings.Contains(body, "Documents") {
			t.Errorf("body = %s, want an HTML table with the entry", body)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/report?format=markdown", nil))

		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
			t.Errorf("Content-Type = %q, want text/markdown", ct)
		}
		if !strings.Contains(w.Body.String(), "| Documents | Reports |") {
			t.Errorf("body = %s, want a Markdown table row", w.Body.String())
		}
	})
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	down := errors.New("down")

	tests := []struct {
		name       string
		method     string
		database   Pinger
		index      Pinger
		wantStatus int
		wantState  string
	}{
		{name: "healthy", method: http.MethodGet, database: fakePinger{}, wantStatus: http.StatusOK, wantState: "healthy"},
		{name: "healthy with index", method: http.MethodGet, database: fakePinger{}, index: fakePinger{}, wantStatus: http.StatusOK, wantState: "healthy"},
		{name: "database down", method: http.MethodGet, database: fakePinger{err: down}, wantStatus: http.StatusServiceUnavailable, wantState: "unhealthy"},
		{name: "index down", method: http.MethodGet, database: fakePinger{}, index: fakePinger{err: down}, wantStatus: http.StatusServiceUnavailable, wantState: "degraded"},
		{name: "POST not allowed", method: http.MethodPost, database: fakePinger{}, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.database, tt.index).ServeHTTP(w, httptest.NewRequest(tt.method, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantState == "" {
				return
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantState)
			}
			if (len(resp.Issues) > 0) != (tt.wantState != "healthy") {
				t.Errorf("issues = %v for status %q", resp.Issues, resp.Status)
			}
		})
	}
}
