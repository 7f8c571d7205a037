package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/heroes/errors"
	"github.com/kbukum/heroes/hero"
	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/pipeline"
	"github.com/kbukum/heroes/search"
)

func newHeroClient(t *testing.T, mux *http.ServeMux) *HeroClient {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	hc, err := NewHeroClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewHeroClient: %v", err)
	}
	return hc
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func TestHeroClientHeroes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/heroes", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, hero.Seed())
	})
	mux.HandleFunc("GET /api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, hero.Seed()[1:5])
	})
	hc := newHeroClient(t, mux)

	heroes, err := hc.Heroes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(heroes) != 9 || heroes[0].Name != "Dr. Nice" {
		t.Errorf("unexpected heroes %v", heroes)
	}

	top, err := hc.Top(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 4 || top[0].ID != 13 {
		t.Errorf("unexpected dashboard %v", top)
	}
}

func TestHeroClientCRUD(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/heroes/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "12" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(apperrors.NotFound("hero", r.PathValue("id")).ToResponse())
			return
		}
		writeData(w, http.StatusOK, hero.Hero{ID: 12, Name: "Dr. Nice"})
	})
	mux.HandleFunc("POST /api/heroes", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Name string }
		json.NewDecoder(r.Body).Decode(&body)
		writeData(w, http.StatusCreated, hero.Hero{ID: 21, Name: body.Name})
	})
	mux.HandleFunc("PUT /api/heroes/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Name string }
		json.NewDecoder(r.Body).Decode(&body)
		writeData(w, http.StatusOK, hero.Hero{ID: 12, Name: body.Name})
	})
	mux.HandleFunc("DELETE /api/heroes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	hc := newHeroClient(t, mux)
	ctx := context.Background()

	got, err := hc.Hero(ctx, 12)
	if err != nil || got.Name != "Dr. Nice" {
		t.Fatalf("Hero: %v %v", got, err)
	}

	_, err = hc.Hero(ctx, 99)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeNotFound || appErr.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected NOT_FOUND app error, got %v", err)
	}
	if !IsNotFound(err) {
		t.Error("expected the client error to stay in the chain")
	}

	added, err := hc.AddHero(ctx, "Zed")
	if err != nil || added.ID != 21 || added.Name != "Zed" {
		t.Fatalf("AddHero: %v %v", added, err)
	}

	updated, err := hc.UpdateHero(ctx, hero.Hero{ID: 12, Name: "Dr. Nicer"})
	if err != nil || updated.Name != "Dr. Nicer" {
		t.Fatalf("UpdateHero: %v %v", updated, err)
	}

	if err := hc.DeleteHero(ctx, 12); err != nil {
		t.Fatalf("DeleteHero: %v", err)
	}
}

func TestHeroClientSearchHeroes(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/heroes", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		store := hero.NewSeededStore()
		writeData(w, http.StatusOK, store.Search(r.URL.Query().Get("name")))
	})
	hc := newHeroClient(t, mux)

	heroes, err := hc.SearchHeroes(context.Background(), "ma")
	if err != nil {
		t.Fatal(err)
	}
	if len(heroes) != 4 {
		t.Errorf("expected 4 matches for ma, got %v", heroes)
	}

	heroes, err = hc.SearchHeroes(context.Background(), "   ")
	if err != nil || heroes == nil || len(heroes) != 0 {
		t.Errorf("expected empty non-nil result for blank term, got %v %v", heroes, err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected blank term to skip the request, got %d calls", calls.Load())
	}
}

func TestHeroClientSearchFailureIsLookupError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"undecodable body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/heroes", tt.handler)
			hc := newHeroClient(t, mux)

			_, err := hc.SearchHeroes(context.Background(), "mag")
			if !apperrors.IsLookupError(err) {
				t.Fatalf("expected lookup error, got %v", err)
			}
			appErr, _ := apperrors.AsAppError(err)
			if appErr.Details["query"] != "mag" {
				t.Errorf("expected query detail, got %v", appErr.Details)
			}
		})
	}
}

func TestHeroClientSearchIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/heroes", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	hc := newHeroClient(t, mux)

	if _, err := hc.SearchHeroes(context.Background(), "mag"); err == nil {
		t.Fatal("expected an error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected one request, got %d", n)
	}
	if _, err := hc.Heroes(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if n := calls.Load(); n < 3 {
		t.Errorf("expected list requests to be retried, got %d calls in total", n)
	}
}

func TestHeroClientMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/messages", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, []string{"HeroService: fetched heroes"})
	})
	cleared := false
	mux.HandleFunc("DELETE /api/messages", func(w http.ResponseWriter, r *http.Request) {
		cleared = true
		w.WriteHeader(http.StatusNoContent)
	})
	hc := newHeroClient(t, mux)

	msgs, err := hc.Messages(context.Background())
	if err != nil || len(msgs) != 1 || msgs[0] != "HeroService: fetched heroes" {
		t.Fatalf("Messages: %v %v", msgs, err)
	}
	if err := hc.ClearMessages(context.Background()); err != nil || !cleared {
		t.Fatalf("ClearMessages: %v cleared=%v", err, cleared)
	}
}

func TestHeroClientSubmitQuery(t *testing.T) {
	got := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search/{session}/query", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		got <- r.PathValue("session") + ":" + body.Query
		writeData(w, http.StatusAccepted, map[string]string{"query": body.Query})
	})
	hc := newHeroClient(t, mux)

	if err := hc.SubmitQuery(context.Background(), "tab-1", "mag"); err != nil {
		t.Fatal(err)
	}
	if v := <-got; v != "tab-1:mag" {
		t.Errorf("unexpected submission %q", v)
	}
}

func TestHeroClientStreamResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search/{session}/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":\"search:%s:1\"}\n\n", r.PathValue("session"))
		fmt.Fprint(w, ": keepalive\n\n")
		for i, q := range []string{"ma", "mag"} {
			data, _ := json.Marshal(search.Result{Query: q, Generation: uint64(i + 1), Heroes: []hero.Hero{{ID: 15, Name: "Magneta"}}})
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	})
	hc := newHeroClient(t, mux)

	it, err := hc.StreamResults(context.Background(), "tab-1")
	if err != nil {
		t.Fatal(err)
	}
	results, err := pipeline.Collect(context.Background(), pipeline.From(it))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %v", results)
	}
	if results[0].Query != "ma" || results[1].Query != "mag" || results[1].Generation != 2 {
		t.Errorf("unexpected results %+v", results)
	}
	if results[1].Heroes[0].Name != "Magneta" {
		t.Errorf("unexpected heroes %v", results[1].Heroes)
	}
}

func TestHeroClientStreamUnknownSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search/{session}/stream", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(apperrors.Validation("invalid session id").ToResponse())
	})
	hc := newHeroClient(t, mux)

	_, err := hc.StreamResults(context.Background(), "bad")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeInvalidInput || appErr.Message != "invalid session id" {
		t.Fatalf("expected INVALID_INPUT with backend message, got %v", err)
	}
}

func TestHeroClientString(t *testing.T) {
	hc, err := NewHeroClient(Config{BaseURL: "http://heroes:8080"})
	if err != nil {
		t.Fatal(err)
	}
	if hc.String() != "heroes backend at http://heroes:8080" {
		t.Errorf("unexpected String %q", hc.String())
	}
}
