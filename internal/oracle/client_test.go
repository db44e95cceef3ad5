package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scores/relic" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entity_id": "relic", "power": 800, "charisma": 2400, "overall": 3200}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sc, err := c.FetchScore(context.Background(), "relic")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if sc.Power != 800 || sc.Charisma != 2400 || sc.Overall != 3200 {
		t.Fatalf("bad score: %+v", sc)
	}

	if _, err := c.FetchScore(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scores" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"scores": [
			{"entity_id": "a", "power": 1, "charisma": 2, "overall": 3},
			{"entity_id": "b", "power": 4, "charisma": 5, "overall": 9}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	all, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d scores, want 2", len(all))
	}
	if all["b"].Overall != 9 {
		t.Fatalf("bad score for b: %+v", all["b"])
	}
}
