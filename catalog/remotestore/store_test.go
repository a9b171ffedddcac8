package remotestore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shozoko/bookshop/catalog"
)

const booksBody = `[
  {"id": 2, "title": "Neuromancer", "author": "William Gibson", "category": "Sci-Fi", "price": 990000, "stock": 3, "year": 1984},
  {"id": 1, "title": "Dune", "author": "Frank Herbert", "price": 1290000, "stock": 5}
]`

func newBackend(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(booksBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestObserve_EmitsBackendOrderOnce verifies one subscription fetches once,
// emits the backend's order untouched and completes.
func TestObserve_EmitsBackendOrderOnce(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := newBackend(t, &hits)
	s := New(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch := s.Observe(ctx)
	items, ok := <-ch
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ID, "backend order must be preserved")
	assert.Equal(t, "1", items[1].ID)

	_, open := <-ch
	assert.False(t, open, "feed completes after one emission")
	assert.Equal(t, int64(1), hits.Load())

	// A new subscription re-fetches.
	ch = s.Observe(ctx)
	_, ok = <-ch
	require.True(t, ok)
	assert.Equal(t, int64(2), hits.Load())
}

// TestFetch_FlagsOmittedFields verifies backend omissions become explicit
// unknowns instead of silent zero/"General" defaults.
func TestFetch_FlagsOmittedFields(t *testing.T) {
	t.Parallel()

	srv := newBackend(t, nil)
	s := New(srv.URL)

	ctx := context.Background()
	ch := s.Observe(ctx)
	items, ok := <-ch
	require.True(t, ok)
	require.Len(t, items, 2)

	full := items[0] // Neuromancer: price, stock and category all present
	assert.Equal(t, catalog.FieldSet(0), full.Unknown)
	assert.Equal(t, "Sci-Fi", full.Category)

	partial := items[1] // Dune: category omitted
	assert.True(t, partial.Unknown.Has(catalog.FieldCategory))
	assert.Equal(t, catalog.DefaultCategory, partial.Category)
	assert.False(t, partial.Unknown.Has(catalog.FieldPrice))
	assert.False(t, partial.Unknown.Has(catalog.FieldStock))
	assert.Equal(t, int64(1290000), partial.PriceCents)
}

// TestGetByID_UsesCacheAfterFetch verifies a point lookup right after a
// list fetch is served from the cache, and malformed ids never leave the
// process.
func TestGetByID_UsesCacheAfterFetch(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := newBackend(t, &hits)
	s := New(srv.URL)
	ctx := context.Background()

	<-s.Observe(ctx)
	require.Equal(t, int64(1), hits.Load())

	got, err := s.GetByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, int64(1), hits.Load(), "cache must serve the lookup")

	got, err = s.GetByID(ctx, "not-numeric")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(1), hits.Load(), "malformed id must fast-reject")

	got, err = s.GetByID(ctx, "404404")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(2), hits.Load(), "cache miss falls back to a fetch")
}

// TestInsert_ReturnsBackendID verifies the backend-assigned id comes back
// as the item's identifier.
func TestInsert_ReturnsBackendID(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/books", func(w http.ResponseWriter, r *http.Request) {
		var d bookDTO
		require.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		d.ID = 55
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(d)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s := New(srv.URL)
	id, err := s.Insert(context.Background(), catalog.Item{Title: "New", Author: "A", PriceCents: 100, Stock: 1})
	require.NoError(t, err)
	assert.Equal(t, "55", id)
}

// TestInsert_TransportFailure verifies insert surfaces a NetworkError on a
// 5xx and on a refused connection.
func TestInsert_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL)
	_, err := s.Insert(context.Background(), catalog.Item{Title: "X", Author: "Y"})
	var nerr *catalog.NetworkError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, http.StatusInternalServerError, nerr.Status)

	dead := New("http://127.0.0.1:1")
	_, err = dead.Insert(context.Background(), catalog.Item{Title: "X", Author: "Y"})
	require.ErrorAs(t, err, &nerr)
}

// TestUpdateDelete_SwallowFailuresToFalse verifies transport and 4xx
// failures never escape as errors.
func TestUpdateDelete_SwallowFailuresToFalse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL)
	ctx := context.Background()

	ok, err := s.Update(ctx, catalog.Item{ID: "1", Title: "A", Author: "B"})
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, "1")
	assert.NoError(t, err)
	assert.False(t, ok)

	// Malformed ids short-circuit before any request.
	ok, err = s.Update(ctx, catalog.Item{ID: "abc", Title: "A", Author: "B"})
	assert.NoError(t, err)
	assert.False(t, ok)

	dead := New("http://127.0.0.1:1")
	ok, err = dead.Delete(ctx, "1")
	assert.NoError(t, err)
	assert.False(t, ok)
}

// TestObserve_FetchFailureClosesWithoutEmission verifies a broken backend
// yields a completed, empty subscription rather than a crash.
func TestObserve_FetchFailureClosesWithoutEmission(t *testing.T) {
	t.Parallel()

	s := New("http://127.0.0.1:1")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, ok := <-s.Observe(ctx)
	assert.False(t, ok)
}
