// Package remotestore is the remote catalog variant: every operation is a
// call against the backend's JSON API. It is not transactionally consistent
// with local state; each Observe subscription re-fetches the full list.
package remotestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/shozoko/bookshop/catalog"
)

const cacheSize = 256

var _ catalog.Store = (*Store)(nil)

type Store struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger

	// cache holds numeric id -> item from the most recent full fetch so a
	// detail lookup right after a list fetch needs no extra round trip.
	// Observe never reads it.
	cache *lru.Cache[int64, catalog.Item]
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option   { return func(s *Store) { s.log = l } }
func WithHTTPClient(c *http.Client) Option { return func(s *Store) { s.client = c } }

func New(baseURL string, opts ...Option) *Store {
	cache, _ := lru.New[int64, catalog.Item](cacheSize)
	s := &Store{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     zerolog.Nop(),
		cache:   cache,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Observe fetches the list once and emits it. The channel closes after the
// emission (or immediately on fetch failure); subscribers keep their last
// snapshot and may re-subscribe for a fresh fetch.
func (s *Store) Observe(ctx context.Context) <-chan []catalog.Item {
	ch := make(chan []catalog.Item, 1)
	go func() {
		defer close(ch)
		items, err := s.fetchAll(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("catalog fetch failed")
			return
		}
		select {
		case ch <- items:
		case <-ctx.Done():
		}
	}()
	return ch
}

func (s *Store) GetByID(ctx context.Context, id string) (*catalog.Item, error) {
	numID, ok := catalog.ParseID(id)
	if !ok {
		return nil, nil
	}
	if it, ok := s.cache.Get(numID); ok {
		return &it, nil
	}
	items, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (s *Store) Insert(ctx context.Context, item catalog.Item) (string, error) {
	body, err := json.Marshal(fromItem(item))
	if err != nil {
		return "", &catalog.NetworkError{Op: "insert", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/books", bytes.NewReader(body))
	if err != nil {
		return "", &catalog.NetworkError{Op: "insert", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &catalog.NetworkError{Op: "insert", Err: err}
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &catalog.NetworkError{Op: "insert", Status: resp.StatusCode}
	}

	var created bookDTO
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", &catalog.NetworkError{Op: "insert", Err: err}
	}
	it := created.toItem()
	s.cache.Add(created.ID, it)
	return it.ID, nil
}

// Update swallows transport and 4xx failures to false; only success with a
// matched row reports true.
func (s *Store) Update(ctx context.Context, item catalog.Item) (bool, error) {
	numID, ok := catalog.ParseID(item.ID)
	if !ok {
		return false, nil
	}
	body, err := json.Marshal(fromItem(item))
	if err != nil {
		return false, nil
	}
	url := fmt.Sprintf("%s/api/books/%d", s.baseURL, numID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return false, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Debug().Err(err).Str("id", item.ID).Msg("update failed")
		return false, nil
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Debug().Int("status", resp.StatusCode).Str("id", item.ID).Msg("update rejected")
		return false, nil
	}
	s.cache.Remove(numID)
	return true, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	numID, ok := catalog.ParseID(id)
	if !ok {
		return false, nil
	}
	url := fmt.Sprintf("%s/api/books/%d", s.baseURL, numID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return false, nil
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Debug().Err(err).Str("id", id).Msg("delete failed")
		return false, nil
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, nil
	}
	s.cache.Remove(numID)
	return true, nil
}

func (s *Store) fetchAll(ctx context.Context) ([]catalog.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/books", nil)
	if err != nil {
		return nil, &catalog.NetworkError{Op: "list", Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &catalog.NetworkError{Op: "list", Err: err}
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &catalog.NetworkError{Op: "list", Status: resp.StatusCode}
	}

	var dtos []bookDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, &catalog.NetworkError{Op: "list", Err: err}
	}

	items := make([]catalog.Item, 0, len(dtos))
	var omitted catalog.FieldSet
	for _, d := range dtos {
		it := d.toItem()
		omitted |= it.Unknown
		s.cache.Add(d.ID, it)
		items = append(items, it)
	}
	if omitted != 0 {
		s.log.Warn().Stringer("fields", omitted).Msg("backend omitted book fields")
	}
	return items, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
