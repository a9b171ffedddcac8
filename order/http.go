package order

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shozoko/bookshop/catalog"
)

var _ Submitter = (*HTTPSubmitter)(nil)

// HTTPSubmitter posts orders to the backend. Each attempt carries a fresh
// Idempotency-Key so a duplicate delivery after a lost response cannot
// double-charge.
type HTTPSubmitter struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

type Option func(*HTTPSubmitter)

func WithLogger(l zerolog.Logger) Option   { return func(s *HTTPSubmitter) { s.log = l } }
func WithHTTPClient(c *http.Client) Option { return func(s *HTTPSubmitter) { s.client = c } }

func NewHTTPSubmitter(baseURL string, opts ...Option) *HTTPSubmitter {
	s := &HTTPSubmitter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *HTTPSubmitter) Submit(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, &catalog.NetworkError{Op: "order", Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return Response{}, &catalog.NetworkError{Op: "order", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Response{}, &catalog.NetworkError{Op: "order", Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &catalog.NetworkError{Op: "order", Status: resp.StatusCode}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, &catalog.NetworkError{Op: "order", Err: err}
	}
	s.log.Info().Int64("order_id", out.OrderID).Int("lines", len(req.Items)).Msg("order submitted")
	return out, nil
}
