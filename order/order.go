// Package order defines the checkout submission contract against the
// backend's orders endpoint.
package order

import "context"

// ItemRequest is one (book, quantity) line of an order.
type ItemRequest struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

// Request is the one-shot snapshot submitted per checkout attempt. It is
// never retried automatically.
type Request struct {
	UserID int64         `json:"userId"`
	Items  []ItemRequest `json:"items"`
}

// Response carries the backend-assigned order identifier.
type Response struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status,omitempty"`
}

// Submitter submits one order. Implemented by HTTPSubmitter; tests swap in
// fakes.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Response, error)
}
