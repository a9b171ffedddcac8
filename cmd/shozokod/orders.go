package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const ordersSchema = `
CREATE TABLE IF NOT EXISTS orders (
  id              INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id         INTEGER NOT NULL,
  idempotency_key TEXT UNIQUE,
  created_unix    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS order_items (
  order_id         INTEGER NOT NULL REFERENCES orders(id),
  book_id          INTEGER NOT NULL,
  qty              INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL
);
`

func migrateOrders(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, ordersSchema)
	return err
}

type orderRequest struct {
	UserID int64 `json:"userId"`
	Items  []struct {
		BookID   int64 `json:"bookId"`
		Quantity int   `json:"quantity"`
	} `json:"items"`
}

type orderResponse struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// createOrder places an order in one transaction: every line's stock is
// checked and decremented, the order rows are written, and only then does
// the client get an order id. A replayed Idempotency-Key returns the order
// already placed under it instead of charging twice.
func (s *server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == 0 || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "userId and items are required")
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	if idempKey != "" {
		var existing int64
		err := s.db.QueryRowContext(r.Context(),
			`SELECT id FROM orders WHERE idempotency_key=?`, idempKey).Scan(&existing)
		if err == nil {
			writeJSON(w, http.StatusOK, orderResponse{OrderID: existing, Status: "confirmed"})
			return
		}
		if err != sql.ErrNoRows {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range req.Items {
		if it.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid quantity for book %d", it.BookID))
			return
		}
		var stock int
		err := tx.QueryRowContext(r.Context(), `SELECT stock FROM books WHERE id=?`, it.BookID).Scan(&stock)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, fmt.Sprintf("book %d not found", it.BookID))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if stock < it.Quantity {
			writeError(w, http.StatusConflict, fmt.Sprintf("insufficient stock for book %d", it.BookID))
			return
		}
		if _, err := tx.ExecContext(r.Context(),
			`UPDATE books SET stock = stock - ? WHERE id=?`, it.Quantity, it.BookID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	res, err := tx.ExecContext(r.Context(),
		`INSERT INTO orders(user_id, idempotency_key, created_unix) VALUES (?, ?, ?)`,
		req.UserID, nullKey(idempKey), time.Now().Unix())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, it := range req.Items {
		var price int64
		if err := tx.QueryRowContext(r.Context(),
			`SELECT price_cents FROM books WHERE id=?`, it.BookID).Scan(&price); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := tx.ExecContext(r.Context(),
			`INSERT INTO order_items(order_id, book_id, qty, unit_price_cents) VALUES (?, ?, ?, ?)`,
			orderID, it.BookID, it.Quantity, price); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Int64("order_id", orderID).Int64("user_id", req.UserID).Int("lines", len(req.Items)).Msg("order placed")
	writeJSON(w, http.StatusCreated, orderResponse{OrderID: orderID, Status: "confirmed"})
}

func nullKey(k string) any {
	if k == "" {
		return nil
	}
	return k
}
