// Package sqlitestore is the local catalog variant backed by an embedded
// sqlite table. Observe feeds are recomputed and re-emitted after every
// successful mutation, ordered alphabetically by title.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shozoko/bookshop/catalog"
)

var _ catalog.Store = (*Store)(nil)

type Store struct {
	db     *sql.DB
	feed   *catalog.Feed
	events catalog.Events
	log    zerolog.Logger
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option  { return func(s *Store) { s.log = l } }
func WithEvents(ev catalog.Events) Option { return func(s *Store) { s.events = ev } }

// New wraps an opened, migrated database. The first Observe subscription
// triggers the initial snapshot query.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, feed: catalog.NewFeed(), log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Observe(ctx context.Context) <-chan []catalog.Item {
	ch := s.feed.Subscribe(ctx)
	// Prime the feed so the subscriber sees the current table without
	// waiting for a mutation.
	go s.broadcast(ctx)
	return ch
}

// List returns the full catalog ordered by title, case-insensitive.
func (s *Store) List(ctx context.Context) ([]catalog.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, category, price_cents, stock, year, cover_uri
		FROM books ORDER BY title COLLATE NOCASE ASC`)
	if err != nil {
		return nil, &catalog.PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []catalog.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, &catalog.PersistenceError{Op: "list", Err: err}
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &catalog.PersistenceError{Op: "list", Err: err}
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*catalog.Item, error) {
	numID, ok := catalog.ParseID(id)
	if !ok {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, category, price_cents, stock, year, cover_uri
		FROM books WHERE id=?`, numID)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &catalog.PersistenceError{Op: "get", Err: err}
	}
	return &it, nil
}

func (s *Store) Insert(ctx context.Context, item catalog.Item) (string, error) {
	item = item.Normalized()
	var (
		res sql.Result
		err error
	)
	if numID, ok := catalog.ParseID(item.ID); ok {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO books(id, title, author, category, price_cents, stock, year, cover_uri)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			numID, item.Title, item.Author, item.Category, item.PriceCents,
			item.Stock, nullYear(item.Year), nullStr(item.CoverURI))
	} else {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO books(title, author, category, price_cents, stock, year, cover_uri)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.Title, item.Author, item.Category, item.PriceCents,
			item.Stock, nullYear(item.Year), nullStr(item.CoverURI))
	}
	if err != nil {
		if isUniqueViolation(err) {
			return "", &catalog.PersistenceError{Op: "insert", Err: catalog.ErrConflict}
		}
		return "", &catalog.PersistenceError{Op: "insert", Err: err}
	}
	genID, err := res.LastInsertId()
	if err != nil {
		return "", &catalog.PersistenceError{Op: "insert", Err: err}
	}
	id := catalog.FormatID(genID)
	s.publish("catalog.book.created", id)
	s.broadcast(ctx)
	return id, nil
}

func (s *Store) Update(ctx context.Context, item catalog.Item) (bool, error) {
	numID, ok := catalog.ParseID(item.ID)
	if !ok {
		return false, nil
	}
	item = item.Normalized()
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET title=?, author=?, category=?, price_cents=?, stock=?, year=?, cover_uri=?
		WHERE id=?`,
		item.Title, item.Author, item.Category, item.PriceCents,
		item.Stock, nullYear(item.Year), nullStr(item.CoverURI), numID)
	if err != nil {
		return false, &catalog.PersistenceError{Op: "update", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &catalog.PersistenceError{Op: "update", Err: err}
	}
	if n == 0 {
		return false, nil
	}
	s.publish("catalog.book.updated", item.ID)
	s.broadcast(ctx)
	return true, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	numID, ok := catalog.ParseID(id)
	if !ok {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id=?`, numID)
	if err != nil {
		return false, &catalog.PersistenceError{Op: "delete", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &catalog.PersistenceError{Op: "delete", Err: err}
	}
	if n == 0 {
		return false, nil
	}
	s.publish("catalog.book.deleted", id)
	s.broadcast(ctx)
	return true, nil
}

// broadcast re-queries the table and pushes the fresh snapshot to all
// observers. Read failures are logged, never fatal to the feed.
func (s *Store) broadcast(ctx context.Context) {
	items, err := s.List(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog snapshot query failed")
		return
	}
	s.feed.Publish(items)
}

func (s *Store) publish(key, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(key, map[string]string{"id": id}); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("event publish failed")
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (catalog.Item, error) {
	var (
		it    catalog.Item
		numID int64
		year  sql.NullInt64
		cover sql.NullString
	)
	err := r.Scan(&numID, &it.Title, &it.Author, &it.Category, &it.PriceCents, &it.Stock, &year, &cover)
	if err != nil {
		return catalog.Item{}, err
	}
	it.ID = catalog.FormatID(numID)
	if year.Valid {
		it.Year = int(year.Int64)
	}
	if cover.Valid {
		it.CoverURI = cover.String
	}
	return it, nil
}

func nullYear(y int) any {
	if y == 0 {
		return nil
	}
	return y
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, catalog.ErrConflict) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: books.id")
}
