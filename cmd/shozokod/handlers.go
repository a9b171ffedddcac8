package main

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/shozoko/bookshop/catalog"
	"github.com/shozoko/bookshop/catalog/sqlitestore"
)

type server struct {
	store *sqlitestore.Store
	db    *sql.DB
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books", s.listBooks)
	mux.HandleFunc("POST /api/books", s.createBook)
	mux.HandleFunc("GET /api/books/{id}", s.getBook)
	mux.HandleFunc("PUT /api/books/{id}", s.updateBook)
	mux.HandleFunc("DELETE /api/books/{id}", s.deleteBook)
	mux.HandleFunc("POST /api/orders", s.createOrder)
	return mux
}

// bookJSON is the wire shape of a book; it matches what the client's remote
// store expects, optional fields always present so no client sees an
// omitted field.
type bookJSON struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Category string  `json:"category"`
	Price    int64   `json:"price"`
	Stock    int     `json:"stock"`
	Year     *int    `json:"year"`
	CoverURI *string `json:"coverUri"`
}

func toJSON(it catalog.Item) bookJSON {
	numID, _ := catalog.ParseID(it.ID)
	b := bookJSON{
		ID:       numID,
		Title:    it.Title,
		Author:   it.Author,
		Category: it.Category,
		Price:    it.PriceCents,
		Stock:    it.Stock,
	}
	if it.Year != 0 {
		b.Year = &it.Year
	}
	if it.CoverURI != "" {
		b.CoverURI = &it.CoverURI
	}
	return b
}

func toItem(b bookJSON) catalog.Item {
	it := catalog.Item{
		Title:      b.Title,
		Author:     b.Author,
		Category:   b.Category,
		PriceCents: b.Price,
		Stock:      b.Stock,
	}
	if b.ID != 0 {
		it.ID = catalog.FormatID(b.ID)
	}
	if b.Year != nil {
		it.Year = *b.Year
	}
	if b.CoverURI != nil {
		it.CoverURI = *b.CoverURI
	}
	return it
}

func (s *server) listBooks(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]bookJSON, 0, len(items))
	for _, it := range items {
		out = append(out, toJSON(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) getBook(w http.ResponseWriter, r *http.Request) {
	it, err := s.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if it == nil {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	writeJSON(w, http.StatusOK, toJSON(*it))
}

func (s *server) createBook(w http.ResponseWriter, r *http.Request) {
	var b bookJSON
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if b.Title == "" || b.Author == "" {
		writeError(w, http.StatusBadRequest, "title and author are required")
		return
	}
	id, err := s.store.Insert(r.Context(), toItem(b))
	if err != nil {
		if catalog.IsConflict(err) {
			writeError(w, http.StatusConflict, "id already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	created, err := s.store.GetByID(r.Context(), id)
	if err != nil || created == nil {
		writeError(w, http.StatusInternalServerError, "created book unreadable")
		return
	}
	writeJSON(w, http.StatusCreated, toJSON(*created))
}

func (s *server) updateBook(w http.ResponseWriter, r *http.Request) {
	var b bookJSON
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	it := toItem(b)
	it.ID = r.PathValue("id")
	ok, err := s.store.Update(r.Context(), it)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	updated, err := s.store.GetByID(r.Context(), it.ID)
	if err != nil || updated == nil {
		writeError(w, http.StatusInternalServerError, "updated book unreadable")
		return
	}
	writeJSON(w, http.StatusOK, toJSON(*updated))
}

func (s *server) deleteBook(w http.ResponseWriter, r *http.Request) {
	ok, err := s.store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
