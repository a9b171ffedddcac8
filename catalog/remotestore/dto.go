package remotestore

import "github.com/shozoko/bookshop/catalog"

// bookDTO mirrors the backend's JSON book. Optional fields are pointers so
// an omitted field is distinguishable from an explicit zero; the mapper
// flags omissions instead of silently defaulting them.
type bookDTO struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Category   *string `json:"category"`
	PriceCents *int64  `json:"price"`
	Stock      *int    `json:"stock"`
	Year       *int    `json:"year"`
	CoverURI   *string `json:"coverUri"`
}

func (d bookDTO) toItem() catalog.Item {
	it := catalog.Item{
		ID:       catalog.FormatID(d.ID),
		Title:    d.Title,
		Author:   d.Author,
		Category: catalog.DefaultCategory,
	}
	if d.Category != nil {
		it.Category = *d.Category
	} else {
		it.Unknown |= catalog.FieldCategory
	}
	if d.PriceCents != nil {
		it.PriceCents = *d.PriceCents
	} else {
		it.Unknown |= catalog.FieldPrice
	}
	if d.Stock != nil {
		it.Stock = *d.Stock
	} else {
		it.Unknown |= catalog.FieldStock
	}
	if d.Year != nil {
		it.Year = *d.Year
	}
	if d.CoverURI != nil {
		it.CoverURI = *d.CoverURI
	}
	return it
}

func fromItem(it catalog.Item) bookDTO {
	it = it.Normalized()
	d := bookDTO{
		Title:      it.Title,
		Author:     it.Author,
		Category:   &it.Category,
		PriceCents: &it.PriceCents,
		Stock:      &it.Stock,
	}
	if numID, ok := catalog.ParseID(it.ID); ok {
		d.ID = numID
	}
	if it.Year != 0 {
		d.Year = &it.Year
	}
	if it.CoverURI != "" {
		d.CoverURI = &it.CoverURI
	}
	return d
}
