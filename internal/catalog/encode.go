package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Encode writes the category as {"id": ..., "name": ...}.
func (c Category) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.ObjEnd()
}

// Encode writes the product with its display price under "fullPrice", so
// that decoding it again does not require a currency lookup.
func (p Product) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("title")
	e.Str(p.Title)
	e.FieldStart(fieldFullPrice)
	e.Str(p.Price)
	e.FieldStart("available_quantity")
	e.Int(p.Available)
	e.FieldStart("sold_quantity")
	e.Int(p.Sold)
	e.FieldStart("condition")
	e.Str(p.Condition)
	e.FieldStart("permalink")
	e.Str(p.Permalink)
	e.FieldStart("thumbnail")
	e.Str(p.Thumbnail)
	e.ObjEnd()
}

// EncodeProduct serializes p to JSON.
func EncodeProduct(p Product) []byte {
	var e jx.Encoder
	p.Encode(&e)
	return e.Bytes()
}

// DecodeProduct rebuilds a product from JSON. Objects written by
// EncodeProduct keep their display price; raw API objects have it resolved
// through prices.
func DecodeProduct(ctx context.Context, data []byte, prices PriceFormatter) (Product, error) {
	p, err := productBuilder{prices: prices}.fromRaw(ctx, data)
	if err != nil {
		return Product{}, errors.Wrap(err, "decode product")
	}
	return p, nil
}
