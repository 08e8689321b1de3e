package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// fieldFullPrice carries an already formatted price in serialized products.
const fieldFullPrice = "fullPrice"

func buildCategory(_ context.Context, raw jx.Raw) (Category, error) {
	o, err := parseObject(raw)
	if err != nil {
		return Category{}, err
	}

	f := fields{o: o}
	c := Category{
		ID:   f.str("id"),
		Name: f.str("name"),
	}
	if f.err != nil {
		return Category{}, f.err
	}
	return c, nil
}

// productBuilder builds products, resolving display prices with prices.
type productBuilder struct {
	prices PriceFormatter
}

func (b productBuilder) fromRaw(ctx context.Context, raw jx.Raw) (Product, error) {
	o, err := parseObject(raw)
	if err != nil {
		return Product{}, err
	}
	return b.build(ctx, o)
}

// fromEnvelope builds a product from a multi-get entry of the form
// {"code": 200, "body": {...}}.
func (b productBuilder) fromEnvelope(ctx context.Context, raw jx.Raw) (Product, error) {
	o, err := parseObject(raw)
	if err != nil {
		return Product{}, err
	}
	body, err := o.object("body")
	if err != nil {
		return Product{}, errors.Wrap(err, "unwrap envelope")
	}
	return b.build(ctx, body)
}

func (b productBuilder) build(ctx context.Context, o object) (Product, error) {
	f := fields{o: o}
	p := Product{
		ID:        f.str("id"),
		Title:     f.str("title"),
		Available: f.int("available_quantity"),
		Sold:      f.int("sold_quantity"),
		Condition: f.str("condition"),
		Permalink: f.str("permalink"),
		Thumbnail: f.str("thumbnail"),
	}
	if o.has(fieldFullPrice) {
		p.Price = f.str(fieldFullPrice)
		if f.err != nil {
			return Product{}, f.err
		}
		return p, nil
	}

	currency := f.str("currency_id")
	amount := f.int64("price")
	if f.err != nil {
		return Product{}, f.err
	}
	// Resolved last so that a malformed element never triggers a lookup.
	p.Price = b.prices.FormatPrice(ctx, currency, amount)
	return p, nil
}

func buildPicture(_ context.Context, raw jx.Raw) (string, error) {
	o, err := parseObject(raw)
	if err != nil {
		return "", err
	}
	return o.str("url")
}
