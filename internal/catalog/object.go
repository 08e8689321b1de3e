package catalog

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// object is a decoded JSON object with lazily decoded field values.
type object map[string]jx.Raw

func parseObject(raw []byte) (object, error) {
	d := jx.DecodeBytes(raw)
	if tt := d.Next(); tt != jx.Object {
		return nil, errors.Errorf("expected object, got %s", tt)
	}

	o := make(object, 16)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		v, err := d.Raw()
		if err != nil {
			return err
		}
		o[string(key)] = v
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "read object")
	}
	return o, nil
}

func (o object) has(key string) bool {
	_, ok := o[key]
	return ok
}

func (o object) field(key string) (*jx.Decoder, error) {
	raw, ok := o[key]
	if !ok {
		return nil, errors.Errorf("missing field %q", key)
	}
	return jx.DecodeBytes(raw), nil
}

// str reads a string field. Numbers are accepted and kept verbatim.
func (o object) str(key string) (string, error) {
	d, err := o.field(key)
	if err != nil {
		return "", err
	}
	switch tt := d.Next(); tt {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", errors.Wrapf(err, "field %q", key)
		}
		return n.String(), nil
	default:
		return "", errors.Errorf("field %q: expected string, got %s", key, tt)
	}
}

// number reads a numeric field. Numeric strings are accepted.
func (o object) number(key string) (decimal.Decimal, error) {
	d, err := o.field(key)
	if err != nil {
		return decimal.Zero, err
	}

	var text string
	switch tt := d.Next(); tt {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "field %q", key)
		}
		text = n.String()
	case jx.String:
		if text, err = d.Str(); err != nil {
			return decimal.Zero, errors.Wrapf(err, "field %q", key)
		}
	default:
		return decimal.Zero, errors.Errorf("field %q: expected number, got %s", key, tt)
	}

	v, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "field %q", key)
	}
	return v, nil
}

// integer reads a numeric field truncated towards zero.
func (o object) integer(key string) (int64, error) {
	v, err := o.number(key)
	if err != nil {
		return 0, err
	}
	return v.IntPart(), nil
}

func (o object) object(key string) (object, error) {
	raw, ok := o[key]
	if !ok {
		return nil, errors.Errorf("missing field %q", key)
	}
	v, err := parseObject(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "field %q", key)
	}
	return v, nil
}

// fields reads several fields of one object, keeping the first error.
type fields struct {
	o   object
	err error
}

func (f *fields) str(key string) string {
	if f.err != nil {
		return ""
	}
	v, err := f.o.str(key)
	f.err = err
	return v
}

func (f *fields) int(key string) int {
	if f.err != nil {
		return 0
	}
	v, err := f.o.integer(key)
	f.err = err
	return int(v)
}

func (f *fields) int64(key string) int64 {
	if f.err != nil {
		return 0
	}
	v, err := f.o.integer(key)
	f.err = err
	return v
}
