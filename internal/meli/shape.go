package meli

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Shape extracts the element array from a response body. It fails when the
// top-level JSON does not have the expected shape.
type Shape func(data []byte) ([]jx.Raw, error)

// BareArray expects the body itself to be a JSON array.
func BareArray(data []byte) ([]jx.Raw, error) {
	d := jx.DecodeBytes(data)
	if tt := d.Next(); tt != jx.Array {
		return nil, errors.Errorf("expected array, got %s", tt)
	}
	return collect(d)
}

// Field expects the body to be a JSON object whose name field is an array.
func Field(name string) Shape {
	return func(data []byte) ([]jx.Raw, error) {
		d := jx.DecodeBytes(data)
		if tt := d.Next(); tt != jx.Object {
			return nil, errors.Errorf("expected object, got %s", tt)
		}

		var (
			elems []jx.Raw
			found bool
		)
		if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			if string(key) != name || found {
				return d.Skip()
			}
			if tt := d.Next(); tt != jx.Array {
				return errors.Errorf("field %q: expected array, got %s", name, tt)
			}
			found = true

			var err error
			elems, err = collect(d)
			return err
		}); err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.Errorf("field %q not found", name)
		}
		return elems, nil
	}
}

func collect(d *jx.Decoder) ([]jx.Raw, error) {
	elems := make([]jx.Raw, 0, 16)
	if err := d.Arr(func(d *jx.Decoder) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		elems = append(elems, raw)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "read array")
	}
	return elems, nil
}
