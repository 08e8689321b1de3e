// Package prefs keeps small user lists (favorite items, recent searches) in
// a string key-value store, each list serialized as delimited tokens.
package prefs

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Storage persists string values by key. A missing key reads as "".
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ErrInvalidToken is returned when a value is blank or contains the list
// separator, so it could not be read back as a single token.
var ErrInvalidToken = errors.New("invalid list token")

// delimited is a list persisted under key as tokens joined by sep.
type delimited struct {
	key string
	sep string
}

func (d delimited) load(ctx context.Context, st Storage) ([]string, error) {
	v, err := st.Get(ctx, d.key)
	if err != nil {
		return nil, errors.Wrapf(err, "load %q", d.key)
	}

	tokens := strings.Split(v, d.sep)
	list := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		list = append(list, tok)
	}
	return list, nil
}

func (d delimited) save(ctx context.Context, st Storage, list []string) error {
	if err := st.Set(ctx, d.key, strings.Join(list, d.sep)); err != nil {
		return errors.Wrapf(err, "save %q", d.key)
	}
	return nil
}

func (d delimited) validate(tok string) error {
	if strings.TrimSpace(tok) == "" || strings.Contains(tok, d.sep) {
		return errors.Wrapf(ErrInvalidToken, "%q", tok)
	}
	return nil
}
