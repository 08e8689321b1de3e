package prefs

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// FavoritesKey is the storage key of the favorites list.
const FavoritesKey = "Favorites"

var favoritesList = delimited{key: FavoritesKey, sep: " "}

// Favorites is an ordered list of favorite item ids.
//
// The list is read from storage on first use and kept in memory afterwards;
// later external changes to storage are not observed. Every mutation writes
// the whole list back before it becomes visible, so on a storage error the
// in-memory list is left as it was. Duplicates are allowed.
type Favorites struct {
	st Storage
	lg *zap.Logger

	mu     sync.Mutex
	loaded bool
	ids    []string
}

// NewFavorites creates a Favorites store. Storage is not read until first use.
func NewFavorites(st Storage, lg *zap.Logger) *Favorites {
	return &Favorites{st: st, lg: lg}
}

// ensureLoaded must be called with f.mu held.
func (f *Favorites) ensureLoaded(ctx context.Context) error {
	if f.loaded {
		return nil
	}
	ids, err := favoritesList.load(ctx, f.st)
	if err != nil {
		return err
	}
	f.ids = ids
	f.loaded = true
	f.lg.Debug("Favorites loaded", zap.Int("count", len(ids)))
	return nil
}

// Get returns a copy of the favorite ids in insertion order.
func (f *Favorites) Get(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(f.ids), nil
}

// Contains reports whether id is a favorite.
func (f *Favorites) Contains(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return slices.Contains(f.ids, id), nil
}

// Add appends id, even if it is already present.
func (f *Favorites) Add(ctx context.Context, id string) error {
	if err := favoritesList.validate(id); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureLoaded(ctx); err != nil {
		return err
	}
	next := append(slices.Clip(f.ids), id)
	return f.commit(ctx, next)
}

// Remove deletes the first occurrence of id. The list is persisted even when
// id is absent.
func (f *Favorites) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureLoaded(ctx); err != nil {
		return err
	}
	next := slices.Clone(f.ids)
	if i := slices.Index(next, id); i >= 0 {
		next = slices.Delete(next, i, i+1)
	}
	return f.commit(ctx, next)
}

func (f *Favorites) commit(ctx context.Context, next []string) error {
	if err := favoritesList.save(ctx, f.st, next); err != nil {
		f.lg.Error("Could not save favorites", zap.Error(err))
		return err
	}
	f.ids = next
	return nil
}
