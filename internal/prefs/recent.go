package prefs

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// RecentKey is the storage key of the recent searches list.
const RecentKey = "Recent"

var recentList = delimited{key: RecentKey, sep: "\n"}

// Recent is the list of recent search queries, most recent first.
// It is re-read from storage on every call.
type Recent struct {
	st Storage
	mu sync.Mutex
}

// NewRecent creates a Recent list.
func NewRecent(st Storage) *Recent {
	return &Recent{st: st}
}

// List returns the recent queries, most recent first.
func (r *Recent) List(ctx context.Context) ([]string, error) {
	return recentList.load(ctx, r.st)
}

// Add records query as the most recent search. A query already in the list
// is moved to the front. Blank queries are ignored.
func (r *Recent) Add(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if err := recentList.validate(query); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := recentList.load(ctx, r.st)
	if err != nil {
		return err
	}
	list = slices.DeleteFunc(list, func(q string) bool { return q == query })
	list = slices.Insert(list, 0, query)
	return recentList.save(ctx, r.st, list)
}
