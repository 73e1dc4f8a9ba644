// Package testutil provides shared test helpers.
package testutil

import (
	"fmt"
	"testing"

	"github.com/netsentry/netsentry/internal/datastore"
	"github.com/netsentry/netsentry/internal/logger"
)

// NewStore opens an isolated in-memory SQLite store for one test and closes
// it on cleanup. Each test gets its own named shared-cache database so
// parallel tests cannot see each other's rows.
func NewStore(t *testing.T) *datastore.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", sanitize(t.Name()))
	store, err := datastore.Open(dsn, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '/', ' ', '#', '?':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
