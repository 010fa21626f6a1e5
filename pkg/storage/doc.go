// Package storage provides the user credential store used by authgate.
//
// # Overview
//
// The store holds one record per registered user, keyed by a UUID and
// unique by email. Handlers and the auth middleware depend only on the
// small UserStore interface:
//
//   - UserReader: FindByEmail, FindByID
//   - UserWriter: Create
//
// # Backends
//
//   - MemoryStore: mutex-guarded maps, for development and tests
//   - postgres: lib/pq over database/sql, unique index on email
//   - sqlite: mattn/go-sqlite3, for single-node deployments
//
// The SQL backends share their queries through package sqlstore.
//
// # Decorators
//
// InstrumentedStore records Prometheus metrics for every call, and
// cache.CachedUserStore serves FindByID from an in-process LRU with an
// optional Redis layer:
//
//	var store storage.UserStore = postgres.NewUserStore(db)
//	store = storage.NewInstrumentedStore(store, metrics)
//	store = cache.NewCachedUserStore(store, cache.Options{Size: 10000, TTL: 5 * time.Minute})
//
// # Errors
//
// Lookups that match nothing return ErrUserNotFound. Create returns
// ErrEmailTaken when the email is already registered, including when two
// registrations race past the existence check and the unique constraint
// rejects the second insert. Any other error is a backend failure.
//
// Emails are normalized with NormalizeEmail (trimmed, lower-cased) on both
// write and lookup.
package storage
