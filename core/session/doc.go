// Package session provides a lazily-loaded, store-backed session core with
// session-fixation defenses and a cache-invalidation-like lifecycle tied to
// HTTP request boundaries.
//
// A Session handle is constructed once per request, without I/O. The first
// read or write hydrates it from the Store; if the backing record is gone
// (expired or forged cookie), the handle silently recovers as a fresh
// anonymous session, so downstream code always sees a valid one. Mutations
// mark the handle dirty in memory; the middleware batches everything into at
// most one store write per request.
//
//	store, err := session.NewRedisStore[AuthUser](client)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess := session.New[AuthUser](nil, store, session.OnInactivity(30*time.Minute), logger)
//	if err := sess.Set(ctx, user); err != nil {
//		return err
//	}
//	if err := sess.Save(ctx); err != nil {
//		return err
//	}
//
// After a privilege change, CycleID mints a fresh identifier while keeping
// the payload, so an attacker-known identifier stops working:
//
//	if err := sess.CycleID(ctx); err != nil {
//		return err
//	}
//
// Identifiers are 128-bit values drawn from a process-wide CSPRNG and
// encoded as 22 characters of unpadded URL-safe base64. The store keys
// records by the SHA-256 of that text, so cookie-visible values never appear
// in the backend.
//
// Concurrent requests that mutate the same logical session race with
// last-write-wins semantics; the store carries no optimistic concurrency
// token. Callers needing stricter guarantees (such as revoking a user's
// other sessions) use the best-effort UserIndex instead.
package session
