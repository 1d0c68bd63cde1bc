// Package cookie provides secure HTTP cookie management with signing,
// encryption, and key rotation support.
//
// A Manager carries default attributes (path, domain, SameSite, flags) and
// an ordered secret list. Plaintext operations never need secrets; signed
// (HMAC-SHA256) and encrypted (AES-256-GCM) operations use the first secret
// to write and try every secret to read, so keys rotate without invalidating
// cookies issued under the previous key:
//
//	manager, err := cookie.New(
//		[]string{"new-secret-at-least-32-characters", "old-secret-at-least-32-characters"},
//		cookie.WithSecure(true),
//		cookie.WithSameSite(http.SameSiteStrictMode),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := manager.SetSigned(w, "user_id", "42"); err != nil {
//		return err
//	}
//	value, err := manager.GetSigned(r, "user_id") // fails on tampering
//
// Consumers that should not care how values cross the wire depend on the
// Controller interface instead and receive a Plaintext or Signed variant at
// configuration time:
//
//	var ctrl cookie.Controller = cookie.Signed(manager)
//
// Deletion takes the same options as Set so the removal cookie carries
// matching path and domain attributes; browsers ignore removals that do not
// match.
//
// All writes enforce a size guard (4KB by default) before touching the
// response, returning ErrCookieTooLarge instead of emitting a header the
// browser would truncate.
package cookie
