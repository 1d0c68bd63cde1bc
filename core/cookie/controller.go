package cookie

import "net/http"

// Controller is the narrow capability consumers like session middleware
// depend on. Whether values cross the wire plaintext or signed is decided
// once, at configuration time, by picking the implementation; the consumer
// never branches on it.
type Controller interface {
	// Get reads the named cookie's value. A missing cookie returns
	// ErrCookieNotFound; a signed implementation also fails on a bad
	// signature.
	Get(r *http.Request, name string) (string, error)

	// Set writes the named cookie.
	Set(w http.ResponseWriter, name, value string, opts ...Option) error

	// Remove expires the named cookie. Options must match the attributes
	// the cookie was set with.
	Remove(w http.ResponseWriter, name string, opts ...Option)
}

// Plaintext returns a Controller that stores values as-is.
func Plaintext(m *Manager) Controller {
	return plaintextController{m: m}
}

// Signed returns a Controller that signs values with HMAC-SHA256 on write
// and rejects tampered values on read. The manager must carry at least one
// secret or every operation fails with ErrNoSecret.
func Signed(m *Manager) Controller {
	return signedController{m: m}
}

type plaintextController struct {
	m *Manager
}

func (c plaintextController) Get(r *http.Request, name string) (string, error) {
	return c.m.Get(r, name)
}

func (c plaintextController) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	return c.m.Set(w, name, value, opts...)
}

func (c plaintextController) Remove(w http.ResponseWriter, name string, opts ...Option) {
	c.m.Delete(w, name, opts...)
}

type signedController struct {
	m *Manager
}

func (c signedController) Get(r *http.Request, name string) (string, error) {
	return c.m.GetSigned(r, name)
}

func (c signedController) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	return c.m.SetSigned(w, name, value, opts...)
}

func (c signedController) Remove(w http.ResponseWriter, name string, opts ...Option) {
	c.m.Delete(w, name, opts...)
}
