// Package browser defines the contracts this engine expects from the
// embedded browser host. The host (an external collaborator) owns window
// creation and the event loop; the capture state machine and the session
// vault drive these interfaces and are tested against fakes.
package browser

import "context"

// View is one embedded browser window navigated to the vendor login page.
type View interface {
	// Show makes the view visible. No-op if already shown.
	Show()

	// Close destroys the view. Implementations must tolerate a second
	// Close on an already-destroyed view.
	Close()

	// Destroyed reports whether the view has been torn down (by Close or
	// by the user closing the window).
	Destroyed() bool

	// InjectCSS applies cosmetic styling to the current page.
	InjectCSS(css string) error
}

// Cookie is one browser cookie in the login partition. Domain keeps its
// leading dot when the cookie is host-wide.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httpOnly"`
	// ExpirationDate is a UNIX timestamp in seconds; zero means a
	// session cookie.
	ExpirationDate float64 `json:"expirationDate,omitempty"`
}

// Partition is the isolated cookie store backing the login views. The
// session vault owns it exclusively while a restore is in progress.
type Partition interface {
	// Cookies lists every cookie currently in the partition.
	Cookies(ctx context.Context) ([]Cookie, error)

	// SetCookie injects one cookie under the given origin URL.
	SetCookie(ctx context.Context, originURL string, c Cookie) error

	// Clear removes all cookies from the partition.
	Clear(ctx context.Context) error
}
