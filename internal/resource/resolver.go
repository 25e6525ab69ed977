// Package resource finds the files a chart refers to, for songs stored in a
// folder, an uploaded file set or a zip archive.
package resource

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// Resolver turns a file name referenced by a chart into a loadable URL.
type Resolver interface {
	Resolve(name string) (*url.URL, bool)
}

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnsupportedScheme = errors.New("unsupported resource scheme")
)

// Error reports a referenced file that could not be resolved. It is never
// fatal to loading a chart.
type Error struct {
	Tag  string // The directive that referenced the file, like #MUSIC
	File string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Tag, e.File, ErrNotFound)
}

func (e *Error) Unwrap() error {
	return ErrNotFound
}

// None resolves nothing.
type None struct{}

func (None) Resolve(string) (*url.URL, bool) { return nil, false }

// Map resolves from a fixed set of files, such as an uploaded folder. Keys
// are matched exactly first, then case insensitively.
type Map map[string]*url.URL

func (m Map) Resolve(name string) (*url.URL, bool) {
	if u, ok := m[name]; ok {
		return u, true
	}
	for k, u := range m {
		if strings.EqualFold(k, name) {
			return u, true
		}
	}
	return nil, false
}

// Open returns the contents behind a URL produced by one of the resolvers in
// this package.
func Open(u *url.URL) (io.ReadCloser, error) {
	switch u.Scheme {
	case "file":
		return os.Open(u.Path)
	case "zip":
		return openZipEntry(u.Path, u.Fragment)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}
