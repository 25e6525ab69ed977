package resource

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Dir resolves files relative to a song folder on disk. Chart authors are
// not consistent with case, so a case insensitive match of the base name is
// tried when the exact path does not exist.
type Dir struct {
	path  string
	names map[string]string // lower case name -> name on disk
}

func NewDir(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if nil != err {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if nil != err {
		return nil, err
	}
	d := &Dir{path: abs, names: make(map[string]string, len(entries))}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		d.names[strings.ToLower(e.Name())] = e.Name()
	}
	return d, nil
}

func (d *Dir) Path() string {
	return d.path
}

func (d *Dir) Resolve(name string) (*url.URL, bool) {
	if name == "" {
		return nil, false
	}
	p := filepath.Join(d.path, filepath.FromSlash(name))
	if !d.contains(p) {
		return nil, false
	}
	if info, err := os.Stat(p); nil == err && !info.IsDir() {
		return fileURL(p), true
	}
	if actual, ok := d.names[strings.ToLower(filepath.Base(p))]; ok {
		return fileURL(filepath.Join(d.path, actual)), true
	}
	return nil, false
}

// contains reports whether p is inside the song folder. Names like
// ../other/song.ogg are not resolved.
func (d *Dir) contains(p string) bool {
	rel, err := filepath.Rel(d.path, p)
	return nil == err && filepath.IsLocal(rel)
}

func fileURL(p string) *url.URL {
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
}
