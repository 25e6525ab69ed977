package resource

import (
	"archive/zip"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"
)

// Zip resolves files stored inside a song archive. URLs have the form
// zip:///path/to/archive.zip#entry/name.
type Zip struct {
	archive string
	dir     string // Directory within the archive the chart lives in
	files   map[string]*zip.File
}

// NewZip indexes the entries of an opened archive. archive is the path the
// reader was opened from and is only used to build URLs.
func NewZip(r *zip.Reader, archive string) *Zip {
	z := &Zip{archive: archive, files: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		z.files[f.Name] = f
	}
	return z
}

// Charts lists the .sm and .ssc entries in the archive, sorted.
func (z *Zip) Charts() []string {
	charts := []string{}
	for name := range z.files {
		switch strings.ToLower(path.Ext(name)) {
		case ".sm", ".ssc":
			charts = append(charts, name)
		}
	}
	sort.Strings(charts)
	return charts
}

// In returns a resolver scoped to the directory of the entry chart.
func (z *Zip) In(chart string) *Zip {
	return &Zip{archive: z.archive, dir: path.Dir(chart), files: z.files}
}

func (z *Zip) ReadFile(name string) ([]byte, error) {
	f, ok := z.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, name, z.archive)
	}
	rc, err := f.Open()
	if nil != err {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (z *Zip) Resolve(name string) (*url.URL, bool) {
	if name == "" {
		return nil, false
	}
	want := path.Join(z.dir, name)
	if _, ok := z.files[want]; ok {
		return z.url(want), true
	}
	for entry := range z.files {
		if strings.EqualFold(entry, want) {
			return z.url(entry), true
		}
	}
	return nil, false
}

func (z *Zip) url(entry string) *url.URL {
	return &url.URL{Scheme: "zip", Path: z.archive, Fragment: entry}
}

type zipEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (e *zipEntry) Close() error {
	err := e.ReadCloser.Close()
	if cerr := e.archive.Close(); nil == err {
		err = cerr
	}
	return err
}

func openZipEntry(archive, entry string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(archive)
	if nil != err {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if nil != err {
			zr.Close()
			return nil, err
		}
		return &zipEntry{ReadCloser: rc, archive: zr}, nil
	}
	zr.Close()
	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, entry, archive)
}
