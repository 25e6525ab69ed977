package library_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"git.lost.host/meutraa/stepchart/internal/library"
	"git.lost.host/meutraa/stepchart/internal/parser"
	"git.lost.host/meutraa/stepchart/internal/testdata"
	"git.lost.host/meutraa/stepchart/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const noStartingBpm = `#BPMS:4.000=120.000;
#NOTES:dance-single::Hard:1:0,0,0,0,0:
1000
0000
0000
0000
;`

func write(t *testing.T, p, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); nil != err {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(contents), 0o644); nil != err {
		t.Fatal(err)
	}
}

func writeArchive(t *testing.T, p string, files map[string]string) {
	t.Helper()
	f, err := os.Create(p)
	if nil != err {
		t.Fatal(err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, contents := range files {
		e, err := w.Create(name)
		if nil != err {
			t.Fatal(err)
		}
		if _, err := e.Write([]byte(contents)); nil != err {
			t.Fatal(err)
		}
	}
	if err := w.Close(); nil != err {
		t.Fatal(err)
	}
}

// newLibrary lays out:
//
//	a/song.sm                only sm
//	b/song.sm, b/song.ssc    ssc preferred
//	c/broken.sm              fails to parse
//	d/pack.zip               one sm chart and its audio
//	e/bad.zip                not an archive
func newLibrary(t *testing.T) string {
	root := t.TempDir()
	write(t, filepath.Join(root, "a", "song.sm"), testdata.SM)
	write(t, filepath.Join(root, "a", "song.ogg"), "audio")
	write(t, filepath.Join(root, "b", "song.sm"), testdata.SM)
	write(t, filepath.Join(root, "b", "song.ssc"), testdata.SSC)
	write(t, filepath.Join(root, "c", "broken.sm"), noStartingBpm)
	write(t, filepath.Join(root, "e", "bad.zip"), "not a zip")
	if err := os.MkdirAll(filepath.Join(root, "d"), 0o755); nil != err {
		t.Fatal(err)
	}
	writeArchive(t, filepath.Join(root, "d", "pack.zip"), map[string]string{
		"Song/song.sm":  testdata.SM,
		"Song/song.ogg": "audio",
	})
	return root
}

func TestLoad(t *testing.T) {
	root := newLibrary(t)
	registry := prometheus.NewRegistry()
	m := metrics.NewManager(metrics.WithPrometheusRegistry(registry))

	lib, err := library.NewLoader(library.WithMetrics(m), library.WithWorkers(2)).Load(context.Background(), root)
	if nil != err {
		t.Fatal(err)
	}

	expected := []struct {
		path    string
		dialect parser.Dialect
	}{
		{filepath.Join(root, "a", "song.sm"), parser.SM},
		{filepath.Join(root, "b", "song.ssc"), parser.SSC},
		{filepath.Join(root, "d", "pack.zip") + "#Song/song.sm", parser.SM},
	}
	if len(lib.Songs) != len(expected) {
		t.Fatalf("expected %v songs, got %+v", len(expected), lib.Songs)
	}
	for i, e := range expected {
		s := lib.Songs[i]
		if s.Path != e.path || s.Dialect != e.dialect {
			t.Log("song", i, s.Path, s.Dialect, "expected", e.path, e.dialect)
			t.Fail()
		}
		if s.Chart.Title != "Test Song" {
			t.Log("song", i, "has title", s.Chart.Title)
			t.Fail()
		}
	}

	if u := lib.Songs[0].Chart.Music.URL; nil == u || u.Scheme != "file" {
		t.Log("music of a folder song should resolve to a file", u)
		t.Fail()
	}
	if u := lib.Songs[2].Chart.Music.URL; nil == u || u.Scheme != "zip" || u.Fragment != "Song/song.ogg" {
		t.Log("music of an archived song should resolve inside the archive", u)
		t.Fail()
	}

	if len(lib.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", lib.Failures)
	}
	if lib.Failures[0].Reason != "missing_bpm" || !errors.Is(lib.Failures[0].Err, parser.ErrMissingStartingBpm) {
		t.Log("unexpected failure", lib.Failures[0])
		t.Fail()
	}
	if lib.Failures[1].Reason != "archive" {
		t.Log("unexpected failure", lib.Failures[1])
		t.Fail()
	}

	families, err := registry.Gather()
	if nil != err {
		t.Fatal(err)
	}
	counts := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			name := f.GetName()
			for _, l := range metric.GetLabel() {
				name += "/" + l.GetValue()
			}
			counts[name] = metric.GetCounter().GetValue()
		}
	}
	for name, want := range map[string]float64{
		"stepchart_charts_loaded_total/sm":          2,
		"stepchart_charts_loaded_total/ssc":         1,
		"stepchart_charts_failed_total/missing_bpm": 1,
		"stepchart_charts_failed_total/archive":     1,
	} {
		if counts[name] != want {
			t.Log(name, "=", counts[name], "expected", want)
			t.Fail()
		}
	}
}

func TestLoadCancelled(t *testing.T) {
	root := newLibrary(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	if _, err := library.NewLoader(library.WithMetrics(m)).Load(ctx, root); !errors.Is(err, context.Canceled) {
		t.Log("expected cancellation, got", err)
		t.Fail()
	}
}

func TestLoadMissingRoot(t *testing.T) {
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	if _, err := library.NewLoader(library.WithMetrics(m)).Load(context.Background(), filepath.Join(t.TempDir(), "missing")); nil == err {
		t.Log("a missing root should fail")
		t.Fail()
	}
}
