// Package library loads every chart under a directory. A chart that fails
// to load is logged and skipped, it never stops the rest of the library.
package library

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/parser"
	"git.lost.host/meutraa/stepchart/internal/resource"
	"git.lost.host/meutraa/stepchart/pkg/logger"
	"git.lost.host/meutraa/stepchart/pkg/metrics"
)

// Song is a chart that loaded. Path is the chart file, or archive#entry for
// charts inside a zip.
type Song struct {
	Path    string
	Dialect parser.Dialect
	Chart   *game.Chart
}

// Failure is a chart that was skipped.
type Failure struct {
	Path   string
	Reason string
	Err    error
}

type Library struct {
	Songs    []Song
	Failures []Failure
}

type Option func(*Loader)

func WithParser(p parser.Parser) Option {
	return func(l *Loader) { l.parser = p }
}

func WithLogger(log logger.Logger) Option {
	return func(l *Loader) { l.log = log }
}

func WithMetrics(m *metrics.Manager) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithWorkers sets how many charts are parsed at once.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

type Loader struct {
	parser  parser.Parser
	log     logger.Logger
	metrics *metrics.Manager
	workers int
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		parser:  &parser.DefaultParser{},
		log:     logger.Discard(),
		metrics: metrics.Default(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// job reads the text of one chart and knows how to resolve its files.
type job struct {
	path     string
	read     func() ([]byte, error)
	resolver resource.Resolver
}

type result struct {
	song    Song
	failure *Failure
}

// Load walks root for .sm, .ssc and .zip files. When a folder holds both
// dialects only the .ssc charts are loaded. The error is only set when
// the walk itself fails or ctx is done.
func (l *Loader) Load(ctx context.Context, root string) (*Library, error) {
	start := time.Now()
	jobs, failures, err := l.discover(ctx, root)
	if nil != err {
		return nil, err
	}

	results := make([]result, len(jobs))
	work := make(chan int)
	var wg sync.WaitGroup
	for range l.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = l.load(ctx, jobs[i])
			}
		}()
	}
feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()
	if err := ctx.Err(); nil != err {
		return nil, err
	}

	lib := &Library{Songs: []Song{}, Failures: failures}
	for _, r := range results {
		if nil != r.failure {
			lib.Failures = append(lib.Failures, *r.failure)
			continue
		}
		lib.Songs = append(lib.Songs, r.song)
	}
	sort.Slice(lib.Songs, func(i, j int) bool { return lib.Songs[i].Path < lib.Songs[j].Path })
	sort.Slice(lib.Failures, func(i, j int) bool { return lib.Failures[i].Path < lib.Failures[j].Path })

	l.log.Info(ctx, "library loaded",
		logger.String("root", root),
		logger.Int("songs", len(lib.Songs)),
		logger.Int("failures", len(lib.Failures)),
		logger.Duration("took", time.Since(start)),
	)
	return lib, nil
}

func (l *Loader) discover(ctx context.Context, root string) ([]job, []Failure, error) {
	byDir := map[string][]string{}
	archives := []string{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if nil != err {
			return err
		}
		if err := ctx.Err(); nil != err {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".sm", ".ssc":
			byDir[filepath.Dir(p)] = append(byDir[filepath.Dir(p)], p)
		case ".zip":
			archives = append(archives, p)
		}
		return nil
	})
	if nil != err {
		return nil, nil, fmt.Errorf("unable to walk %s: %w", root, err)
	}

	jobs := []job{}
	for dir, charts := range byDir {
		resolver, err := resource.NewDir(dir)
		if nil != err {
			return nil, nil, err
		}
		for _, p := range preferSSC(charts) {
			jobs = append(jobs, job{
				path:     p,
				read:     func() ([]byte, error) { return os.ReadFile(p) },
				resolver: resolver,
			})
		}
	}

	failures := []Failure{}
	for _, archive := range archives {
		js, err := l.archiveJobs(archive)
		if nil != err {
			failures = append(failures, l.fail(ctx, archive, "archive", err))
			continue
		}
		jobs = append(jobs, js...)
	}
	return jobs, failures, nil
}

// archiveJobs indexes a zip once. Entries are read through the index and
// resources resolve to zip URLs, so the archive is closed again here.
func (l *Loader) archiveJobs(archive string) ([]job, error) {
	data, err := os.ReadFile(archive)
	if nil != err {
		return nil, err
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if nil != err {
		return nil, err
	}
	z := resource.NewZip(r, archive)

	byDir := map[string][]string{}
	for _, entry := range z.Charts() {
		byDir[path.Dir(entry)] = append(byDir[path.Dir(entry)], entry)
	}
	jobs := []job{}
	for _, charts := range byDir {
		for _, entry := range preferSSC(charts) {
			jobs = append(jobs, job{
				path:     archive + "#" + entry,
				read:     func() ([]byte, error) { return z.ReadFile(entry) },
				resolver: z.In(entry),
			})
		}
	}
	return jobs, nil
}

// preferSSC drops the .sm charts of a folder that also has .ssc charts.
func preferSSC(charts []string) []string {
	ssc := []string{}
	for _, c := range charts {
		if strings.EqualFold(path.Ext(c), ".ssc") {
			ssc = append(ssc, c)
		}
	}
	if len(ssc) > 0 {
		return ssc
	}
	return charts
}

func (l *Loader) load(ctx context.Context, j job) result {
	data, err := j.read()
	if nil != err {
		f := l.fail(ctx, j.path, "read", err)
		return result{failure: &f}
	}
	text := string(data)

	start := time.Now()
	chart, err := l.parser.Parse(text, j.resolver)
	l.metrics.ObserveParse(time.Since(start))
	if nil != err {
		f := l.fail(ctx, j.path, reason(err), err)
		return result{failure: &f}
	}

	dialect := parser.Detect(text)
	l.metrics.RecordChartLoaded(string(dialect))
	for _, w := range chart.Warnings {
		l.log.Warn(ctx, "chart resource missing", logger.String("path", j.path), logger.Error(w))
	}
	return result{song: Song{Path: j.path, Dialect: dialect, Chart: chart}}
}

func (l *Loader) fail(ctx context.Context, p, reason string, err error) Failure {
	l.metrics.RecordChartFailed(reason)
	l.log.Error(ctx, "skipping chart", logger.String("path", p), logger.String("reason", reason), logger.Error(err))
	return Failure{Path: p, Reason: reason, Err: err}
}

// reason is a short label for why a chart failed to parse.
func reason(err error) string {
	switch {
	case errors.Is(err, parser.ErrMissingStartingBpm):
		return "missing_bpm"
	case errors.Is(err, parser.ErrRowLength):
		return "row_length"
	case errors.Is(err, parser.ErrUnknownNoteChar):
		return "note_char"
	case errors.Is(err, parser.ErrUnmatchedHoldEnd),
		errors.Is(err, parser.ErrHoldAlreadyOpen),
		errors.Is(err, parser.ErrUnclosedHold):
		return "hold"
	case errors.Is(err, parser.ErrMalformedDirective):
		return "directive"
	}
	return "parse"
}
