package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"text/tabwriter"

	"git.lost.host/meutraa/stepchart/internal/config"
	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/library"
	"git.lost.host/meutraa/stepchart/internal/parser"
	"git.lost.host/meutraa/stepchart/internal/score"
	"git.lost.host/meutraa/stepchart/internal/serializer"
	"git.lost.host/meutraa/stepchart/internal/theme"
	"git.lost.host/meutraa/stepchart/pkg/logger"
	"git.lost.host/meutraa/stepchart/pkg/metrics"
	"github.com/eiannone/keyboard"
	"github.com/google/uuid"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app        = kingpin.New("stepchart", "Load, play and score StepMania charts in a terminal.")
	configPath = app.Flag("config", "YAML configuration file").Short('c').Envar("STEPCHART_CONFIG").String()

	info      = app.Command("info", "Describe a chart")
	infoChart = info.Arg("chart", "Chart file").Required().ExistingFile()

	export       = app.Command("export", "Write a chart back out as sm")
	exportChart  = export.Arg("chart", "Chart file").Required().ExistingFile()
	exportOutput = export.Flag("output", "Output file, stdout when empty").Short('o').String()

	lib        = app.Command("library", "Load every chart under a directory")
	libRoot    = lib.Arg("directory", "Song directory").Required().ExistingDir()
	libWorkers = lib.Flag("workers", "Charts loaded at once").Default(fmt.Sprint(runtime.NumCPU())).Int()

	play           = app.Command("play", "Play a chart")
	playChart      = play.Arg("chart", "Chart file").Required().ExistingFile()
	playDifficulty = play.Flag("difficulty", "Difficulty key, like dance-single9").Short('d').String()
	playRate       = play.Flag("rate", "Playback rate, overrides the configuration").Short('r').Float64()

	scores           = app.Command("scores", "List previous sessions of a difficulty")
	scoresChart      = scores.Arg("chart", "Chart file").Required().ExistingFile()
	scoresDifficulty = scores.Flag("difficulty", "Difficulty key").Short('d').Required().String()

	replay           = app.Command("replay", "Judge a saved session again with the current configuration")
	replayChart      = replay.Arg("chart", "Chart file").Required().ExistingFile()
	replayID         = replay.Arg("id", "Session id").Required().String()
	replayDifficulty = replay.Flag("difficulty", "Difficulty key").Short('d').Required().String()
)

func main() {
	app.Version("0.3.0")
	app.HelpFlag.Short('h')
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The flag falls back to STEPCHART_CONFIG itself
	cfg, err := config.LoadFile(ctx, *configPath)
	app.FatalIfError(err, "")

	app.FatalIfError(run(ctx, command, cfg), "%s", command)
}

func run(ctx context.Context, command string, cfg *config.Config) error {
	// The playfield owns the terminal, so a session logs to a file
	var w io.Writer = os.Stderr
	if command == play.FullCommand() {
		f, err := os.OpenFile(filepath.Join(filepath.Dir(cfg.ScoresPath), "stepchart.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if nil != err {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := logger.Init(w); nil != err {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); nil != err {
		return err
	}

	m := metrics.Default()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); nil != err {
				logger.Named("metrics").Error(ctx, "metrics server stopped", logger.Error(err))
			}
		}()
	}

	switch command {
	case info.FullCommand():
		return runInfo(*infoChart)
	case export.FullCommand():
		return runExport(*exportChart, *exportOutput)
	case lib.FullCommand():
		return runLibrary(ctx, *libRoot, *libWorkers, m)
	case play.FullCommand():
		if *playRate > 0 {
			cfg.Rate = *playRate
		}
		return runPlay(ctx, cfg, m, *playChart, game.DifficultyKey(*playDifficulty))
	case scores.FullCommand():
		return runScores(ctx, cfg, *scoresChart, game.DifficultyKey(*scoresDifficulty))
	case replay.FullCommand():
		return runReplay(ctx, cfg, *replayChart, *replayID, game.DifficultyKey(*replayDifficulty))
	}
	return fmt.Errorf("unknown command %q", command)
}

func loadChart(path string) (*game.Chart, error) {
	chart, err := parser.ParseFile(path)
	if nil != err {
		return nil, fmt.Errorf("unable to load %v: %w", path, err)
	}
	for _, w := range chart.Warnings {
		logger.Get().Warn(context.Background(), "chart warning", logger.String("chart", path), logger.Error(w))
	}
	return chart, nil
}

func runInfo(path string) error {
	data, err := os.ReadFile(path)
	if nil != err {
		return err
	}
	chart, err := loadChart(path)
	if nil != err {
		return err
	}

	fmt.Printf("%v - %v (%v)\n", chart.Artist, chart.Title, parser.Detect(string(data)))
	fmt.Printf("offset %vs, %v bpm changes, %v stops\n", chart.Offset, len(chart.BpmChanges), len(chart.Stops))
	if nil != chart.Music.URL {
		fmt.Println("music", chart.Music.URL)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tRATING\tNOTES\tHOLDS\tMINES")
	for _, d := range chart.Difficulties {
		notes, holds, mines := chart.Counts(d.Key())
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\t%v\t%v\n", d.Key(), d.Name, d.Rating, notes, holds, mines)
	}
	return tw.Flush()
}

func runExport(path, output string) error {
	chart, err := loadChart(path)
	if nil != err {
		return err
	}
	if output == "" {
		return serializer.Write(os.Stdout, chart)
	}
	f, err := os.Create(output)
	if nil != err {
		return err
	}
	if err := serializer.Write(f, chart); nil != err {
		f.Close()
		return err
	}
	return f.Close()
}

func runLibrary(ctx context.Context, root string, workers int, m *metrics.Manager) error {
	loader := library.NewLoader(
		library.WithLogger(logger.Named("library")),
		library.WithMetrics(m),
		library.WithWorkers(workers),
	)
	l, err := loader.Load(ctx, root)
	if nil != err {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, s := range l.Songs {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\n", s.Dialect, s.Chart.Artist, s.Chart.Title, s.Path)
	}
	for _, f := range l.Failures {
		fmt.Fprintf(tw, "failed\t%v\t%v\t%v\n", f.Reason, f.Err, f.Path)
	}
	fmt.Fprintf(tw, "\n%v loaded, %v failed\n", len(l.Songs), len(l.Failures))
	return tw.Flush()
}

func openScorer(cfg *config.Config) (*score.DefaultScorer, error) {
	s := score.NewDefaultScorer(logger.Named("score"))
	if err := s.Init(cfg.ScoresPath); nil != err {
		return nil, err
	}
	return s, nil
}

func runPlay(ctx context.Context, cfg *config.Config, m *metrics.Manager, path string, key game.DifficultyKey) error {
	chart, err := loadChart(path)
	if nil != err {
		return err
	}
	scorer, err := openScorer(cfg)
	if nil != err {
		return err
	}
	defer scorer.Deinit()

	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			logger.Get().Warn(ctx, "unable to close keyboard", logger.Error(err))
		}
	}()

	if key == "" {
		if key, err = pickDifficulty(chart, keys); nil != err {
			return err
		}
	}

	p := &Program{
		Config:  cfg,
		Log:     logger.Named("play"),
		Metrics: m,
		Scorer:  scorer,
		Theme:   &theme.DefaultTheme{},
	}
	var h *score.History
	err = p.Init(ctx, chart, key, keys)
	if nil == err {
		h, err = p.Run(ctx)
	}
	p.Deinit()
	if nil != err || nil == h {
		return err
	}
	printResult(os.Stdout, h.ID, h.Result)
	return nil
}

func printResult(w io.Writer, id uuid.UUID, r score.Result) {
	fmt.Fprintf(w, "%v  score %v  accuracy %.2f%%  max combo %v  rate %v\n",
		id, r.State.Score, r.Accuracy*100, r.State.MaxCombo, r.Rate)
	for i, n := range r.State.Counts {
		fmt.Fprintf(w, "%11v: %v\n", game.Judgement(i), n)
	}
}

func runScores(ctx context.Context, cfg *config.Config, path string, key game.DifficultyKey) error {
	chart, err := loadChart(path)
	if nil != err {
		return err
	}
	scorer, err := openScorer(cfg)
	if nil != err {
		return err
	}
	defer scorer.Deinit()

	hs, err := scorer.Load(ctx, chart, key)
	if nil != err {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLAYED\tSCORE\tACCURACY\tMAX COMBO\tRATE")
	for _, h := range hs {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%.2f%%\t%v\t%v\n",
			h.ID, h.Played.Format("2006-01-02 15:04"), h.Result.State.Score, h.Result.Accuracy*100, h.Result.State.MaxCombo, h.Result.Rate)
	}
	return tw.Flush()
}

func runReplay(ctx context.Context, cfg *config.Config, path, id string, key game.DifficultyKey) error {
	want, err := uuid.Parse(id)
	if nil != err {
		return fmt.Errorf("bad session id: %w", err)
	}
	chart, err := loadChart(path)
	if nil != err {
		return err
	}
	jc, err := cfg.Judge()
	if nil != err {
		return err
	}
	scorer, err := openScorer(cfg)
	if nil != err {
		return err
	}
	defer scorer.Deinit()

	hs, err := scorer.Load(ctx, chart, key)
	if nil != err {
		return err
	}
	for i := range hs {
		if hs[i].ID != want {
			continue
		}
		s, err := score.Replay(chart, key, &hs[i], jc, cfg.RollWindow)
		if nil != err {
			return err
		}
		r := score.Result{State: s.Engine.State(), Accuracy: s.Engine.Accuracy(), Rate: hs[i].Result.Rate}
		printResult(os.Stdout, want, r)
		mean, stdev := score.Deviation(s.Timeline)
		fmt.Printf("       mean: %+.1fms\n      stdev: %.1fms\n", mean*1000, stdev*1000)
		return nil
	}
	return fmt.Errorf("no session %v for %v", want, key)
}
