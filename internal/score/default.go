package score

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"git.lost.host/meutraa/stepchart/internal/game"
	"git.lost.host/meutraa/stepchart/internal/input"
	"git.lost.host/meutraa/stepchart/pkg/logger"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotInitialized = errors.New("score database not initialized")

type DefaultScorer struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

func NewDefaultScorer(log logger.Logger) *DefaultScorer {
	return &DefaultScorer{log: log, now: time.Now}
}

func (s *DefaultScorer) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	// Every connection to :memory: is a new database
	db.SetMaxOpenConns(1)

	initStatement := `
	create table if not exists scores
	  (
		  id text not null primary key,
		  sum text not null,
		  difficulty text not null,
		  played integer not null,
		  rate real,
		  score integer,
		  accuracy real,
		  max_combo integer,
		  counts text,
		  inputs blob
	  );
	create index if not exists scores_sum on scores(sum, difficulty);
	`
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create scores table: %w", err)
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		if err := s.db.Close(); nil != err {
			s.log.Warn(context.Background(), "unable to close score database", logger.Error(err))
		}
		s.db = nil
	}
}

// hashChart identifies a difficulty by its timing and notes, so edits to
// the chart start a new history.
func hashChart(c *game.Chart, key game.DifficultyKey) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n", key)
	for _, b := range c.BpmChanges {
		fmt.Fprintf(h, "b%v=%v\n", b.Beat, b.Bpm)
	}
	for _, st := range c.Stops {
		fmt.Fprintf(h, "s%v=%v\n", st.Beat, st.Length)
	}
	for _, n := range c.Notes[key] {
		fmt.Fprintf(h, "%v %v %v %v\n", n.Type, n.Column, n.Beat, n.BeatEnd)
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (s *DefaultScorer) Save(ctx context.Context, c *game.Chart, key game.DifficultyKey, inputs []input.Event, result Result) (History, error) {
	if nil == s.db {
		return History{}, ErrNotInitialized
	}
	data, err := json.Marshal(compactInputs(inputs))
	if nil != err {
		return History{}, fmt.Errorf("unable to marshal inputs: %w", err)
	}
	counts, err := json.Marshal(result.State.Counts)
	if nil != err {
		return History{}, fmt.Errorf("unable to marshal counts: %w", err)
	}

	h := History{
		ID:     uuid.New(),
		Sum:    hashChart(c, key),
		Key:    key,
		Played: s.now().UTC(),
		Result: result,
		Inputs: inputs,
	}
	_, err = s.db.ExecContext(ctx,
		"insert into scores(id, sum, difficulty, played, rate, score, accuracy, max_combo, counts, inputs) values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		h.ID.String(), h.Sum, string(key), h.Played.UnixMilli(), result.Rate,
		int64(result.State.Score), result.Accuracy, result.State.MaxCombo, string(counts), data,
	)
	if nil != err {
		return History{}, fmt.Errorf("unable to save score: %w", err)
	}
	s.log.Debug(ctx, "score saved", logger.String("id", h.ID.String()), logger.String("difficulty", string(key)))
	return h, nil
}

func (s *DefaultScorer) Load(ctx context.Context, c *game.Chart, key game.DifficultyKey) ([]History, error) {
	histories := []History{}
	if nil == s.db {
		return histories, ErrNotInitialized
	}
	rows, err := s.db.QueryContext(ctx,
		"select id, sum, played, rate, score, accuracy, max_combo, counts, inputs from scores where sum = ? and difficulty = ? order by played, rowid",
		hashChart(c, key), string(key),
	)
	if nil != err {
		return histories, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, sum, counts string
		var played int64
		var score int64
		var inputs []byte
		h := History{Key: key}
		if err := rows.Scan(&id, &sum, &played, &h.Result.Rate, &score, &h.Result.Accuracy, &h.Result.State.MaxCombo, &counts, &inputs); nil != err {
			return histories, fmt.Errorf("unable to read score: %w", err)
		}
		h.ID, err = uuid.Parse(id)
		if nil != err {
			s.log.Warn(ctx, "skipping score with bad id", logger.String("id", id), logger.Error(err))
			continue
		}
		h.Sum = sum
		h.Played = time.UnixMilli(played).UTC()
		h.Result.State.Score = uint64(score)
		if err := json.Unmarshal([]byte(counts), &h.Result.State.Counts); nil != err {
			s.log.Warn(ctx, "skipping score with bad counts", logger.String("id", id), logger.Error(err))
			continue
		}
		var ns []InputCompact
		if err := json.Unmarshal(inputs, &ns); nil != err {
			s.log.Warn(ctx, "skipping score with bad inputs", logger.String("id", id), logger.Error(err))
			continue
		}
		h.Inputs = uncompactInputs(ns)
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
