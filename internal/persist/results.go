package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RatingAdjust is a relative rating change for a seat that is no longer
// online. Online players go through the absolute dirty-flag flush instead.
type RatingAdjust struct {
	AccountID int64
	DRating   int
	DWins     int
	DLosses   int
}

// Result is one finished match bound for the database. Log carries the
// rating journal rows for rated games; practice results leave it empty.
type Result struct {
	Match   *MatchRow
	Adjusts []RatingAdjust
	Log     []RatingLogEntry
}

// ResultWriter drains finished matches to the database on its own
// goroutine so the game loop never waits on DB latency.
type ResultWriter struct {
	matches *MatchRepo
	queue   chan Result
	log     *zap.Logger
	wg      sync.WaitGroup
}

const (
	resultWriteTimeout = 5 * time.Second
	resultAttempts     = 3
	resultRetryPause   = 2 * time.Second
)

func NewResultWriter(matches *MatchRepo, queueSize int, log *zap.Logger) *ResultWriter {
	w := &ResultWriter{
		matches: matches,
		queue:   make(chan Result, queueSize),
		log:     log,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Enqueue hands a result to the writer. Never blocks: if the queue is full
// the database has been unreachable for a long while already, and stalling
// the game loop won't bring it back.
func (w *ResultWriter) Enqueue(res Result) {
	select {
	case w.queue <- res:
	default:
		w.log.Error("對戰結果佇列已滿，結果遺失",
			zap.Int64("seed", res.Match.Seed),
			zap.Int16("winner", res.Match.WinnerSide))
	}
}

// Close stops accepting results and blocks until the queue drains.
func (w *ResultWriter) Close() {
	close(w.queue)
	w.wg.Wait()
}

func (w *ResultWriter) run() {
	defer w.wg.Done()
	for res := range w.queue {
		w.write(res)
	}
}

func (w *ResultWriter) write(res Result) {
	for attempt := 1; ; attempt++ {
		err := w.tryWrite(res)
		if err == nil {
			return
		}
		if attempt >= resultAttempts {
			w.log.Error("寫入對戰結果失敗，放棄", zap.Int("attempts", attempt), zap.Error(err))
			return
		}
		w.log.Warn("寫入對戰結果失敗，重試中", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(resultRetryPause)
	}
}

func (w *ResultWriter) tryWrite(res Result) error {
	ctx, cancel := context.WithTimeout(context.Background(), resultWriteTimeout)
	defer cancel()
	return w.matches.InsertResult(ctx, res.Match, res.Adjusts, res.Log)
}
