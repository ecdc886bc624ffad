package tasks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/plsync/plsync/internal/models"
	"golang.org/x/time/rate"
)

type acquireJob struct {
	track models.Track
	index int
}

type acquireOutcome struct {
	track models.Track
	// err is the acquisition failure, nil on success.
	err error
	// historyErr is set when the download succeeded but the ledger
	// write did not.
	historyErr error
}

// acquireAll drives the delta through the acquirer with a bounded worker
// pool, committing each success to history immediately. If the process
// dies after K of M tracks finish, those K are already durable and the
// next run's delta shrinks to M-K.
//
// Cancellation stops new submissions; in-flight downloads are detached
// from the run context so they finish and commit instead of dying
// mid-write. Nothing already committed is rolled back.
func (e *Engine) acquireAll(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	runLog *log.Logger,
	playlistID string,
	delta []models.Track,
	result *models.SyncResult,
	opts RunOpts,
) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > 10 {
		workers = 10
	}
	rps := opts.RateLimit
	if rps <= 0 {
		rps = 5.0
	}

	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	jobs := make(chan acquireJob, len(delta))
	results := make(chan acquireOutcome, len(delta))

	var done atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				e.sendProgress(progress, acquireStartUpdate(job.index+1, len(delta), job.track))
				outcome := e.acquireOne(ctx, playlistID, job.track, opts.DestDir)

				step := int(done.Add(1))
				if outcome.err != nil {
					e.sendProgress(progress, acquireFailUpdate(step, len(delta), job.track, outcome.err))
				} else {
					e.sendProgress(progress, acquireOKUpdate(step, len(delta), job.track))
				}
				results <- outcome
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, tr := range delta {
			if err := limiter.Wait(ctx); err != nil {
				runLog.Warn("cancellation requested, no further tracks submitted", "remaining", len(delta)-i)
				for _, skipped := range delta[i:] {
					results <- acquireOutcome{track: skipped, err: ctx.Err()}
				}
				return
			}
			jobs <- acquireJob{track: tr, index: i}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		switch {
		case outcome.err != nil:
			result.Failed = append(result.Failed, outcome.track)
		case outcome.historyErr != nil:
			result.Succeeded++
			result.HistoryErrors = append(result.HistoryErrors, outcome.track)
		default:
			result.Succeeded++
		}
	}
}

// acquireOne downloads a single track and, on success, records it in the
// ledger before returning. The append happens on the success path only,
// so a committed record always implies a finished acquisition.
func (e *Engine) acquireOne(ctx context.Context, playlistID string, tr models.Track, destDir string) acquireOutcome {
	// Detached from run cancellation: a download that already started
	// runs to completion so no half-written file is left behind and its
	// history commit is not lost. The acquirer's own per-track timeout
	// still bounds it.
	acquireCtx := context.WithoutCancel(ctx)

	if err := e.acquirer.Acquire(acquireCtx, tr.Title, tr.Artist, destDir); err != nil {
		e.logger.Debug("acquisition failed", "title", tr.Title, "artist", tr.Artist, "err", err)
		return acquireOutcome{track: tr, err: err}
	}

	if err := e.store.Append(acquireCtx, playlistID, models.RecordFor(tr)); err != nil {
		// The file is on disk but the ledger missed it: a future run
		// re-downloads this track. Loud log, run continues.
		e.logger.Error("downloaded track could not be recorded in history",
			"playlist", playlistID, "title", tr.Title, "artist", tr.Artist, "err", err)
		return acquireOutcome{track: tr, historyErr: err}
	}

	return acquireOutcome{track: tr}
}
