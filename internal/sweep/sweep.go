// Package sweep hosts the background maintenance job. On every tick
// it reconciles each movie's is_current flag with whether the movie
// still has future screenings, and purges expired refresh tokens.
// Reconciliation runs in a single transaction so readers never see a
// half-updated catalogue.
package sweep

import (
    "context"
    "log"
    "time"

    "github.com/filmreel/movie-booking/internal/repository"
)

// Sweeper periodically reconciles derived movie state.
type Sweeper struct {
    movies   *repository.MovieRepo
    tokens   *repository.TokenRepo
    interval time.Duration
}

// New constructs a Sweeper. interval must be positive; callers read
// it from configuration.
func New(movies *repository.MovieRepo, tokens *repository.TokenRepo, interval time.Duration) *Sweeper {
    return &Sweeper{movies: movies, tokens: tokens, interval: interval}
}

// RunOnce performs one sweep pass and returns how many movies had
// their is_current flag corrected. All flag updates commit together
// or not at all.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
    tx, err := s.movies.DB().BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    states, err := s.movies.ListCurrencyStatesTx(ctx, tx)
    if err != nil {
        return 0, err
    }
    updated := 0
    for _, st := range states {
        if st.IsCurrent == st.HasFuture {
            continue
        }
        if err := s.movies.SetIsCurrentTx(ctx, tx, st.MovieID, st.HasFuture); err != nil {
            return 0, err
        }
        updated++
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return updated, nil
}

// Start runs the sweep loop until ctx is cancelled. One pass runs
// immediately so a fresh deployment does not serve stale flags for a
// full interval. Errors are logged and the loop keeps going; a
// transient DB failure must not kill the job.
func (s *Sweeper) Start(ctx context.Context) {
    s.tick(ctx)
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Println("sweep: stopped")
            return
        case <-ticker.C:
            s.tick(ctx)
        }
    }
}

func (s *Sweeper) tick(ctx context.Context) {
    updated, err := s.RunOnce(ctx)
    if err != nil {
        log.Printf("sweep: currency pass failed: %v", err)
    } else if updated > 0 {
        log.Printf("sweep: updated is_current for %d movie(s)", updated)
    }
    purged, err := s.tokens.PurgeExpired(ctx)
    if err != nil {
        log.Printf("sweep: token purge failed: %v", err)
    } else if purged > 0 {
        log.Printf("sweep: purged %d expired refresh token(s)", purged)
    }
}
