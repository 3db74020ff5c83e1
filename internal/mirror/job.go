// Package mirror copies the production database into the backup database
// twice a day. Each table is replaced wholesale (delete everything, then
// bulk-insert the production rows), in a fixed order so referenced rows
// land before the rows that point at them.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Copier replaces one backup collection with its production contents.
type Copier interface {
	Collection() string
	Copy(ctx context.Context) (int64, error)
}

// Job runs the mirroring pass.
type Job struct {
	copiers []Copier
	log     *zap.Logger
	timeout time.Duration
}

// NewJob creates a mirror job. Copiers run in the given order.
func NewJob(copiers []Copier, log *zap.Logger, timeout time.Duration) *Job {
	if log == nil {
		log = zap.NewNop()
	}
	return &Job{copiers: copiers, log: log, timeout: timeout}
}

// Run copies every collection. A failing collection is reported but does
// not stop the remaining ones; the combined error is returned at the end.
func (j *Job) Run(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	var errs []error
	for _, c := range j.copiers {
		n, err := c.Copy(ctx)
		if err != nil {
			j.log.Error("mirror copy failed",
				zap.String("collection", c.Collection()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.Collection(), err))
			continue
		}
		j.log.Info("mirrored collection",
			zap.String("collection", c.Collection()),
			zap.Int64("rows", n))
	}
	j.log.Info("mirror pass finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}
