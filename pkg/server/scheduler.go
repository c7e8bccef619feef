package server

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/wrouesnel/ratingcard/pkg/games"
	"github.com/wrouesnel/ratingcard/pkg/refresher"
	"go.uber.org/zap"
)

// cronLogger adapts zap to the cron logging interface.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewCron returns a scheduler whose jobs never overlap themselves and never crash the
// process.
func NewCron() *cron.Cron {
	logger := cronLogger{zap.L().With(zap.String("subsystem", "cron")).Sugar()}
	return cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
}

// RefreshJob refreshes one game's catalog on a schedule.
type RefreshJob struct {
	ctx    context.Context
	game   *games.Game
	logger *zap.Logger
}

// NewRefreshJob returns a job refreshing game until ctx is done.
func NewRefreshJob(ctx context.Context, game *games.Game) *RefreshJob {
	return &RefreshJob{
		ctx:    ctx,
		game:   game,
		logger: zap.L().With(zap.String("subsystem", "cron"), zap.String("game", game.Name)),
	}
}

// Start registers the job with cronRunner.
func (j *RefreshJob) Start(cronRunner *cron.Cron, schedule string) error {
	if _, err := cronRunner.AddJob(schedule, j); err != nil {
		return errors.Wrapf(err, "refresh schedule %q", schedule)
	}
	j.logger.Info("Scheduled catalog refresh", zap.String("schedule", schedule))
	return nil
}

// Run implements cron.Job.
func (j *RefreshJob) Run() {
	if j.ctx.Err() != nil {
		return
	}
	_, err := j.game.Refresher.Run(j.ctx)
	switch {
	case errors.Is(err, refresher.ErrRefreshInProgress):
		j.logger.Info("Skipping scheduled refresh, one is already running")
	case err != nil:
		j.logger.Error("Scheduled refresh failed", zap.Error(err))
	}
}
