package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const cronSweepInterval = 10 * time.Minute

// CronService runs the periodic sweeps that keep the in-process maps bounded:
// expired sessions and stale payment orders.
type CronService struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewCronService(sessions *Sessions, payments *Payments, logger *zap.Logger) *CronService {
	c := cron.New()

	c.Schedule(cron.Every(cronSweepInterval), cron.FuncJob(func() {
		sessions.SweepExpired()
		payments.SweepExpired()
	}))

	return &CronService{cron: c, logger: logger}
}

func (s *CronService) Start() {
	s.cron.Start()
	s.logger.Info("sweep scheduler started")
}

func (s *CronService) Stop() {
	s.cron.Stop()
	s.logger.Info("sweep scheduler stopped")
}
