package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"tarit-loan/internal/adapters/origination"
)

// ============================================================
// Background jobs: mirror cleanup, idle eviction, token warm-up
// ============================================================

const (
	sweepSchedule = "@every 15m"
	warmSchedule  = "@every 5m"
	jobTimeout    = 30 * time.Second
)

// CronService runs the periodic housekeeping jobs
type CronService struct {
	cron     *cron.Cron
	registry *SessionRegistry
	mirror   SessionMirror
	otp      *OTPService
	tokens   origination.TokenSource
	idle     time.Duration
	log      *logrus.Entry
}

// NewCronService wires the jobs; mirror may be nil
func NewCronService(registry *SessionRegistry, mirror SessionMirror, otp *OTPService, tokens origination.TokenSource, idle time.Duration) *CronService {
	return &CronService{
		cron:     cron.New(),
		registry: registry,
		mirror:   mirror,
		otp:      otp,
		tokens:   tokens,
		idle:     idle,
		log:      logrus.WithField("component", "cron"),
	}
}

// Start schedules the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(sweepSchedule, s.Sweep); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(warmSchedule, s.WarmToken); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("cron started")
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// Sweep evicts idle sessions, expired OTPs and expired mirror rows
func (s *CronService) Sweep() {
	evicted := s.registry.EvictIdle(s.idle)
	otps := s.otp.Cleanup()

	var mirrored int64
	if s.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := s.mirror.DeleteExpired(ctx)
		if err != nil {
			s.log.WithError(err).Warn("mirror cleanup failed")
		}
		mirrored = n
	}

	s.log.WithFields(logrus.Fields{
		"sessions_evicted": evicted,
		"otps_expired":     otps,
		"mirror_rows":      mirrored,
	}).Info("sweep done")
}

// WarmToken refreshes the backend credential ahead of user traffic
func (s *CronService) WarmToken() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.tokens.EnsureValidToken(ctx); err != nil {
		s.log.WithError(err).Warn("token warm-up failed")
	}
}
