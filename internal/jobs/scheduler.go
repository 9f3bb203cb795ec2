package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"tradepulse/gateway/internal/config"
	"tradepulse/gateway/internal/service"
)

type Scheduler struct {
	cron     *cron.Cron
	consoles *service.ConsoleManager
	cfg      config.ConsoleConfig
	log      zerolog.Logger
}

func NewScheduler(consoles *service.ConsoleManager, cfg config.ConsoleConfig, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		consoles: consoles,
		cfg:      cfg,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.consoles == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 */5 * * * *", s.sweepConsoles); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		s.cron.Stop()
		cancel()
	}()
	return cancel
}

func (s *Scheduler) sweepConsoles() {
	dropped := s.consoles.Sweep(s.cfg.IdleTTL)
	if dropped > 0 {
		s.log.Info().
			Int("dropped", dropped).
			Int("remaining", s.consoles.Len()).
			Msg("idle consoles swept")
	}
}
