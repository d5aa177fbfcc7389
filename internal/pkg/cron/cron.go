package cron

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Expirer is implemented by the membership service.
type Expirer interface {
	ExpireDue(now time.Time) (int, error)
}

// Service periodically sweeps memberships whose expiry date has passed.
// Verification already expires lazily on read; the sweep catches records
// nobody reads.
type Service struct {
	expirer  Expirer
	interval time.Duration
	stopChan chan struct{}
}

func NewService(expirer Expirer, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		expirer:  expirer,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *Service) Start() {
	go s.run()
	log.Info().Dur("interval", s.interval).Msg("expiry sweep started")
}

func (s *Service) Stop() {
	close(s.stopChan)
	log.Info().Msg("expiry sweep stopped")
}

func (s *Service) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Service) sweep() {
	count, err := s.expirer.ExpireDue(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("expiry sweep failed")
		return
	}
	if count > 0 {
		log.Info().Int("expired", count).Msg("expiry sweep completed")
	}
}

// RunNow triggers one sweep immediately (manual runs and tests).
func (s *Service) RunNow() (int, error) {
	return s.expirer.ExpireDue(time.Now())
}
