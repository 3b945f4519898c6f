package correlation

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper runs SweepExpired on a fixed interval in the background: a
// ticker loop guarded by a stop channel closed exactly once.
type Sweeper struct {
	tracker  *Tracker
	interval time.Duration
	log      zerolog.Logger
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSweeper creates a sweeper for tracker that runs every interval.
func NewSweeper(tracker *Tracker, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		tracker:  tracker,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (s *Sweeper) Start() {
	go s.loop()
}

// Stop cancels the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Sweeper) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.tracker.SweepExpired(); n > 0 {
				s.log.Debug().Int("removed", n).Msg("correlation: swept expired entries")
			}
		case <-s.stop:
			return
		}
	}
}
