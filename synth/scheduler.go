package synth

import "time"

// Scheduler times the playback of overlapping windows. Every window lasts
// twice the hop, so consecutive windows overlap by half. If synthesis falls
// behind, the target resynchronizes with the clock instead of trying to catch
// up.
type Scheduler struct {
	hop    time.Duration
	target time.Time
}

func NewScheduler(window time.Duration, now time.Time) *Scheduler {
	hop := window / 2
	return &Scheduler{hop: hop, target: now.Add(hop)}
}

func (s *Scheduler) Hop() time.Duration { return s.hop }

// Next returns how long to wait before playing the window that is ready now.
// A negative delay means the window is late and should play immediately.
func (s *Scheduler) Next(now time.Time) time.Duration {
	delay := min(s.hop, s.target.Sub(now))
	s.target = s.target.Add(s.hop)
	if s.target.Before(now) {
		s.target = now
	}
	return delay
}
