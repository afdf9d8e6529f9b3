package callsession

import "time"

// armDeadAirWatch schedules a report if nobody speaks for one timeout
// window. The watch runs while the call is connected and is rearmed
// after every report, so sustained quiet produces a steady signal.
func (s *Session) armDeadAirWatch() {
	s.silenceMu.Lock()
	defer s.silenceMu.Unlock()
	if s.silenceTimer != nil {
		s.silenceTimer.Stop()
	}
	s.silenceTimer = time.AfterFunc(s.deadAirTimeout, s.reportDeadAir)
}

// stopDeadAirWatch cancels the watch. Line speech resets the quiet
// streak; the next watch starts counting from scratch.
func (s *Session) stopDeadAirWatch() {
	s.silenceMu.Lock()
	defer s.silenceMu.Unlock()
	if s.silenceTimer != nil {
		s.silenceTimer.Stop()
		s.silenceTimer = nil
	}
	s.quietWindows = 0
}

// reportDeadAir classifies one elapsed quiet window. A line that keeps
// carrying audio while nobody speaks is hold music, not silence; one
// window of that is indistinguishable from trailing noise, so hold
// music is only reported from the second consecutive window on.
func (s *Session) reportDeadAir() {
	if s.runtime.isClosed() {
		return
	}

	s.silenceMu.Lock()
	s.quietWindows++
	windows := s.quietWindows
	s.silenceMu.Unlock()

	audible := time.Since(time.Unix(0, s.lastAudioAt.Load())) < s.deadAirTimeout
	if windows >= 2 && audible {
		s.classifier.HoldMusic()
	} else {
		s.classifier.Silence()
	}

	s.armDeadAirWatch()
}
