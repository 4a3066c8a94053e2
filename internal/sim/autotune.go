package sim

// TuneRequest schedules a deferred gain change for one loop: the other
// loops are suspended, the new gains commit after Delay simulated seconds,
// then the suspended loops resume. The whole operation is discrete and
// cancellable; nothing blocks.
type TuneRequest struct {
	Loop       Loop
	Kp, Ki, Kd float64
	// Delay in simulated seconds before the gains commit.
	Delay float64
}

type tuneState struct {
	req       TuneRequest
	deadline  float64
	suspended [numLoops]bool
	cascade   bool
}

// StartAutoTune suspends every other loop and arms the pending gain
// commit. Only one tune may be in flight at a time.
func (s *Simulator) StartAutoTune(req TuneRequest) error {
	if s.pendingTune != nil {
		return ErrTuneInProgress
	}

	st := &tuneState{
		req:      req,
		deadline: s.state.Time + req.Delay,
		cascade:  s.cascade.Enabled,
	}
	for l := Loop(0); l < numLoops; l++ {
		if l == req.Loop {
			continue
		}
		st.suspended[l] = s.autoEnabled[l]
		s.autoEnabled[l] = false
	}
	s.cascade.Enabled = false
	s.pendingTune = st
	return nil
}

// CancelAutoTune abandons a pending tune and resumes the suspended loops
// with their original gains intact.
func (s *Simulator) CancelAutoTune() {
	if s.pendingTune == nil {
		return
	}
	s.resumeFromTune()
}

// AutoTuneActive reports whether a gain commit is pending.
func (s *Simulator) AutoTuneActive() bool { return s.pendingTune != nil }

// tickAutoTune commits the pending gains once the simulated clock passes
// the deadline. Suspended loops are not resumed while emergency mode holds.
func (s *Simulator) tickAutoTune() {
	if s.pendingTune == nil || s.state.Time < s.pendingTune.deadline {
		return
	}
	req := s.pendingTune.req
	s.pids[req.Loop].SetGains(req.Kp, req.Ki, req.Kd)
	s.resumeFromTune()
}

func (s *Simulator) resumeFromTune() {
	st := s.pendingTune
	s.pendingTune = nil
	if s.emergency {
		return
	}
	for l := Loop(0); l < numLoops; l++ {
		if st.suspended[l] {
			s.autoEnabled[l] = true
		}
	}
	if st.cascade {
		s.SetCascadeControl(true)
	}
}
