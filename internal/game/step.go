package game

// TickReport summarises one tick for hosts, logs and transports.
type TickReport struct {
	Tick      uint64   `json:"tick"`
	DeltaT    int64    `json:"deltaT"`
	Activated *Ball    `json:"activated,omitempty"`
	Prepared  EntityID `json:"prepared,omitempty"`
	Bounces   []Bounce `json:"bounces,omitempty"`
	Balls     int      `json:"balls"`
}

// Step runs one tick against the frame clock set by BeginFrame. Every read
// from host happens before the first write. The first error aborts the tick.
func Step(s *State, host Host) (TickReport, error) {
	s.Tick++
	rep := TickReport{Tick: s.Tick}

	for _, p := range s.Paddles {
		p.ReadGeometry(host)
	}
	for _, b := range s.Balls {
		b.ReadGeometry(host)
	}

	// A flushed ball centres against the viewport of the previous tick.
	activated, err := s.flushPending(host)
	if err != nil {
		return rep, err
	}
	rep.Activated = activated

	s.Viewport = host.CurrentSize()
	deltaT := s.Timestamps.DeltaT()
	rep.DeltaT = deltaT

	for _, b := range s.Balls {
		bounces, err := b.Bounce(s.Viewport, s.Paddles)
		if err != nil {
			return rep, err
		}
		rep.Bounces = append(rep.Bounces, bounces...)
	}

	for _, p := range s.Paddles {
		if err := p.Reposition(s.Viewport); err != nil {
			return rep, err
		}
	}

	for _, b := range s.Balls {
		b.Advance(deltaT)
	}

	if s.spawnDue() {
		rep.Prepared = s.prepare(host)
	}

	for _, p := range s.Paddles {
		p.CommitGeometry(host)
	}
	for _, b := range s.Balls {
		b.CommitGeometry(host)
	}

	rep.Balls = s.BallCount()
	return rep, nil
}

// Tick advances the frame clock to now (epoch milliseconds) and steps.
func Tick(s *State, host Host, now int64) (TickReport, error) {
	s.BeginFrame(now)
	return Step(s, host)
}
