package game

import "testing"

var testConfig = Config{InitialBallSpeed: 0.1, IntervalBetweenBalls: 2000}

func TestNewStatePlacesPaddles(t *testing.T) {
	h := newFakeHost(field)
	s := newTestState(h, testConfig, 10000)

	want := map[Side]Point{
		SideNorth: {X: 350, Y: 0},
		SideSouth: {X: 350, Y: 590},
		SideEast:  {X: 790, Y: 250},
		SideWest:  {X: 0, Y: 250},
	}
	for side, p := range want {
		b := h.boxes[PaddleID(side)]
		if b.X != p.X || b.Y != p.Y {
			t.Errorf("%s paddle at (%d, %d), want (%d, %d)", side, b.X, b.Y, p.X, p.Y)
		}
	}
	if s.Timestamps.PreviousFrame != 9985 || s.Timestamps.CurrentFrame != 10000 || s.Timestamps.LatestBallLaunch != 0 {
		t.Errorf("timestamps = %+v", s.Timestamps)
	}
}

func TestFirstStepPreparesThenActivates(t *testing.T) {
	h := newFakeHost(field)
	s := newTestState(h, testConfig, 10000)

	rep, err := Step(s, h)
	if err != nil {
		t.Fatal(err)
	}
	if rep.DeltaT != 15 {
		t.Errorf("first deltaT = %d, want 15", rep.DeltaT)
	}
	if rep.Prepared != "ball_0" || len(s.Pending) != 1 || len(s.Balls) != 0 {
		t.Fatalf("prepared %q, pending %v, balls %d", rep.Prepared, s.Pending, len(s.Balls))
	}
	h.layout()

	rep, err = Tick(s, h, 10016)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Activated == nil || rep.Activated.ID != "ball_0" || rep.Activated.Label != "B1" {
		t.Fatalf("activated = %+v", rep.Activated)
	}
	if len(s.Pending) != 0 || len(s.Balls) != 1 {
		t.Errorf("pending %v, balls %d", s.Pending, len(s.Balls))
	}
	if len(h.cleared) != 1 || h.cleared[0] != "ball_0" {
		t.Errorf("cleared = %v", h.cleared)
	}
}

func TestSpawnTiming(t *testing.T) {
	h := newFakeHost(field)
	s := newTestState(h, testConfig, 10000)
	if _, err := Step(s, h); err != nil {
		t.Fatal(err)
	}
	h.layout()

	rep, err := Tick(s, h, 11999)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Prepared != "" {
		t.Errorf("spawned after 1999ms: %q", rep.Prepared)
	}
	h.layout()

	rep, err = Tick(s, h, 12001)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Prepared != "ball_1" {
		t.Errorf("prepared = %q, want ball_1", rep.Prepared)
	}
	if len(h.created) != 2 {
		t.Errorf("created %v", h.created)
	}
}

func TestBallCountNeverDecreases(t *testing.T) {
	h := newFakeHost(field)
	cfg := Config{InitialBallSpeed: 0.01, IntervalBetweenBalls: 100}
	s := newTestState(h, cfg, 0)

	prev := 0
	for now := int64(0); now < 5000; now += 16 {
		rep, err := Tick(s, h, now)
		if err != nil {
			t.Fatal(err)
		}
		h.layout()
		if rep.Balls < prev {
			t.Fatalf("ball count dropped from %d to %d at %dms", prev, rep.Balls, now)
		}
		prev = rep.Balls
	}
	if prev < 40 {
		t.Errorf("only %d balls after 5s at one per 100ms", prev)
	}
}

func TestMaxBallsCapsSpawning(t *testing.T) {
	h := newFakeHost(field)
	cfg := Config{InitialBallSpeed: 0.1, IntervalBetweenBalls: 10, MaxBalls: 2}
	s := newTestState(h, cfg, 0)
	for now := int64(0); now < 1000; now += 16 {
		if _, err := Tick(s, h, now); err != nil {
			t.Fatal(err)
		}
		h.layout()
	}
	if s.BallCount() != 2 {
		t.Errorf("BallCount = %d, want 2", s.BallCount())
	}
}

func TestStepReadsBeforeWrites(t *testing.T) {
	h := newFakeHost(field)
	s := newTestState(h, testConfig, 10000)
	for now := int64(10000); now < 14100; now += 1000 {
		h.calls = nil
		if _, err := Tick(s, h, now); err != nil {
			t.Fatal(err)
		}
		h.layout()

		wrote := false
		for i, c := range h.calls {
			if c == "write" {
				wrote = true
			} else if wrote {
				t.Fatalf("tick at %dms: read at call %d after a write: %v", now, i, h.calls)
			}
		}
	}
	if len(s.Balls) == 0 {
		t.Fatal("expected balls to exercise ball reads")
	}
}

func TestPaddlesFollowPointerAndViewport(t *testing.T) {
	h := newFakeHost(field)
	s := newTestState(h, testConfig, 10000)

	if _, err := Tick(s, h, 10016); err != nil {
		t.Fatal(err)
	}
	h.layout()
	if b := h.boxes[PaddleID(SideNorth)]; b.X != 350 {
		t.Errorf("north paddle moved without a pointer: x=%d", b.X)
	}

	s.ApplyPointer(Point{X: 200, Y: 150})
	h.size = Size{Width: 1000, Height: 700}
	if _, err := Tick(s, h, 10032); err != nil {
		t.Fatal(err)
	}
	h.layout()

	want := map[Side]Point{
		SideNorth: {X: 200, Y: 0},
		SideSouth: {X: 200, Y: 690},
		SideEast:  {X: 990, Y: 150},
		SideWest:  {X: 0, Y: 150},
	}
	for side, p := range want {
		b := h.boxes[PaddleID(side)]
		if b.X != p.X || b.Y != p.Y {
			t.Errorf("%s paddle at (%d, %d), want (%d, %d)", side, b.X, b.Y, p.X, p.Y)
		}
	}
	if s.Viewport != h.size {
		t.Errorf("viewport = %+v", s.Viewport)
	}
}

func TestBeginFrameHoldsBackwardsClock(t *testing.T) {
	h := newFakeHost(field)
	s := newTestState(h, testConfig, 10000)
	s.BeginFrame(9000)
	if s.Timestamps.CurrentFrame < s.Timestamps.PreviousFrame || s.Timestamps.DeltaT() != 0 {
		t.Errorf("timestamps = %+v", s.Timestamps)
	}
}

func TestBallTravelsAndBouncesInsideField(t *testing.T) {
	h := newFakeHost(field)
	s := newTestState(h, Config{InitialBallSpeed: 0.05, IntervalBetweenBalls: 25000}, 30000)
	bounced := 0
	for now := int64(30000); now < 50000; now += 16 {
		rep, err := Tick(s, h, now)
		if err != nil {
			t.Fatal(err)
		}
		h.layout()
		bounced += len(rep.Bounces)
	}
	if len(s.Balls) != 1 {
		t.Fatalf("balls = %d", len(s.Balls))
	}
	if bounced == 0 {
		t.Error("a ball running for 20s never bounced")
	}
}
