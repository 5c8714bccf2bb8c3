// Package playback tracks which frame of an animation is showing.
package playback

import "time"

// Player advances through a fixed number of frames at a fixed rate.
type Player struct {
	frames   int
	interval time.Duration
	loop     bool

	index   int
	elapsed time.Duration
	paused  bool
	done    bool
}

// New creates a player for frames frames of durationMS milliseconds each.
// Non-positive durations are treated as 1ms.
func New(frames, durationMS int, loop bool) *Player {
	if durationMS < 1 {
		durationMS = 1
	}
	return &Player{
		frames:   frames,
		interval: time.Duration(durationMS) * time.Millisecond,
		loop:     loop,
		done:     frames == 0,
	}
}

// Frame returns the index of the frame to show.
func (p *Player) Frame() int {
	return p.index
}

// Interval returns the time each frame is shown.
func (p *Player) Interval() time.Duration {
	return p.interval
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	return p.paused
}

// Done reports whether a non-looping player has shown its last frame for a full interval.
func (p *Player) Done() bool {
	return p.done
}

// TogglePause pauses or resumes playback. Resuming restarts the current frame's interval.
func (p *Player) TogglePause() {
	p.paused = !p.paused
	p.elapsed = 0
}

// Update advances the clock by dt and reports whether the frame changed.
func (p *Player) Update(dt time.Duration) bool {
	if p.paused || p.done {
		return false
	}

	p.elapsed += dt
	before := p.index
	for p.elapsed >= p.interval && !p.done {
		p.elapsed -= p.interval
		p.advance()
	}
	return p.index != before
}

func (p *Player) advance() {
	if p.index+1 < p.frames {
		p.index++
		return
	}
	if p.loop {
		p.index = 0
		return
	}
	p.done = true
}

// Step moves n frames forward (or back when negative), wrapping around.
// It only has an effect while paused.
func (p *Player) Step(n int) {
	if !p.paused || p.frames == 0 {
		return
	}
	p.index = ((p.index+n)%p.frames + p.frames) % p.frames
}

// Frames returns the number of frames being played.
func (p *Player) Frames() int {
	return p.frames
}
