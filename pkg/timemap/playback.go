package timemap

import (
	"time"

	"github.com/sudorandom/imprint-map/pkg/places"
)

// PlayInterval is how long each year stays on screen during playback.
const PlayInterval = time.Second

type PlayState int

const (
	Idle PlayState = iota
	Playing
)

func (s PlayState) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// yearRenderer is the part of the Controller playback drives.
type yearRenderer interface {
	Year() int
	YearRange() (int, int)
	Render(year int) []places.CityRecord
}

// repeat is a cancellable fixed-interval schedule polled by the UI loop.
type repeat struct {
	interval time.Duration
	next     time.Time
	active   bool
}

func (r *repeat) start(now time.Time) {
	r.next = now.Add(r.interval)
	r.active = true
}

// cancel may be called any number of times.
func (r *repeat) cancel() {
	r.active = false
}

// due reports whether a tick is owed at now and schedules the next one.
// A loop that stalled for several intervals gets one tick, not a burst.
func (r *repeat) due(now time.Time) bool {
	if !r.active || now.Before(r.next) {
		return false
	}
	r.next = r.next.Add(r.interval)
	if !r.next.After(now) {
		r.next = now.Add(r.interval)
	}
	return true
}

// Playback advances the year once per interval until it passes the end of
// the range, then stops and returns to the first year.
type Playback struct {
	target   yearRenderer
	state    PlayState
	schedule repeat
	// OnStateChange, when set, is called after every transition.
	OnStateChange func(PlayState)
}

func NewPlayback(target yearRenderer, interval time.Duration) *Playback {
	return &Playback{target: target, schedule: repeat{interval: interval}}
}

func (p *Playback) State() PlayState { return p.state }

// Toggle starts playback when idle and stops it when playing.
func (p *Playback) Toggle(now time.Time) PlayState {
	if p.state == Playing {
		p.Stop()
	} else {
		p.Start(now)
	}
	return p.state
}

func (p *Playback) Start(now time.Time) {
	if p.state == Playing {
		return
	}
	p.schedule.start(now)
	p.setState(Playing)
}

// Stop cancels playback. Stopping while idle does nothing.
func (p *Playback) Stop() {
	p.schedule.cancel()
	if p.state != Idle {
		p.setState(Idle)
	}
}

// Tick is called every frame. It reports whether the year changed.
func (p *Playback) Tick(now time.Time) bool {
	if p.state != Playing || !p.schedule.due(now) {
		return false
	}
	minYear, maxYear := p.target.YearRange()
	next := p.target.Year() + 1
	if next > maxYear {
		p.Stop()
		p.target.Render(minYear)
		return true
	}
	p.target.Render(next)
	return true
}

func (p *Playback) setState(s PlayState) {
	p.state = s
	if p.OnStateChange != nil {
		p.OnStateChange(s)
	}
}
