// Package track drives bunches through a lattice for many turns,
// spreading independent particles over worker goroutines.
package track

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/lattice"
)

// Observer is notified after every completed turn. The bunch slice is
// shared and only valid for the duration of the call.
type Observer interface {
	OnTurn(turn int, ps beam.Bunch)
}

// Loss records the first turn on which a particle was seen lost.
type Loss struct {
	Index int
	Turn  int
}

type Config struct {
	Turns    int
	Workers  int // goroutines tracking particle chunks; 0 means GOMAXPROCS
	MinChunk int // smallest bunch worth splitting; 0 means 64
}

type Result struct {
	Turns     int // turns actually completed
	Losses    []Loss
	Survivors int
}

type Tracker struct {
	lat       *lattice.Lattice
	observers []Observer
}

func New(lat *lattice.Lattice) *Tracker {
	return &Tracker{lat: lat}
}

func (t *Tracker) AddObserver(o Observer) {
	t.observers = append(t.observers, o)
}

// Run tracks the bunch in place for cfg.Turns turns. It returns the
// partial result together with ctx.Err() when cancelled. Losses are
// reported once, on the turn the particle first went missing.
func (t *Tracker) Run(ctx context.Context, ps beam.Bunch, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	minChunk := cfg.MinChunk
	if minChunk <= 0 {
		minChunk = 64
	}

	lost := make([]bool, len(ps))
	for i := range ps {
		lost[i] = ps[i].Lost()
	}

	result := &Result{}
	elems := t.lat.Elements()

	for turn := 0; turn < cfg.Turns; turn++ {
		select {
		case <-ctx.Done():
			result.Survivors = countSurvivors(ps)
			return result, ctx.Err()
		default:
		}

		parallelFor(len(ps), workers, minChunk, func(start, end int) {
			sub := ps[start:end]
			for _, e := range elems {
				e.Track(sub)
			}
		})

		for i := range ps {
			if !lost[i] && ps[i].Lost() {
				lost[i] = true
				result.Losses = append(result.Losses, Loss{Index: i, Turn: turn})
			}
		}
		result.Turns = turn + 1

		for _, obs := range t.observers {
			obs.OnTurn(turn, ps)
		}
	}

	result.Survivors = countSurvivors(ps)
	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Turns < 1 {
		return fmt.Errorf("track: turns must be positive, got %d", cfg.Turns)
	}
	return nil
}

func countSurvivors(ps beam.Bunch) int {
	n := 0
	for i := range ps {
		if !ps[i].Lost() {
			n++
		}
	}
	return n
}

// parallelFor splits [0, n) into contiguous chunks and runs fn on each
// from its own goroutine. Small ranges run inline.
func parallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
