/*
Copyright © 2026 the lcaimpact authors.
This file is part of lcaimpact.

lcaimpact is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

lcaimpact is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with lcaimpact.  If not, see <http://www.gnu.org/licenses/>.
*/

package lcaimpact

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/lcaimpact/factors"
	"golang.org/x/sync/errgroup"
)

// SimulationRuns is the number of Monte Carlo runs in every calculation.
const SimulationRuns = 1000

// cancelCheckInterval is how many runs a worker calculates between checks
// for cancellation.
const cancelCheckInterval = 64

// Engine calculates life cycle impacts with Monte Carlo uncertainty
// propagation. An Engine may be used by several goroutines at once.
// The zero Engine uses the default tables, the standard logger, one
// worker, and a time-seeded random source.
type Engine struct {
	// Tables holds the reference data.
	Tables *factors.Tables

	// Log receives status and fallback messages.
	Log logrus.FieldLogger

	// Workers is the number of goroutines that calculate runs in parallel.
	// Results are reproducible for a given seed and number of workers.
	Workers int

	// Runs is the number of Monte Carlo runs. It should be SimulationRuns
	// except in tests.
	Runs int

	once sync.Once
	mu   sync.Mutex
	rand *rand.Rand
}

// NewEngine returns an engine that uses the given tables and random seed.
// A seed of zero seeds the engine from the current time.
func NewEngine(t *factors.Tables, seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		Tables:  t,
		Log:     logrus.StandardLogger(),
		Workers: runtime.GOMAXPROCS(-1),
		Runs:    SimulationRuns,
		rand:    rand.New(rand.NewSource(seed)),
	}
}

// setDefaults fills in the fields of an engine that was not created by
// NewEngine.
func (e *Engine) setDefaults() {
	e.once.Do(func() {
		if e.Tables == nil {
			e.Tables = factors.Default()
		}
		if e.Log == nil {
			e.Log = logrus.StandardLogger()
		}
		if e.rand == nil {
			e.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	})
}

// Distributions holds the per-run values of the modeled impact categories.
// Index i of every slice belongs to run i.
type Distributions struct {
	GWP           []float64
	Energy        []float64
	Water         []float64
	Acidification []float64

	EnergyDirect []float64
	EnergyGrid   []float64

	// StageNames and Transport hold the name and per-run emissions
	// [kg CO2-eq] of each transport stage.
	StageNames []string
	Transport  [][]float64
}

func newDistributions(runs int, stages []TransportStage) *Distributions {
	d := &Distributions{
		GWP:           make([]float64, runs),
		Energy:        make([]float64, runs),
		Water:         make([]float64, runs),
		Acidification: make([]float64, runs),
		EnergyDirect:  make([]float64, runs),
		EnergyGrid:    make([]float64, runs),
		StageNames:    make([]string, len(stages)),
		Transport:     make([][]float64, len(stages)),
	}
	for i, s := range stages {
		d.StageNames[i] = s.Name
		d.Transport[i] = make([]float64, runs)
	}
	return d
}

// set stores run r at index i.
func (d *Distributions) set(i int, r Run) {
	d.GWP[i] = r.GWP()
	d.Energy[i] = r.Energy()
	d.Water[i] = r.Water
	d.Acidification[i] = r.Acidification
	d.EnergyDirect[i] = r.EnergyDirect
	d.EnergyGrid[i] = r.EnergyGrid
	for j, t := range r.Transport {
		d.Transport[j][i] = t
	}
}

// Len returns the number of runs.
func (d *Distributions) Len() int { return len(d.GWP) }

// Values returns the distribution of a modeled category, or nil if the
// category is not modeled.
func (d *Distributions) Values(c factors.Category) []float64 {
	switch c {
	case factors.GWP:
		return d.GWP
	case factors.Energy:
		return d.Energy
	case factors.Water:
		return d.Water
	case factors.Acidification:
		return d.Acidification
	}
	return nil
}

// chunk is a contiguous range of runs calculated by one worker.
type chunk struct {
	start, end int
	seed       int64
}

// chunks splits runs into contiguous ranges, one per worker, and draws a
// seed for each from the engine's random source in chunk order.
func (e *Engine) chunks(runs int) []chunk {
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > runs {
		workers = runs
	}
	size := (runs + workers - 1) / workers

	e.mu.Lock()
	defer e.mu.Unlock()
	var o []chunk
	for start := 0; start < runs; start += size {
		end := start + size
		if end > runs {
			end = runs
		}
		o = append(o, chunk{start: start, end: end, seed: e.rand.Int63()})
	}
	return o
}

// Simulate runs the Monte Carlo simulation of s using archetype a. Every
// run is always calculated: if ctx is canceled before the simulation
// finishes, Simulate returns an error and no distributions.
func (e *Engine) Simulate(ctx context.Context, s *Scenario, a *factors.Archetype) (*Distributions, error) {
	e.setDefaults()
	runs := e.Runs
	if runs <= 0 {
		runs = SimulationRuns
	}
	start := time.Now()
	m := newModel(e.Tables, s, a)
	d := newDistributions(runs, s.TransportationStages)
	chunks := e.chunks(runs)

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range chunks {
		g.Go(func() error {
			r := rand.New(rand.NewSource(c.seed))
			for i := c.start; i < c.end; i++ {
				if (i-c.start)%cancelCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				d.set(i, m.run(r))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("lcaimpact: simulating %s: %w", s.Material, err)
	}
	e.Log.WithFields(logrus.Fields{
		"material":  s.Material,
		"archetype": a.Name,
		"content":   s.SecondaryMaterialContent,
		"runs":      runs,
		"workers":   len(chunks),
		"duration":  time.Since(start),
	}).Debug("lcaimpact: simulation finished")
	return d, nil
}
