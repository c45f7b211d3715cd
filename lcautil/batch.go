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

package lcautil

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/lcaimpact"
	"github.com/spatialmodel/lcaimpact/factors"
	"github.com/spatialmodel/lcaimpact/internal/hash"
	"golang.org/x/sync/errgroup"
)

// Batch assesses several scenarios in parallel. Every scenario is simulated
// by its own engine with the same seed, so the report of a scenario does not
// depend on the other scenarios in the batch. Identical scenarios are only
// simulated once.
type Batch struct {
	Tables *factors.Tables

	// Seed is the random seed of every scenario.
	Seed int64

	// Workers is the number of simulation workers used by each scenario.
	Workers int

	Log logrus.FieldLogger

	cache *requestcache.Cache
}

// NewBatch returns a new batch runner. A seed of zero is replaced with one
// drawn from the current time, and a workers value of zero is replaced with
// the number of processors.
func NewBatch(t *factors.Tables, seed int64, workers int, log logrus.FieldLogger) *Batch {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	b := &Batch{
		Tables:  t,
		Seed:    seed,
		Workers: workers,
		Log:     log,
	}
	b.cache = requestcache.NewCache(b.analyze, runtime.GOMAXPROCS(-1),
		requestcache.Deduplicate(), requestcache.Memory(100))
	return b
}

// analyze is the requestcache processor for a single scenario.
func (b *Batch) analyze(ctx context.Context, request interface{}) (interface{}, error) {
	s := request.(*lcaimpact.Scenario)
	e := lcaimpact.NewEngine(b.Tables, b.Seed)
	e.Workers = b.Workers
	e.Log = b.Log
	return e.Analyze(ctx, s)
}

// Run returns a report for each of the scenarios, in the same order.
// Scenarios with identical contents share a report. If any scenario fails,
// the others are canceled.
func (b *Batch) Run(ctx context.Context, scenarios []*lcaimpact.Scenario) ([]*lcaimpact.Report, error) {
	reports := make([]*lcaimpact.Report, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range scenarios {
		key := hash.Key(s)
		b.Log.WithFields(logrus.Fields{
			"material": s.Material,
			"key":      key,
		}).Debug("lcaimpact: queuing scenario")
		g.Go(func() error {
			r, err := b.cache.NewRequest(ctx, s, key).Result()
			if err != nil {
				return fmt.Errorf("lcaimpact: scenario %d (%s): %v", i+1, s.Material, err)
			}
			reports[i] = r.(*lcaimpact.Report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
