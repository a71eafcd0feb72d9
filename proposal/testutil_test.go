package proposal_test

import (
	"math"

	"github.com/avayla/gwarp/params"
)

// stubBase is a scriptable Base implementation. Each hook may be nil, in
// which case a benign default is used.
type stubBase struct {
	fitCalls [][]params.Point

	sample  func(n int) ([]params.Point, error)
	logProb func(p params.Point) (float64, error)
}

func (s *stubBase) Fit(points []params.Point) error {
	copied := make([]params.Point, len(points))
	for i, p := range points {
		copied[i] = p.Clone()
	}
	s.fitCalls = append(s.fitCalls, copied)
	return nil
}

func (s *stubBase) SampleTransformed(n int) ([]params.Point, error) {
	if s.sample != nil {
		return s.sample(n)
	}
	out := make([]params.Point, n)
	for i := range out {
		out[i] = params.Point{}
	}
	return out, nil
}

func (s *stubBase) LogProbTransformed(p params.Point) (float64, error) {
	if s.logProb != nil {
		return s.logProb(p)
	}
	return 0, nil
}

// lastFit returns the most recent population handed to Fit, nil if none.
func (s *stubBase) lastFit() []params.Point {
	if len(s.fitCalls) == 0 {
		return nil
	}
	return s.fitCalls[len(s.fitCalls)-1]
}

// constPoints returns a sampler that always emits clones of p.
func constPoints(p params.Point) func(int) ([]params.Point, error) {
	return func(n int) ([]params.Point, error) {
		out := make([]params.Point, n)
		for i := range out {
			out[i] = p.Clone()
		}
		return out, nil
	}
}

// stdNormalLogProb sums the standard-normal log-density over the named keys.
func stdNormalLogProb(p params.Point, names []string) float64 {
	var lp float64
	for _, n := range names {
		v := p[n]
		lp += -0.5*v*v - 0.5*math.Log(2*math.Pi)
	}
	return lp
}
