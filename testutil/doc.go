// Package testutil provides test data for path stores.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(seed)
//	axes := rng.Axes(3, 1024)        // 3 axes, uniform [0, 1)
//	ramp := testutil.Ramp(100, 2)    // 0, 2, 4, ...
package testutil
