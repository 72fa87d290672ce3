// Package resample maps irregularly sampled signals onto a uniform time grid.
//
// [Grid] builds the target timestamps with numpy.arange semantics (start
// included, stop excluded) and [Interpolate] evaluates a piecewise-linear
// interpolant at those timestamps. Queries outside the original time span
// are extrapolated linearly from the outermost segment by default, or held
// at the boundary value with [ExtrapolateHold].
//
// Common workflow:
//
//	grid, values, err := resample.Uniform(t, z, 10000, resample.WithWindow(4))
package resample
