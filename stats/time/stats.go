// Package time summarises a sampled acceleration signal in the time domain.
package time

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds time-domain statistics of one signal.
type Stats struct {
	Length int
	DC     float64 // mean
	RMS    float64
	// ACRMS is the RMS after removing DC, i.e. the population standard deviation.
	ACRMS      float64
	Max        float64
	MaxPos     int
	Min        float64
	MinPos     int
	Peak       float64 // max(|max|, |min|)
	PeakToPeak float64
	// CrestFactor is Peak / RMS, 0 for a silent signal.
	CrestFactor float64
	Variance    float64 // population
	Skewness    float64
	Kurtosis    float64 // excess
	// ZeroCrossings counts sign changes of the mean-removed signal.
	ZeroCrossings int
}

// Calculate computes all statistics. An empty signal yields the zero Stats.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	mean, variance := stat.PopMeanVariance(signal, nil)
	maxPos := floats.MaxIdx(signal)
	minPos := floats.MinIdx(signal)

	s := Stats{
		Length:        n,
		DC:            mean,
		RMS:           RMS(signal),
		ACRMS:         math.Sqrt(variance),
		Max:           signal[maxPos],
		MaxPos:        maxPos,
		Min:           signal[minPos],
		MinPos:        minPos,
		Variance:      variance,
		ZeroCrossings: zeroCrossings(signal, mean),
	}
	s.Peak = math.Max(math.Abs(s.Max), math.Abs(s.Min))
	s.PeakToPeak = s.Max - s.Min

	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
	}

	if n > 3 && variance > 0 {
		s.Skewness = stat.Skew(signal, nil)
		s.Kurtosis = stat.ExKurtosis(signal, nil)
	}

	return s
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return floats.Norm(signal, 2) / math.Sqrt(float64(len(signal)))
}

// ZeroCrossings returns the number of sign changes between consecutive
// samples.
func ZeroCrossings(signal []float64) int {
	return zeroCrossings(signal, 0)
}

func zeroCrossings(signal []float64, level float64) int {
	var count int
	for i := 1; i < len(signal); i++ {
		if (signal[i-1]-level)*(signal[i]-level) < 0 {
			count++
		}
	}
	return count
}
