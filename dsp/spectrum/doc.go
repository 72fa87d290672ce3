// Package spectrum computes one-sided amplitude spectra of real signals.
//
// [Analyze] runs the fixed analysis chain used for accelerometer captures:
// mean removal, Hann windowing, DFT, amplitude normalisation by the sample
// count and selection of the strictly positive frequency bins. Bin
// frequencies follow the numpy.fft.fftfreq convention, so an N-point signal
// yields exactly (N-1)/2 positive bins.
//
// Two transform backends are available. algo-fft plans are used for
// power-of-two lengths; gonum's dsp/fourier handles every other length.
package spectrum
