// Package recording loads accelerometer captures from device CSV exports.
//
// A [Layout] describes how a device writes its file: how many preamble lines
// to skip or which header token marks the column row, which columns hold the
// timestamp and the X/Y/Z accelerations, and the time unit. [Load] parses a
// file into a [Recording] with timestamps converted to seconds. Every
// failure is fatal and reported with one of the package's sentinel errors.
package recording
