// Package analysis turns a run's step log into numbers and pictures.
//
//   - [Series]: one column of the step log as a float series
//   - [Summarize]: mean, spread and percentiles of a series
//   - [PowerSpectrum]: magnitude spectrum of a series
//   - [ScatterToASCII]: one series against another as text
//
// # Periodic Load
//
// A grid scene with few movers reports candidates in bursts whenever a
// mover crosses a lattice row. The dominant frequency shows the period:
//
//	cand, _ := analysis.Series(steps, "candidates")
//	f, _ := analysis.DominantFrequency(cand, dt)
package analysis
