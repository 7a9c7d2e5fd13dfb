// Package sim drives box-shaped bodies through a scene and feeds their
// motion into a broad phase.
//
//   - [Scene]: bodies, their dynamics and the confining bounds
//   - [Integrator]: numerical stepper over the packed position/velocity [State]
//   - [World]: one live scene with its broad phase
//   - [Simulator]: runs a World for a number of steps with metrics and observers
//
// # Example
//
//	scene := scenes.NewGas(scenes.DefaultParams())
//	s := sim.New(scene, integrators.NewVerlet(), log)
//	result, _ := s.Run(ctx, sim.DefaultConfig())
//
// # Thread Safety
//
// World and Simulator are NOT thread-safe. Candidate pairs are checked
// against tight boxes on several goroutines, but only inside Step and only
// over a snapshot. Use [Ensemble] to run independent seeds in parallel.
package sim
