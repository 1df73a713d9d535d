// Package dynamo provides the shared primitives of the particle simulation engine.
//
// The package defines the types every solver and runner agrees on:
//
//   - [Stepper]: anything that advances by one rendered frame
//   - [SolverConfig]: tuning for the constraint (PBD) solver
//   - [FieldConfig]: tuning for the force-field (sphere) solver
//   - [SimulationError]: failure raised from inside a tick
//
// # Example
//
//	space, _ := pbd.NewSpace(dynamo.DefaultSolverConfig())
//	anchor, _ := space.AddParticle(vecmath.Vec2{}, vecmath.Vec2{}, 0, false)
//	bob, _ := space.AddParticle(vecmath.Vec2{X: 50}, vecmath.Vec2{}, 1, true)
//	_ = space.AddConstraint(anchor, bob, 50)
//	err := space.Step(0.01)
//
// # Thread Safety
//
// Spaces are NOT thread-safe and not reentrant. The caller sequences ticks
// and any scene mutation between them. Independent spaces share nothing and
// may run on separate goroutines.
package dynamo
