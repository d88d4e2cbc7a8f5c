// Package sim drives a force-directed layout one tick at a time.
//
// A [Simulation] owns an index-addressable array of bodies, one per node of
// the input snapshot. Nothing else mutates it: forces are bound to the array
// for the duration of the run, and renderers receive [Frame] copies.
//
// # Lifecycle
//
// A run moves through three states:
//
//	Initializing  alpha = 1, bodies placed, forces bound
//	Ticking       alpha decays geometrically toward AlphaTarget
//	Settled       alpha < AlphaMin; further ticks have negligible effect
//
// Each tick decays alpha, applies the forces in order (link, charge,
// collide, center), integrates velocities with friction, clamps every
// position into the viewport minus a buffer, and finally invokes the tick
// callback with a fresh frame. Clamping happens after the forces, as a hard
// clip, never as a force.
//
// # Scheduling
//
// [Simulation.Tick] runs one step synchronously. [Simulation.Run] ticks once
// per timer beat until the run settles or its context is cancelled; only
// one Run may be active per simulation, so ticks never overlap. A
// [Controller] replaces runs when the data or viewport changes and cancels
// the old run's timer.
//
// # Determinism
//
// Unplaced nodes are seeded on a phyllotaxis spiral around the viewport
// center (or uniformly at random with [PlacementRandom]). All tie-breaks
// draw from a PCG source seeded with [WithSeed], default 42, so two runs
// over the same snapshot, viewport and options produce identical frames.
//
// # Radius
//
// Node draw radius shrinks with distance from the root:
//
//	radius = 13 - 2.2 * log2(maxDepth - depth)
//
// where maxDepth is the root depth plus one. A node whose depth leaves no
// room for the logarithm is degenerate and drawn at the minimum radius.
package sim
