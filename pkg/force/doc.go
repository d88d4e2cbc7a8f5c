// Package force provides the force functions that drive a depforce layout.
//
// A [Force] is a two-phase object: it is constructed with its parameters,
// bound to the simulation's body array with [Force.Initialize], and then
// applied once per tick with [Force.Apply] and the current alpha. Forces
// never own the bodies; the simulation does, and it binds the same slice
// to every force so index i always refers to node i of the snapshot.
//
// # Forces
//
//   - [LinkForce]: pulls the two endpoints of each edge toward a target
//     separation, weighted by node degree.
//   - [ManyBody]: pairwise repulsion whose magnitude falls off with distance.
//     Exact by default; Barnes-Hut approximated when Theta > 0.
//   - [Collide]: pushes apart discs that overlap.
//   - [Center]: pulls every node individually toward a fixed point.
//
// Link, charge and collide adjust velocities. Center moves positions
// directly. Forces are additive: later forces see the velocities and
// positions left by earlier ones in the same tick.
//
// # Composition
//
// [Compose] builds the four forces in their fixed order from a snapshot,
// a viewport and [Params]. Unknown edge endpoints are reported as
// MALFORMED_GRAPH before any force is built, so no force can meet an
// unresolved endpoint during a tick.
//
// # Determinism
//
// Coincident bodies are separated by a tiny random offset drawn from the
// *rand.Rand passed to Initialize. With a seeded source and identical
// starting positions, every tick is reproducible.
package force
