// Package gwarp augments a nested-sampling engine with coordinate
// reparameterisations and proposal strategies for gravitational-wave
// parameter estimation.
//
// 🚀 What is gwarp?
//
//	A library that keeps accept/reject probabilities correct when a
//	flow-based proposal samples in a transformed coordinate system:
//		• Transform library: periodic angles, joint sky pairs,
//		  reflective bounds, volumetric distance priors
//		• Composite engine: ordered, Jacobian-tracking bidirectional maps
//		  over the full parameter vector
//		• Default catalog: recommended transforms for well-known
//		  gravitational-wave parameter names
//		• Proposal wrappers: plain, augmented-dimension, clustering and
//		  MCMC-refinement strategies over any base proposal
//
// ✨ Why choose gwarp?
//
//   - Correct by construction – every forward map carries its log-Jacobian,
//     every inverse carries the negation
//   - Explicit errors – domain violations and coverage gaps are sentinel
//     errors, never silent clipping
//   - Deterministic – all randomness flows from seeded, derivable streams
//
// Under the hood, everything is organized under three subpackages:
//
//	params/   — parameter descriptors, topologies and the Point type
//	reparam/  — transform library, composite engine and default catalog
//	proposal/ — proposal wrapper and the augmented/clustering/MCMC variants
//
// The host engine only ever sees physical-space points and densities; the
// base proposal only ever sees transformed-space points. gwarp sits between
// the two and keeps the change-of-variables bookkeeping honest:
//
//	log p_physical(x) = log p_transformed(T(x)) + log|det J_T(x)|
//
//	go get github.com/avayla/gwarp
package gwarp
