// Package reparam implements bidirectional, Jacobian-tracking coordinate
// transforms for physically structured gravitational-wave parameters, the
// composite engine that chains them into one map over the full parameter
// vector, and the default catalog keyed by canonical parameter names.
//
// 🚀 What is reparam?
//
//	The coordinate layer between a nested-sampling engine (physical space)
//	and a flow-based proposal (transformed space):
//		• Angle / AngleSine   — periodic and sine-prior angles
//		• AnglePair           — joint sky position (ra-dec, az-zen)
//		• Rescale             — affine map to [-1,1], reflective option,
//		                        fittable bounds
//		• Distance            — volumetric-prior distances
//		• DeltaPhase          — phase relative to psi and theta_jn
//		• LISAExtrinsicSymmetry — folds the degenerate LISA extrinsic space
//		• Composite           — ordered chain with coverage validation
//		• Registry/DefaultSet — string-keyed factories + GW name aliases
//
// ✨ Correctness contract:
//
//   - Forward and Inverse are mutual inverses up to floating-point tolerance.
//   - logJ(Forward) == −logJ(Inverse) for the same physical/transformed pair.
//   - Out-of-domain inputs of non-reflective transforms fail with ErrDomain;
//     non-finite Jacobians are ErrDomain too, never silently clipped.
//   - Composite calls are all-or-nothing: on error, no partial output escapes.
//
// ⚙️ Usage:
//
//	comp, err := reparam.DefaultSet(descriptors, nil, nil)
//	if err != nil { ... }           // reparam.ErrConfiguration
//	xp, logJ, err := comp.Forward(x)
//	if err != nil { ... }           // reparam.ErrDomain
//
// See the proposal package for how a composite wraps a base proposal.
package reparam
