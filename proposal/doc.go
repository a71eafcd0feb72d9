// Package proposal wraps an externally supplied base proposal (typically a
// flow-based density model) with a composite reparameterisation so that
// sampling, density evaluation and prior-volume bookkeeping stay numerically
// correct in the transformed space.
//
// 🚀 What is proposal?
//
//	The glue between a nested-sampling engine and a transformed-space
//	density model:
//		• Wrapper   — plain change-of-variables wrapping of any Base
//		• Augmented — extra latent dimensions, marginalised by construction
//		• Clustering — per-cluster base proposals mixed by membership counts
//		• MCMC      — bounded Metropolis–Hastings refinement of candidates
//
// The host engine only ever sees physical-space points; the Base only ever
// sees transformed-space points. Every variant implements the same Proposal
// contract (Sample, LogProb, Update), so the engine need not know which
// strategy — or that a transform — is in play.
//
// ✨ Correctness contract:
//
//   - LogProb returns log p_transformed(T(x)) + log|det J_T(x)| — the
//     change-of-variables rule. Omitting the correction would bias the
//     nested-sampling evidence, so it is applied in exactly one place.
//   - Sample absorbs per-candidate domain errors inside a bounded retry
//     loop and fails with ErrExhausted past the budget; LogProb never
//     absorbs a domain error.
//   - Update completes (or fails) before any later Sample/LogProb call
//     observes new state; there is no partial-update visibility.
//
// ⚙️ Usage:
//
//	cfg := proposal.DefaultConfig(descriptors, base)
//	p, err := proposal.New(cfg, proposal.WithVariant(proposal.VariantClustering),
//	  proposal.WithBaseFactory(newFlow))
//	if err != nil { ... }
//	if err := p.Update(livePoints); err != nil { ... }
//	candidates, err := p.Sample(100)
//
// Each Proposal instance is owned by a single logical caller at a time; for
// parallel evaluation construct independent instances.
package proposal
