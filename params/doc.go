// Package params defines the static metadata and sample types shared by the
// reparameterisation and proposal layers.
//
// 🚀 What is params?
//
//	The leaf vocabulary of gwarp:
//		• Descriptor — name, prior bounds and topology of one physical parameter
//		• Topology   — linear, bounded, periodic, reflective or composite
//		• Point      — one sample, keyed by parameter name (never positional)
//
// A Descriptor is immutable once constructed and validated. A Point is a
// plain map so that physical and transformed spaces may carry different
// parameter sets without any silent positional misalignment.
//
// ⚙️ Usage:
//
//	d := params.Descriptor{
//	  Name:     "ra",
//	  Lower:    0,
//	  Upper:    2 * math.Pi,
//	  Topology: params.Periodic,
//	}
//	if err := d.Validate(); err != nil {
//	  // handle params.ErrConfiguration
//	}
//
// See the reparam package for how descriptors select default transforms.
package params
