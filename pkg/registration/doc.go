// Package registration collects language registrations at build time and
// bakes them into a single deterministic registry artifact.
//
// # Overview
//
// A host (a compiler, a descriptor scanner, a test fixture) presents candidate
// declarations carrying the registration marker in discrete rounds. Each
// candidate is checked by the Validator; accepted candidates are held by the
// run's Accumulator. When the host signals that processing is over, the
// Serializer renders every accumulated registration into a key-sorted
// properties file written once to ArtifactPath.
//
// # Validation Rules
//
// Rules run in order and stop at the first rejection:
//
//  1. only class declarations are inspected, anything else is skipped silently
//  2. the class must be public
//  3. a nested class must be static
//  4. the class must be assignable to the base type
//  5. the class needs a public no-argument constructor, or a public final
//     INSTANCE field assignable to the base type (accepted with a deprecation warning)
//
// # Lifecycle
//
//	COLLECTING --(round with Over=true)--> FINALIZING --> DONE
//
// Rounds after DONE return ErrRunFinished.
//
// # Usage Example
//
//	run := registration.NewRun()
//	proc, err := registration.NewProcessor(run, host, sink, reporter, registration.Options{})
//	if err != nil {
//		return err
//	}
//
//	for _, candidates := range rounds {
//		if _, err := proc.Process(ctx, registration.Round{Candidates: candidates}); err != nil {
//			return err
//		}
//	}
//	result, err := proc.Process(ctx, registration.Round{Over: true})
//
// # Related Packages
//
//   - pkg/descriptors: descriptor-file host
//   - pkg/artifacts: sinks for the generated artifact
//   - pkg/properties: artifact encoding
package registration
