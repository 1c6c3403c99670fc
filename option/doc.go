// Package option declares the configurable values of a decorator.
//
// An option is declared as a Spec (mutable: binding name and type are filled
// in once by the builder) and frozen into a Descriptor that never changes.
// A Set groups descriptors, translates external names (aliases) to binding
// names and resolves call overrides into a fresh Values map, so resolution
// never mutates shared state.
//
// Every value a template sees went through Descriptor.Write:
//   - string normalizers (WithNormalizer)
//   - weak type conversion (Coerce)
//   - the type check (Validate): runtime type equals the declared type, or
//     either side is Any
//   - the validator (WithValidator) and expression rules (WithRule)
//
// Unknown override names are rejected with ErrUnknownOption.
package option
