// Package contracts provides the core types shared by the interceptor runtime.
//
// This package defines:
//   - InterceptorSpec: identifies one wrapper behavior plus its configuration
//   - Kind: the closed set of wrapper behaviors and the sites they may attach to
//   - Error kinds surfaced by composed constructors and attach-time validation
//
// Specs are plain values. They are immutable once attached to a chain and can be
// loaded from YAML or JSON declarations.
package contracts
