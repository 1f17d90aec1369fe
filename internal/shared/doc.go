// Package shared holds cross-cutting helpers that do not belong to any
// single domain package.
//
// # Structure
//
//   - testutil: log capture and assertion helpers used by package tests
//
// Code here must stay free of domain logic and of dependencies on other
// internal packages, so that any package can import it without cycles.
package shared
