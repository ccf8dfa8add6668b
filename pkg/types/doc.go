// Package types defines the Store and repository interfaces, entity types,
// and standard errors for the mindstore persistence core.
//
// Entities carry epoch-second timestamps and pointer-typed optional fields;
// a nil pointer means the value is absent, which is distinct from zero.
package types
