// Package api define types and interfaces common to allocators and their
// instrumentation, implemented by malloc and consumed by tools.
package api
