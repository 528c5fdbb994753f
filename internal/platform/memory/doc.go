// Package memory provides map-backed implementations of the store interfaces
// for local runs and tests. Data is lost when the process exits.
package memory
