// Package domain contains the core types of the flume pipeline:
// stages, ability specs, the execution state record, lifecycle events
// and the error taxonomy. It has no dependencies on the runtime or on
// any adapter, so every other package can import it freely.
package domain
