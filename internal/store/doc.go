// Package store defines interfaces for persisting the restart state of screens
// in a flow. The state only lives as long as the flow it belongs to: hosts
// delete it when the flow ends. Implementations live in this package (memory)
// and in internal/platform/postgres.
package store
