// Package events publishes flow lifecycle events to interested handlers.
//
// The flow manager emits an event when a flow starts and when it ends, so
// audit or metrics consumers can follow flows without the flow package
// knowing about them. Handlers run synchronously in registration order.
package events
