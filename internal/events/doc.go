// Package events holds the event registry of the tracker.
//
// Producers such as the GitHub webhook handler append Events to a Handler at
// any time, including before the background runtime has started. Once the
// runtime is running, the Handler's dispatcher spawns one supervised task per
// event, in the order the events were appended, and passes every task the same
// ProcessInfo.
//
// The primary components are:
// - Event: a unit of work processed in the background
// - ProcessInfo: the shared dependencies handed to every event
// - Handler: the registry and dispatcher
// - Emitter: the interface producers depend on
package events
