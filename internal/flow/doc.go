// Package flow hosts user flows: stacks of screens that hand a task to each
// other through launch intents and keep it across destruction through restart
// state. It is the collaborator the task package expects on the other side of
// its hooks, and it enforces the contract screens must follow: store the task
// into every outgoing intent, resolve it with LoadOnCreate when a screen is
// (re)created, and never share a task by reference between screens.
//
// A Flow is not safe for concurrent use on its own; Manager serializes access
// for hosts that serve several callers.
package flow
