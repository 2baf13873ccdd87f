// Package task models the pending user intent that travels with a multi-screen
// flow: searching entries for a URL, picking an entry to hand back to a caller,
// creating a new entry, or nothing at all. A task is never shared between
// screens by reference. It is written into a bundle.Container by the screen that
// launches the next one and rebuilt from that container by the Registry, so a
// screen that is destroyed and recreated can always recover the task it held.
package task
