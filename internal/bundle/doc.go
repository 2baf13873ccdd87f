// Package bundle provides the key-value containers that carry screen state
// across boundaries. A Bundle plays the role of restart state (it survives the
// destruction and recreation of one screen), and an Intent is the message used
// to launch a new screen. Both expose the same Container surface, so code that
// serializes into them does not need to know which one it is writing to.
package bundle
