// Package component defines the lifecycle contract shared by the long-lived
// parts of the heroes service and an ordered Registry that starts them in
// registration order and stops them in reverse.
package component
