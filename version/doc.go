// Package version reports build information for the heroes binary.
package version
