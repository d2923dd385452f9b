// Package device prepares a load target for the embedded player: it resets
// the html and repository directories, installs the collection viewer and
// guards the target with a lock file while a load runs.
package device
