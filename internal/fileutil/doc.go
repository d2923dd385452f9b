// Package fileutil copies files and directory trees onto load targets.
package fileutil
