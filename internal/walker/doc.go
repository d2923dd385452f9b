// Package walker finds catalog item folders under an archive root.
//
// The walk uses an explicit stack instead of recursion and visits
// directories in lexical pre-order, so its output is stable for an
// unchanged tree. A directory holding exactly one catalog file becomes a
// ScanEntry; its subdirectories are still visited. A directory with more
// than one catalog file is reported as a StructuralError and skipped.
// Directories that cannot be read are reported and the walk goes on.
package walker
