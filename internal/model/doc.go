// Package model defines the core data structures used throughout pdscload.
//
// This package contains the following main types:
//   - ScanEntry: A catalog file found by the tree walker
//   - Item: One archival item, normalized from its catalog record
//   - Collection: The aggregate of every item sharing a collection identifier
//   - Index: The items and collections of one archive, ready to serialize
//   - LoadRun: The state carried through one load pipeline run
//   - Observer: The sink for progress and diagnostic events
//
// Models live in their own package so that the walker, index builder,
// installer and report writers can share them without import cycles.
// Everything that ends up in index.json is serializable with encoding/json
// and uses the field names the viewer application expects.
package model
