// Package installer copies indexed items into a data repository and writes
// the repository's index.json.
//
// Files are copied to {root}/{collectionId}/{itemId}/{name} and their paths
// are rewritten to /repository/{collectionId}/{itemId}/{name}, the URLs the
// viewer resolves. Files missing from the source are reported and dropped
// from the installed item.
package installer
