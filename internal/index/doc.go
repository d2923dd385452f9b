// Package index builds the item and collection index of an archive.
//
// The Builder runs the catalog extractor over every folder found by the
// walker. A folder that cannot be extracted is reported to the observer and
// skipped; only an archive without a single usable item is an error.
// Collection fragments are merged per collection id in first-seen order:
//   - items are concatenated
//   - people are deduplicated by name
//   - classifications are deduplicated by value
//   - categories are deduplicated
//   - languages are deduplicated and sorted
//
// Title, description and link come from the first fragment.
package index
