// Package catalog reads PDSC_ADMIN catalog XML files and turns them into
// model items and collection fragments.
//
// Decoding is typed: Document mirrors the elements the loader uses, and
// elements that may appear once or many times decode straight into slices,
// so single and repeated siblings are handled the same way. Every optional
// element defaults to the empty string.
//
// The Extractor applies the normalization rules:
//   - the identifier is split on its first "-" into collection and item ids
//   - listed files are classified by extension into images, audio, video,
//     documents and transcriptions
//   - images whose name contains "thumb" are previews, not content
//   - agents become people sorted by name
//   - bracketed admin comments become classifications
//   - item, subject and content languages are merged, deduplicated and sorted
//   - song and instrumental music categories collapse to "music"
package catalog
