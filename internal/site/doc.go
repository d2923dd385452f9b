// Package site builds the browsing views of an index and generates the
// self-contained static website written to portable disks.
//
// The generated tree is rooted at {target}/html:
//
//	index.html                        collections, genres and speakers
//	{collectionId}/{itemId}/files/    file browser page and transcriptions
//	{collectionId}/{itemId}/images/   images and their previews
//	{collectionId}/{itemId}/media/    audio and video
//	{collectionId}/{itemId}/documents/
//	{collectionId}/{itemId}/information/item.json
package site
