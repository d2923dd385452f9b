// Package testsupport builds small archive trees on disk for tests.
//
// The fixture archive holds five items in three collections (DT1, NT1 and
// NT5). Optional broken folders exercise the structural and extraction
// error paths without changing the item and collection counts.
package testsupport
