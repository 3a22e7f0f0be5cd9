// Package filesystem provides the on-disk document store.
//
// # Layout
//
// Under the data directory:
//
//	vector_store/<id>/index.bin    sealed flat index
//	vector_store/<id>/chunks.json  chunk texts in position order
//	uploads/<id><ext>.enc          encrypted original upload
//
// Every file is written to a temporary sibling and renamed into place, so a
// crash never leaves a partially written index or chunk list behind.
package filesystem
