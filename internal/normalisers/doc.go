// Package normalisers provides implementations of the Normaliser interface
// for the supported upload formats. Each normaliser knows how to extract
// plain text from the bytes of one format.
//
// Normalisers are registered with the Registry at startup.
package normalisers
