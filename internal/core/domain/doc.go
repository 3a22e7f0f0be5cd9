// Package domain defines the core business entities for docintel.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document with its extracted text
//   - Chunk: A retrievable segment of a document
//   - Answer: The outcome of a guarded question-answering cycle
//   - ShipmentRecord: The fixed-schema record extracted from a document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
