// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser / NormaliserRegistry: Extract text from uploaded bytes
//   - PostProcessorPipeline: Split text into chunks
//   - EmbeddingService: Map chunk text to vectors
//   - LLMService: Complete role-tagged prompts
//   - DocumentStore: Per-document vector index, chunks, and encrypted original
//   - Cipher: Authenticated encryption of stored originals
//   - ConfigStore / PromptStore: Configuration and prompt templates
//
// # Optional Interfaces
//
// These can be nil and the application degrades gracefully:
//
//   - DocumentCatalog: Durable document metadata (SQLite). Without it the
//     document list only covers the current process.
//   - Tokenizer: Token-accurate truncation. Without it a character
//     estimate is used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
