// Package ingestion provides pipeline orchestration for indexing documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Windowing source segments into chunks
//   - Writing the document and chunks to storage
//   - Generating embeddings asynchronously
//   - Running signal detection asynchronously
//
// Processing is performed concurrently using worker pools to maximize
// throughput. Errors during async processing are logged but do not fail the
// ingestion operation; a chunk whose embedding failed stays searchable
// through the lexical path until a re-embedding sweep picks it up.
package ingestion
