// Package reembed provides a sweep for embedding existing chunks with new
// or updated embedding models.
//
// This package supports batch processing of chunks, progress tracking, retry
// logic with exponential backoff, and vector normalization to ensure
// compatibility with cosine similarity search. By default only chunks with
// no stored vector for the target model are embedded, so the sweep doubles
// as the recovery path for ingestions whose embedding step failed.
package reembed
