// Package rag provides the retrieval layer: the vector store contract with
// in-memory and SQLite-backed implementations, the embedding client, the
// two search algorithms (similarity and maximal marginal relevance), and
// token-based document chunking for ingestion.
package rag
