// Package retrieval selects the passages of a document most relevant to a question.
//
// Two strategies are available:
//   - Similarity ranks chunks by cosine similarity between the question
//     embedding and each chunk embedding
//   - Rerank sends the question and the chunk texts to a cross-encoder
//     reranking service and keeps its top results
//
// Both return at most K passages (3 by default), most relevant first. The
// Retriever ties them to storage and the AI services; SimilarityRetriever and
// RerankRetriever are usable on their own over any slice of chunks.
package retrieval
