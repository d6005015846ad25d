// Package neighbors ranks gallery images by visual similarity to the item
// being analyzed. Embeddings come from an Embedder; the default is a cheap
// byte-hash embedding so the pipeline works without a model runtime.
package neighbors
