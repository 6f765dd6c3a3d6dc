package chroma

import "time"

const DefaultCollection = "hostel_complaints_embeddings"

type Config struct {
	URL                string
	Collection         string
	DuplicateThreshold float64
	Timeout            time.Duration
}

type Metadata struct {
	Category string `json:"category"`
}

type createCollectionRequest struct {
	Name        string            `json:"name"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	GetOrCreate bool              `json:"get_or_create"`
}

type upsertRequest struct {
	IDs        []string    `json:"ids"`
	Embeddings [][]float32 `json:"embeddings"`
	Metadatas  []Metadata  `json:"metadatas"`
	Documents  []string    `json:"documents"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// QueryResponse holds one result list per query embedding.
type QueryResponse struct {
	IDs       [][]string    `json:"ids"`
	Metadatas [][]*Metadata `json:"metadatas"`
	Distances [][]float64   `json:"distances"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

// Neighbor is one nearest-neighbor hit, nearest first.
type Neighbor struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Distance float64 `json:"distance"`
}

// Similarity converts a cosine distance into a similarity score.
func (n Neighbor) Similarity() float64 {
	return 1 - n.Distance
}
