// Package models defines HTTP request and response shapes for the API.
package models

import (
	"github.com/mnemo/mnemo/pkg/memory"
)

// SaveMemoryRequest is the body of POST /api/v1/memories.
type SaveMemoryRequest struct {
	Content string `json:"content"`
}

// SaveMemoryResponse reports the stored memory and whether the write
// created a new entry or consolidated into an existing one.
type SaveMemoryResponse struct {
	Memory  *memory.Memory `json:"memory"`
	Outcome string         `json:"outcome"`
}

// SearchResponse is the body of GET /api/v1/memories/search.
type SearchResponse struct {
	Query   string                 `json:"query"`
	Results []*memory.RankedResult `json:"results"`
	Count   int                    `json:"count"`
}

// ListResponse is the body of GET /api/v1/memories.
type ListResponse struct {
	Memories []*memory.Memory `json:"memories"`
	Count    int              `json:"count"`
}

// ClustersResponse is the body of GET /api/v1/memories/clusters.
type ClustersResponse struct {
	Clusters []*memory.Cluster `json:"clusters"`
	Count    int               `json:"count"`
}
