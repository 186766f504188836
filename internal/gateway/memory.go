package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryGateway is an in-memory Gateway used by tests and the dev mode.
// Records round-trip through JSON so typed records and partial patches
// compose the same way they do against the document store.
type MemoryGateway struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		collections: make(map[string]map[string]map[string]any),
	}
}

var _ Gateway = (*MemoryGateway)(nil)

func toDocument(record any) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Create stores the record under a fresh uuid.
func (g *MemoryGateway) Create(ctx context.Context, collection string, record any) (string, error) {
	doc, err := toDocument(record)
	if err != nil {
		return "", persistErr("marshal", collection, err)
	}

	id := uuid.NewString()
	doc["id"] = id

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.collections[collection] == nil {
		g.collections[collection] = make(map[string]map[string]any)
	}
	g.collections[collection][id] = doc
	return id, nil
}

// Update merges the patch into an existing document.
func (g *MemoryGateway) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	normalized, err := toDocument(patch)
	if err != nil {
		return persistErr("marshal", collection, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	doc, ok := g.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for field, value := range normalized {
		doc[field] = value
	}
	return nil
}

// Delete removes a document.
func (g *MemoryGateway) Delete(ctx context.Context, collection, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(g.collections[collection], id)
	return nil
}

// Query unmarshals all matching documents into out.
func (g *MemoryGateway) Query(ctx context.Context, collection string, filter Filter, out any) error {
	g.mu.RLock()
	docs := make([]map[string]any, 0, len(g.collections[collection]))
	for _, doc := range g.collections[collection] {
		if filter.DoctorID != "" {
			owner, _ := doc["doctorId"].(string)
			if owner != filter.DoctorID {
				continue
			}
		}
		docs = append(docs, doc)
	}
	g.mu.RUnlock()

	raw, err := json.Marshal(docs)
	if err != nil {
		return persistErr("marshal", collection, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return persistErr("unmarshal", collection, err)
	}
	return nil
}

// Get unmarshals a single document by id into out.
func (g *MemoryGateway) Get(ctx context.Context, collection, id string, out any) error {
	g.mu.RLock()
	doc, ok := g.collections[collection][id]
	g.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return persistErr("marshal", collection, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return persistErr("unmarshal", collection, err)
	}
	return nil
}
