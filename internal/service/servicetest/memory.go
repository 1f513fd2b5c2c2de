// Package servicetest provides in-memory doubles for exercising the service
// and HTTP layers without a MongoDB deployment.
package servicetest

import (
	"context"
	"strings"
	"sync"

	"electronicos-api/internal/database"
	"electronicos-api/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MemoryRepository mimics the collection semantics the service relies on:
// numeric codigo/precio comparison, case-insensitive substring search and
// $set merges on the first matching document.
type MemoryRepository struct {
	mu   sync.Mutex
	docs []model.Electronico

	// Err, when set, is returned by every operation.
	Err error
}

func NewMemoryRepository(seed ...model.Electronico) *MemoryRepository {
	r := &MemoryRepository{}
	for _, d := range seed {
		r.docs = append(r.docs, clone(d))
	}
	return r
}

func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

func (r *MemoryRepository) FindAll(ctx context.Context) ([]model.Electronico, error) {
	return r.filter(func(model.Electronico) bool { return true })
}

func (r *MemoryRepository) FindByCodigo(ctx context.Context, codigo int64) (model.Electronico, error) {
	docs, err := r.filter(codigoIs(codigo))
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

func (r *MemoryRepository) FindByNombre(ctx context.Context, nombre string) ([]model.Electronico, error) {
	return r.filter(containsFold(model.FieldNombre, nombre))
}

func (r *MemoryRepository) FindByCategoria(ctx context.Context, categoria string) ([]model.Electronico, error) {
	return r.filter(containsFold(model.FieldCategoria, categoria))
}

func (r *MemoryRepository) FindByPrecioMin(ctx context.Context, precio int64) ([]model.Electronico, error) {
	return r.filter(func(d model.Electronico) bool {
		v, ok := number(d[model.FieldPrecio])
		return ok && v >= float64(precio)
	})
}

func (r *MemoryRepository) Insert(ctx context.Context, doc model.Electronico) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := doc[model.FieldID]; !ok {
		doc[model.FieldID] = primitive.NewObjectID()
	}
	r.docs = append(r.docs, clone(doc))
	return nil
}

func (r *MemoryRepository) Merge(ctx context.Context, codigo int64, fields model.Electronico) (*mongo.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	match := codigoIs(codigo)
	for _, d := range r.docs {
		if match(d) {
			for k, v := range fields {
				d[k] = v
			}
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return &mongo.UpdateResult{}, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, codigo int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	match := codigoIs(codigo)
	for i, d := range r.docs {
		if match(d) {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *MemoryRepository) filter(keep func(model.Electronico) bool) ([]model.Electronico, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]model.Electronico, 0)
	for _, d := range r.docs {
		if keep(d) {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func codigoIs(codigo int64) func(model.Electronico) bool {
	return func(d model.Electronico) bool {
		v, ok := number(d[model.FieldCodigo])
		return ok && v == float64(codigo)
	}
}

func containsFold(field, term string) func(model.Electronico) bool {
	term = strings.ToLower(term)
	return func(d model.Electronico) bool {
		s, ok := d[field].(string)
		return ok && strings.Contains(strings.ToLower(s), term)
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func clone(d model.Electronico) model.Electronico {
	out := make(model.Electronico, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Connector counts connections and releases, failing every Connect when Err is set.
type Connector struct {
	mu       sync.Mutex
	Err      error
	Opened   int
	Released int
}

func (c *Connector) Connect(ctx context.Context) (*database.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.Opened++
	return database.NewConn(nil, nil, func(context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.Released++
		return nil
	}), nil
}

// Balanced reports whether every opened connection was released.
func (c *Connector) Balanced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Opened == c.Released
}
