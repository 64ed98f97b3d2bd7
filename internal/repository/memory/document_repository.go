package memory

import (
	"context"
	"sync"
	"time"

	"sow-studio-be/internal/entity"
	"sow-studio-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type DocumentRepository struct {
	cache *cache.Cache

	mu       sync.RWMutex
	byThread map[uuid.UUID]uuid.UUID
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		cache:    cache.New(cache.NoExpiration, 10*time.Minute),
		byThread: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *DocumentRepository) Save(ctx context.Context, doc *entity.ProposalDocument) error {
	if _, found := r.cache.Get(doc.Id.String()); found {
		now := time.Now()
		doc.UpdatedAt = &now
	}
	r.cache.Set(doc.Id.String(), doc, cache.NoExpiration)
	r.mu.Lock()
	r.byThread[doc.ThreadId] = doc.Id
	r.mu.Unlock()
	return nil
}

func (r *DocumentRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.ProposalDocument, error) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.ProposalDocument), nil
	}
	return nil, contract.ErrDocumentNotFound
}

func (r *DocumentRepository) FindByThreadId(ctx context.Context, threadId uuid.UUID) (*entity.ProposalDocument, error) {
	r.mu.RLock()
	id, ok := r.byThread[threadId]
	r.mu.RUnlock()
	if !ok {
		return nil, contract.ErrDocumentNotFound
	}
	return r.FindById(ctx, id)
}
