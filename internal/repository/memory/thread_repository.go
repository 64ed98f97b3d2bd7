package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"sow-studio-be/internal/entity"
	"sow-studio-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type ThreadRepository struct {
	cache *cache.Cache

	// Insertion order for FindAll; go-cache iterates unordered.
	mu    sync.RWMutex
	order []uuid.UUID
}

func NewThreadRepository() *ThreadRepository {
	return &ThreadRepository{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (r *ThreadRepository) Create(ctx context.Context, thread *entity.ChatThread) error {
	r.cache.Set(thread.Id.String(), thread, cache.NoExpiration)
	r.mu.Lock()
	r.order = append(r.order, thread.Id)
	r.mu.Unlock()
	return nil
}

func (r *ThreadRepository) Update(ctx context.Context, thread *entity.ChatThread) error {
	if _, found := r.cache.Get(thread.Id.String()); !found {
		return contract.ErrThreadNotFound
	}
	now := time.Now()
	thread.UpdatedAt = &now
	r.cache.Set(thread.Id.String(), thread, cache.NoExpiration)
	return nil
}

func (r *ThreadRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.ChatThread, error) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.ChatThread), nil
	}
	return nil, contract.ErrThreadNotFound
}

func (r *ThreadRepository) FindAll(ctx context.Context) ([]*entity.ChatThread, error) {
	r.mu.RLock()
	ids := make([]uuid.UUID, len(r.order))
	copy(ids, r.order)
	r.mu.RUnlock()

	threads := make([]*entity.ChatThread, 0, len(ids))
	for _, id := range ids {
		if x, found := r.cache.Get(id.String()); found {
			threads = append(threads, x.(*entity.ChatThread))
		}
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].CreatedAt.Before(threads[j].CreatedAt)
	})
	return threads, nil
}

func (r *ThreadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.cache.Delete(id.String())
	r.mu.Lock()
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	return nil
}
