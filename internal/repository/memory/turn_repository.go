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

type TurnRepository struct {
	cache *cache.Cache

	mu       sync.RWMutex
	byThread map[uuid.UUID][]uuid.UUID
}

func NewTurnRepository() *TurnRepository {
	return &TurnRepository{
		cache:    cache.New(cache.NoExpiration, 10*time.Minute),
		byThread: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *TurnRepository) Create(ctx context.Context, turn *entity.ChatTurn) error {
	r.cache.Set(turn.Id.String(), turn, cache.NoExpiration)
	r.mu.Lock()
	r.byThread[turn.ThreadId] = append(r.byThread[turn.ThreadId], turn.Id)
	r.mu.Unlock()
	return nil
}

func (r *TurnRepository) Update(ctx context.Context, turn *entity.ChatTurn) error {
	if _, found := r.cache.Get(turn.Id.String()); !found {
		return contract.ErrTurnNotFound
	}
	r.cache.Set(turn.Id.String(), turn, cache.NoExpiration)
	return nil
}

func (r *TurnRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.ChatTurn, error) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.ChatTurn), nil
	}
	return nil, contract.ErrTurnNotFound
}

func (r *TurnRepository) FindByThreadId(ctx context.Context, threadId uuid.UUID) ([]*entity.ChatTurn, error) {
	r.mu.RLock()
	ids := make([]uuid.UUID, len(r.byThread[threadId]))
	copy(ids, r.byThread[threadId])
	r.mu.RUnlock()

	turns := make([]*entity.ChatTurn, 0, len(ids))
	for _, id := range ids {
		if x, found := r.cache.Get(id.String()); found {
			turns = append(turns, x.(*entity.ChatTurn))
		}
	}
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].CreatedAt.Before(turns[j].CreatedAt)
	})
	return turns, nil
}
