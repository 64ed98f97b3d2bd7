package contract

import (
	"context"

	"sow-studio-be/internal/entity"

	"github.com/google/uuid"
)

type ThreadRepository interface {
	Create(ctx context.Context, thread *entity.ChatThread) error
	Update(ctx context.Context, thread *entity.ChatThread) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ChatThread, error)
	FindAll(ctx context.Context) ([]*entity.ChatThread, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	Update(ctx context.Context, turn *entity.ChatTurn) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ChatTurn, error)
	FindByThreadId(ctx context.Context, threadId uuid.UUID) ([]*entity.ChatTurn, error)
}

type DocumentRepository interface {
	Save(ctx context.Context, doc *entity.ProposalDocument) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ProposalDocument, error)
	FindByThreadId(ctx context.Context, threadId uuid.UUID) (*entity.ProposalDocument, error)
}
