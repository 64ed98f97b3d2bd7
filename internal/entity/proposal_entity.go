package entity

import (
	"time"

	"sow-studio-be/pkg/lexical"
	"sow-studio-be/pkg/pricing"

	"github.com/google/uuid"
)

type TurnStatus string

const (
	TurnStatusPending   TurnStatus = "pending"
	TurnStatusCompleted TurnStatus = "completed"
	TurnStatusFailed    TurnStatus = "failed"
	TurnStatusCancelled TurnStatus = "cancelled"
)

// ChatThread is one conversation against a proposal document.
type ChatThread struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Title      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// ChatTurn is a single user or assistant message within a thread.
type ChatTurn struct {
	Id             uuid.UUID
	ThreadId       uuid.UUID
	Role           string
	Content        string
	Pricing        *pricing.MultiScopeDocument
	Status         TurnStatus
	FailureMessage string
	CreatedAt      time.Time
}

// ProposalDocument holds the live editor tree for one SOW proposal.
type ProposalDocument struct {
	Id        uuid.UUID
	ThreadId  uuid.UUID
	Title     string
	Tree      *lexical.LexicalRoot
	CreatedAt time.Time
	UpdatedAt *time.Time
}
