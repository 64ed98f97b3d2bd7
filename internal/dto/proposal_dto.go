package dto

import (
	"time"

	"sow-studio-be/pkg/lexical"
	"sow-studio-be/pkg/pricing"

	"github.com/google/uuid"
)

type CreateThreadRequest struct {
	Title string `json:"title"`
}

type CreateThreadResponse struct {
	ThreadId   uuid.UUID `json:"thread_id"`
	DocumentId uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
}

type AttachmentDTO struct {
	Name          string `json:"name" validate:"required"`
	Mime          string `json:"mime" validate:"required"`
	ContentString string `json:"contentString" validate:"required"`
}

type SendTurnRequest struct {
	ThreadId    uuid.UUID       `json:"thread_id" validate:"required"`
	Content     string          `json:"content" validate:"required,min=1"`
	Attachments []AttachmentDTO `json:"attachments" validate:"dive"`
}

type SendTurnResponse struct {
	TurnId   uuid.UUID `json:"turn_id"`
	ThreadId uuid.UUID `json:"thread_id"`
	Status   string    `json:"status"`
}

type TurnDTO struct {
	Id             uuid.UUID                   `json:"id"`
	Role           string                      `json:"role"`
	Content        string                      `json:"content"`
	Pricing        *pricing.MultiScopeDocument `json:"pricing,omitempty"`
	Status         string                      `json:"status"`
	FailureMessage string                      `json:"failure_message,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
}

type GetHistoryResponse struct {
	ThreadId uuid.UUID `json:"thread_id"`
	Turns    []TurnDTO `json:"turns"`
}

type DocumentResponse struct {
	Id        uuid.UUID            `json:"id"`
	ThreadId  uuid.UUID            `json:"thread_id"`
	Title     string               `json:"title"`
	Tree      *lexical.LexicalRoot `json:"tree"`
	Markdown  string               `json:"markdown"`
	UpdatedAt *time.Time           `json:"updated_at,omitempty"`
}

type RateCardEntryDTO struct {
	Role string  `json:"role"`
	Rate float64 `json:"rate"`
}

type RateCardResponse struct {
	Roles []RateCardEntryDTO `json:"roles"`
}
