package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"sow-studio-be/internal/constant"
	"sow-studio-be/internal/dto"
	"sow-studio-be/internal/entity"
	"sow-studio-be/internal/pkg/logger"
	"sow-studio-be/internal/repository/contract"
	"sow-studio-be/internal/websocket"
	"sow-studio-be/pkg/assistant"
	"sow-studio-be/pkg/editor"
	"sow-studio-be/pkg/events"
	"sow-studio-be/pkg/lexical"
	natspkg "sow-studio-be/pkg/nats"
	"sow-studio-be/pkg/pricing"
	"sow-studio-be/pkg/stream"
	"sow-studio-be/pkg/thinking"

	"github.com/google/uuid"
)

// ISessionService orchestrates one chat turn end to end: rate gate,
// assistant stream, pricing extraction, document rebuild and merge.
type ISessionService interface {
	CreateThread(ctx context.Context, request *dto.CreateThreadRequest) (*dto.CreateThreadResponse, error)
	ListThreads(ctx context.Context) ([]*dto.CreateThreadResponse, error)
	GetHistory(ctx context.Context, threadId uuid.UUID) (*dto.GetHistoryResponse, error)
	SendTurn(ctx context.Context, request *dto.SendTurnRequest) (*dto.SendTurnResponse, error)
	CancelTurn(ctx context.Context, threadId uuid.UUID) error
	GetDocument(ctx context.Context, documentId uuid.UUID) (*dto.DocumentResponse, error)
	GetRateCard(ctx context.Context) *dto.RateCardResponse
}

// sessionState tracks the in-flight turn for one document. At most one
// turn streams per document; a newer send cancels the older stream once
// its own first byte arrives.
type sessionState struct {
	mu              sync.Mutex
	lastSend        time.Time
	cancelInFlight  context.CancelFunc
	streamingTurnId uuid.UUID
}

type sessionService struct {
	threadRepo contract.ThreadRepository
	turnRepo   contract.TurnRepository
	docRepo    contract.DocumentRepository

	streamer  assistant.Streamer
	hub       *websocket.Hub
	publisher natspkg.EventPublisher

	logger       logger.ILogger
	streamLogger logger.ILogger

	card      *pricing.RateCard
	extractor *pricing.Extractor
	builder   *lexical.Builder
	merge     *editor.MergeEngine
	renderer  *lexical.Renderer

	workspaceSlug string
	sendInterval  time.Duration
	gstPercent    float64

	mu     sync.Mutex
	states map[uuid.UUID]*sessionState
}

func NewSessionService(
	threadRepo contract.ThreadRepository,
	turnRepo contract.TurnRepository,
	docRepo contract.DocumentRepository,
	streamer assistant.Streamer,
	hub *websocket.Hub,
	publisher natspkg.EventPublisher,
	log logger.ILogger,
	streamLog logger.ILogger,
	card *pricing.RateCard,
	workspaceSlug string,
	sendIntervalMs int,
	gstPercent float64,
) ISessionService {
	return &sessionService{
		threadRepo:    threadRepo,
		turnRepo:      turnRepo,
		docRepo:       docRepo,
		streamer:      streamer,
		hub:           hub,
		publisher:     publisher,
		logger:        log,
		streamLogger:  streamLog,
		card:          card,
		extractor:     pricing.NewExtractor(gstPercent),
		builder:       lexical.NewBuilder(),
		merge:         editor.NewMergeEngine(),
		renderer:      lexical.NewRenderer(),
		workspaceSlug: workspaceSlug,
		sendInterval:  time.Duration(sendIntervalMs) * time.Millisecond,
		gstPercent:    gstPercent,
		states:        make(map[uuid.UUID]*sessionState),
	}
}

func (s *sessionService) state(documentId uuid.UUID) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[documentId]
	if !ok {
		st = &sessionState{}
		s.states[documentId] = st
	}
	return st
}

// CreateThread opens a conversation and its empty proposal document.
func (s *sessionService) CreateThread(ctx context.Context, request *dto.CreateThreadRequest) (*dto.CreateThreadResponse, error) {
	now := time.Now()

	title := strings.TrimSpace(request.Title)
	if title == "" {
		title = "Untitled proposal"
	}

	thread := &entity.ChatThread{
		Id:        uuid.New(),
		Title:     title,
		CreatedAt: now,
	}
	doc := &entity.ProposalDocument{
		Id:        uuid.New(),
		ThreadId:  thread.Id,
		Title:     title,
		CreatedAt: now,
	}
	thread.DocumentId = doc.Id

	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Session", "Thread created", map[string]interface{}{
		"thread_id":   thread.Id,
		"document_id": doc.Id,
	})

	return &dto.CreateThreadResponse{
		ThreadId:   thread.Id,
		DocumentId: doc.Id,
		Title:      thread.Title,
		CreatedAt:  thread.CreatedAt,
	}, nil
}

func (s *sessionService) ListThreads(ctx context.Context) ([]*dto.CreateThreadResponse, error) {
	threads, err := s.threadRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.CreateThreadResponse, 0, len(threads))
	for _, t := range threads {
		response = append(response, &dto.CreateThreadResponse{
			ThreadId:   t.Id,
			DocumentId: t.DocumentId,
			Title:      t.Title,
			CreatedAt:  t.CreatedAt,
		})
	}
	return response, nil
}

func (s *sessionService) GetHistory(ctx context.Context, threadId uuid.UUID) (*dto.GetHistoryResponse, error) {
	if _, err := s.threadRepo.FindById(ctx, threadId); err != nil {
		return nil, err
	}

	turns, err := s.turnRepo.FindByThreadId(ctx, threadId)
	if err != nil {
		return nil, err
	}

	response := &dto.GetHistoryResponse{ThreadId: threadId, Turns: make([]dto.TurnDTO, 0, len(turns))}
	for _, t := range turns {
		response.Turns = append(response.Turns, dto.TurnDTO{
			Id:             t.Id,
			Role:           t.Role,
			Content:        t.Content,
			Pricing:        t.Pricing,
			Status:         string(t.Status),
			FailureMessage: t.FailureMessage,
			CreatedAt:      t.CreatedAt,
		})
	}
	return response, nil
}

// SendTurn validates the rate gate, records the user turn plus a pending
// assistant turn and hands the stream to a background goroutine. Callers
// poll history or listen on the websocket for the outcome.
func (s *sessionService) SendTurn(ctx context.Context, request *dto.SendTurnRequest) (*dto.SendTurnResponse, error) {
	thread, err := s.threadRepo.FindById(ctx, request.ThreadId)
	if err != nil {
		return nil, err
	}
	doc, err := s.docRepo.FindByThreadId(ctx, thread.Id)
	if err != nil {
		return nil, err
	}

	st := s.state(doc.Id)
	st.mu.Lock()
	if !st.lastSend.IsZero() && time.Since(st.lastSend) < s.sendInterval {
		st.mu.Unlock()
		return nil, ErrRateLimited
	}
	st.lastSend = time.Now()
	st.mu.Unlock()

	now := time.Now()
	userTurn := &entity.ChatTurn{
		Id:        uuid.New(),
		ThreadId:  thread.Id,
		Role:      constant.ChatTurnRoleUser,
		Content:   request.Content,
		Status:    entity.TurnStatusCompleted,
		CreatedAt: now,
	}
	assistantTurn := &entity.ChatTurn{
		Id:        uuid.New(),
		ThreadId:  thread.Id,
		Role:      constant.ChatTurnRoleAssistant,
		Status:    entity.TurnStatusPending,
		CreatedAt: now.Add(1 * time.Millisecond),
	}

	if err := s.turnRepo.Create(ctx, userTurn); err != nil {
		return nil, err
	}
	if err := s.turnRepo.Create(ctx, assistantTurn); err != nil {
		return nil, err
	}

	attachments := make([]assistant.Attachment, 0, len(request.Attachments))
	for _, a := range request.Attachments {
		attachments = append(attachments, assistant.Attachment{
			Name:          a.Name,
			Mime:          a.Mime,
			ContentString: a.ContentString,
		})
	}

	// The stream outlives the HTTP request that triggered it.
	streamCtx, cancel := context.WithCancel(context.Background())

	st.mu.Lock()
	prior := st.cancelInFlight
	st.cancelInFlight = cancel
	st.streamingTurnId = assistantTurn.Id
	st.mu.Unlock()

	go s.runTurn(streamCtx, cancel, prior, thread, doc, assistantTurn, request.Content, attachments)

	return &dto.SendTurnResponse{
		TurnId:   assistantTurn.Id,
		ThreadId: thread.Id,
		Status:   string(entity.TurnStatusPending),
	}, nil
}

// CancelTurn tears down the in-flight stream for the thread's document.
func (s *sessionService) CancelTurn(ctx context.Context, threadId uuid.UUID) error {
	doc, err := s.docRepo.FindByThreadId(ctx, threadId)
	if err != nil {
		return err
	}

	st := s.state(doc.Id)
	st.mu.Lock()
	cancel := st.cancelInFlight
	st.cancelInFlight = nil
	st.mu.Unlock()

	if cancel == nil {
		return ErrNoTurnInFlight
	}
	cancel()
	return nil
}

func (s *sessionService) GetDocument(ctx context.Context, documentId uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.docRepo.FindById(ctx, documentId)
	if err != nil {
		return nil, err
	}

	markdown := ""
	if doc.Tree != nil {
		markdown = s.renderer.Render(doc.Tree)
	}

	return &dto.DocumentResponse{
		Id:        doc.Id,
		ThreadId:  doc.ThreadId,
		Title:     doc.Title,
		Tree:      doc.Tree,
		Markdown:  markdown,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *sessionService) GetRateCard(ctx context.Context) *dto.RateCardResponse {
	roles := s.card.Roles()
	response := &dto.RateCardResponse{Roles: make([]dto.RateCardEntryDTO, 0, len(roles))}
	for _, r := range roles {
		response.Roles = append(response.Roles, dto.RateCardEntryDTO{Role: r.Name, Rate: r.HourlyRate})
	}
	return response
}

// runTurn owns the streaming goroutine for one assistant turn.
func (s *sessionService) runTurn(
	ctx context.Context,
	cancel context.CancelFunc,
	cancelPrior context.CancelFunc,
	thread *entity.ChatThread,
	doc *entity.ProposalDocument,
	turn *entity.ChatTurn,
	userText string,
	attachments []assistant.Attachment,
) {
	defer cancel()
	st := s.state(doc.Id)
	defer func() {
		st.mu.Lock()
		if st.streamingTurnId == turn.Id {
			st.cancelInFlight = nil
			st.streamingTurnId = uuid.Nil
		}
		st.mu.Unlock()
	}()

	body, err := s.streamer.StreamChat(ctx, assistant.StreamRequest{
		WorkspaceSlug: s.workspaceSlug,
		ThreadSlug:    thread.Id.String(),
		Message:       userText,
		Attachments:   attachments,
	})
	if err != nil {
		if ctx.Err() != nil {
			s.markCancelled(turn)
			return
		}
		s.failTurn(thread, doc, turn, err.Error())
		return
	}
	defer body.Close()

	decoder := stream.NewDecoder(body)
	var accumulated strings.Builder
	chunkCount := 0
	firstByte := false
	sawPricingFence := false

	for {
		ev, err := decoder.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				s.markCancelled(turn)
				return
			}
			if errors.Is(err, io.EOF) {
				break
			}
			// Read errors after cancellation are part of the teardown.
			if ctx.Err() != nil {
				s.markCancelled(turn)
				return
			}
			s.failTurn(thread, doc, turn, fmt.Sprintf("stream read failed: %v", err))
			return
		}

		if !firstByte {
			firstByte = true
			// At most one active turn per document; the newer stream wins.
			if cancelPrior != nil {
				cancelPrior()
			}
		}

		switch ev.Type {
		case stream.EventChunk, stream.EventUnknown:
			if ev.Text == "" {
				continue
			}
			accumulated.WriteString(ev.Text)
			chunkCount++
			if !sawPricingFence && strings.Contains(accumulated.String(), "```json") {
				sawPricingFence = true
			}
			phase := websocket.PhaseGenerating
			if sawPricingFence {
				phase = websocket.PhaseAdjusting
			}
			s.streamLogger.Info("Stream", "Chunk received", map[string]interface{}{
				"turn_id": turn.Id,
				"chunk":   chunkCount,
				"bytes":   len(ev.Text),
			})
			s.hub.SendProgress(doc.Id, websocket.ProgressFrame{
				Phase:      phase,
				TurnID:     turn.Id.String(),
				ChunkCount: chunkCount,
				Preview:    tailPreview(thinking.Strip(accumulated.String()).Remainder),
			})
		case stream.EventFinal:
			// The final record restates the whole reply.
			accumulated.Reset()
			accumulated.WriteString(ev.Text)
		case stream.EventAbort:
			msg := ev.Message
			if msg == "" {
				msg = "assistant aborted the stream"
			}
			s.failTurn(thread, doc, turn, msg)
			return
		}
		if ev.Type == stream.EventDone {
			break
		}
	}

	text := accumulated.String()
	if strings.TrimSpace(text) == "" {
		s.failTurn(thread, doc, turn, fmt.Sprintf(
			"%v (workspace %s, thread %s)", ErrEmptyStream, s.workspaceSlug, thread.Id))
		return
	}

	s.finalizeTurn(thread, doc, turn, userText, text)
}

// finalizeTurn runs the extraction and rebuild pipeline on the complete
// assistant response and lands the result in the document.
func (s *sessionService) finalizeTurn(
	thread *entity.ChatThread,
	doc *entity.ProposalDocument,
	turn *entity.ChatTurn,
	userText string,
	text string,
) {
	ctx := context.Background()

	cleaned := lexical.RemoveInternalSections(text)
	stripped := thinking.Strip(cleaned)

	extraction, err := s.extractor.Extract(stripped.Remainder)
	var priced *pricing.MultiScopeDocument
	narrative := extraction.Narrative

	switch {
	case err == nil:
		priced = extraction.Document
		s.resolveRoles(priced, turn)
		if priced.RoleCount() == 0 {
			// Every role row was rejected against the catalog. Fail closed:
			// keep the narrative, insert no table.
			s.logger.Warn("Session", constant.NoPricingNoticeMessage, map[string]interface{}{
				"turn_id": turn.Id,
			})
			priced = nil
			narrative = stripped.Remainder
		} else {
			budget := pricing.ExtractTurnBudget(userText)
			budget.Apply(priced, s.gstPercent)
		}
	case errors.Is(err, pricing.ErrNoPricingData):
		s.logger.Warn("Session", constant.NoPricingNoticeMessage, map[string]interface{}{
			"turn_id": turn.Id,
		})
	default:
		s.failTurn(thread, doc, turn, fmt.Sprintf("pricing extraction failed: %v", err))
		return
	}

	scrubbed := lexical.ScrubBracketTags(narrative)

	var scopes []pricing.ScopeBlock
	if priced != nil {
		scopes = priced.Scopes
	}
	tree := s.builder.Build(scrubbed, scopes)

	if title := lexical.DetectTitle(scrubbed); title != "" {
		doc.Title = title
		thread.Title = title
		if err := s.threadRepo.Update(ctx, thread); err != nil {
			s.logger.Warn("Session", "Thread title update failed", map[string]interface{}{"error": err.Error()})
		}
	}

	ed := editor.NewMemoryEditor()
	ed.SetContent(doc.Tree)
	outcome := s.merge.Merge(ed, tree)
	doc.Tree = ed.GetContent()

	if err := s.docRepo.Save(ctx, doc); err != nil {
		s.failTurn(thread, doc, turn, fmt.Sprintf("document save failed: %v", err))
		return
	}

	turn.Content = scrubbed
	turn.Pricing = priced
	turn.Status = entity.TurnStatusCompleted
	turn.FailureMessage = ""
	if err := s.turnRepo.Update(ctx, turn); err != nil {
		s.logger.Error("Session", "Turn update failed", map[string]interface{}{"error": err.Error()})
		return
	}

	scopeCount := 0
	total := 0.0
	if priced != nil {
		scopeCount = len(priced.Scopes)
		total = pricing.DocumentTotal(priced)
	}

	s.logger.Info("Session", "Turn completed", map[string]interface{}{
		"turn_id":         turn.Id,
		"scope_count":     scopeCount,
		"total":           total,
		"destination_was": outcome.DestinationWas,
		"commentary":      stripped.Commentary != "",
	})

	if err := s.publisher.Publish(ctx, events.NewTurnCompleted(thread.Id, turn.Id, scopeCount, total)); err != nil {
		s.logger.Warn("Session", "Event publish failed", map[string]interface{}{"error": err.Error()})
	}
	if err := s.publisher.Publish(ctx, events.NewDocumentSynced(doc.Id, doc.Title)); err != nil {
		s.logger.Warn("Session", "Event publish failed", map[string]interface{}{"error": err.Error()})
	}

	s.hub.SendProgress(doc.Id, websocket.ProgressFrame{
		Phase:  websocket.PhasePriced,
		TurnID: turn.Id.String(),
	})
	s.hub.SendDocument(doc.Id, dto.DocumentResponse{
		Id:        doc.Id,
		ThreadId:  doc.ThreadId,
		Title:     doc.Title,
		Tree:      doc.Tree,
		UpdatedAt: doc.UpdatedAt,
	})
}

// resolveRoles applies catalog rates and the governance invariant to every
// scope. Scopes that lose all rows to catalog rejection stay empty; the
// caller decides what an empty document means.
func (s *sessionService) resolveRoles(doc *pricing.MultiScopeDocument, turn *entity.ChatTurn) {
	for i := range doc.Scopes {
		valid, rejected := s.card.Resolve(doc.Scopes[i].Roles)
		for _, rej := range rejected {
			s.logger.Warn("Session", "Role rejected", map[string]interface{}{
				"turn_id": turn.Id,
				"reason":  rej.Error(),
			})
		}
		if len(valid) == 0 {
			doc.Scopes[i].Roles = nil
			continue
		}
		doc.Scopes[i].Roles = pricing.NormalizeGovernanceRoles(valid, s.card)
	}
	pricing.RecalculateDocument(doc, s.gstPercent)
}

func (s *sessionService) failTurn(thread *entity.ChatThread, doc *entity.ProposalDocument, turn *entity.ChatTurn, reason string) {
	ctx := context.Background()

	turn.Status = entity.TurnStatusFailed
	turn.FailureMessage = reason
	if err := s.turnRepo.Update(ctx, turn); err != nil {
		s.logger.Error("Session", "Turn update failed", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Error("Session", "Turn failed", map[string]interface{}{
		"turn_id": turn.Id,
		"reason":  reason,
	})

	if err := s.publisher.Publish(ctx, events.NewTurnFailed(thread.Id, turn.Id, reason)); err != nil {
		s.logger.Warn("Session", "Event publish failed", map[string]interface{}{"error": err.Error()})
	}
}

// markCancelled records a user initiated cancel. Partial text is dropped;
// the turn stays in the log with its failure message but no error event.
func (s *sessionService) markCancelled(turn *entity.ChatTurn) {
	ctx := context.Background()

	turn.Status = entity.TurnStatusCancelled
	turn.FailureMessage = "cancelled before completion"
	if err := s.turnRepo.Update(ctx, turn); err != nil {
		s.logger.Error("Session", "Turn update failed", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Info("Session", "Turn cancelled", map[string]interface{}{"turn_id": turn.Id})
}

const previewLimit = 160

// tailPreview keeps the last previewLimit bytes of the text, moving the
// cut forward to the next rune boundary so the preview stays valid UTF-8.
func tailPreview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= previewLimit {
		return text
	}
	cut := len(text) - previewLimit
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	return text[cut:]
}
