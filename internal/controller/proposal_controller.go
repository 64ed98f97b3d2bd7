package controller

import (
	"sow-studio-be/internal/dto"
	"sow-studio-be/internal/pkg/serverutils"
	"sow-studio-be/internal/service"
	ws "sow-studio-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IProposalController interface {
	RegisterRoutes(r fiber.Router)
	CreateThread(ctx *fiber.Ctx) error
	ListThreads(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	SendTurn(ctx *fiber.Ctx) error
	CancelTurn(ctx *fiber.Ctx) error
	GetDocument(ctx *fiber.Ctx) error
	GetRateCard(ctx *fiber.Ctx) error
}

type proposalController struct {
	service service.ISessionService
	hub     *ws.Hub
}

func NewProposalController(service service.ISessionService, hub *ws.Hub) IProposalController {
	return &proposalController{service: service, hub: hub}
}

func (c *proposalController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/proposal/v1")
	h.Post("/thread", c.CreateThread)
	h.Get("/thread", c.ListThreads)
	h.Get("/thread/:id/history", c.GetHistory)
	h.Post("/thread/:id/turn", c.SendTurn)
	h.Delete("/thread/:id/turn", c.CancelTurn)
	h.Get("/document/:id", c.GetDocument)
	h.Get("/ratecard", c.GetRateCard)

	h.Use("/document/:id/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/document/:id/ws", websocket.New(func(conn *websocket.Conn) {
		documentId, err := uuid.Parse(conn.Params("id"))
		if err != nil {
			conn.Close()
			return
		}
		ws.ServeWs(c.hub, conn, documentId)
	}))
}

func (c *proposalController) CreateThread(ctx *fiber.Ctx) error {
	var req dto.CreateThreadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.service.CreateThread(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Thread created", res))
}

func (c *proposalController) ListThreads(ctx *fiber.Ctx) error {
	res, err := c.service.ListThreads(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Threads", res))
}

func (c *proposalController) GetHistory(ctx *fiber.Ctx) error {
	threadId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid thread id")
	}

	res, err := c.service.GetHistory(ctx.Context(), threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Conversation history", res))
}

func (c *proposalController) SendTurn(ctx *fiber.Ctx) error {
	threadId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid thread id")
	}

	var req dto.SendTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.ThreadId = threadId

	if err := serverutils.ValidateRequest(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.service.SendTurn(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Turn accepted", res))
}

func (c *proposalController) CancelTurn(ctx *fiber.Ctx) error {
	threadId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid thread id")
	}

	if err := c.service.CancelTurn(ctx.Context(), threadId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Turn cancelled", nil))
}

func (c *proposalController) GetDocument(ctx *fiber.Ctx) error {
	documentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	res, err := c.service.GetDocument(ctx.Context(), documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Document", res))
}

func (c *proposalController) GetRateCard(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Rate card", c.service.GetRateCard(ctx.Context())))
}
