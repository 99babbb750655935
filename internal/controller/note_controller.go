package controller

import (
	"lumina-be/internal/dto"
	"lumina-be/internal/pkg/serverutils"
	"lumina-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	List(ctx *fiber.Ctx) error
	Statistics(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	CreateNote(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

// Reads are open to anonymous callers and come back empty; writes need a
// resolved user, which the service enforces.
func (c *noteController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/notes")
	h.Use(auth)
	h.Get("/", c.List)
	h.Get("/statistics", c.Statistics)
	h.Post("/", c.Create)
	h.Post("/create_note", c.CreateNote)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Patch("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	var q dto.ListNotesQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed query string")
	}

	res, err := c.noteService.List(ctx.UserContext(), serverutils.CurrentCaller(ctx), q.Search)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *noteController) Statistics(ctx *fiber.Ctx) error {
	res, err := c.noteService.Statistics(ctx.UserContext(), serverutils.CurrentCaller(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get statistics", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Get(ctx.UserContext(), serverutils.CurrentCaller(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.UserContext(), serverutils.CurrentCaller(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success create note", res))
}

// CreateNote is the older create endpoint; it answers with a message only.
func (c *noteController) CreateNote(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if _, err := c.noteService.Create(ctx.UserContext(), serverutils.CurrentCaller(ctx), &req); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).
		JSON(serverutils.CreatedResponse[any]("Note created successfully", nil))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id

	res, err := c.noteService.Update(ctx.UserContext(), serverutils.CurrentCaller(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err := c.noteService.Delete(ctx.UserContext(), serverutils.CurrentCaller(ctx), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
