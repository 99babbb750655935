package controller

import (
	"lumina-be/internal/pkg/serverutils"
	"lumina-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GetProfile(ctx *fiber.Ctx) error
	DeleteAccount(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/user")
	h.Use(auth, serverutils.RequireAuth)
	h.Get("/profile", c.GetProfile)
	h.Delete("/account", c.DeleteAccount)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	res, err := c.service.GetProfile(ctx.UserContext(), serverutils.CurrentCaller(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *userController) DeleteAccount(ctx *fiber.Ctx) error {
	if err := c.service.DeleteAccount(ctx.UserContext(), serverutils.CurrentCaller(ctx)); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
