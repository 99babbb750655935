package controller

import (
	"lumina-be/internal/dto"
	"lumina-be/internal/pkg/serverutils"
	"lumina-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/logout", c.Logout)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("User registered successfully", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

// Logout reads the token itself: a token that no longer resolves is exactly
// the case it must answer gracefully.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	raw, _ := serverutils.BearerToken(ctx)

	removed, err := c.service.Logout(ctx.UserContext(), raw)
	if err != nil {
		return err
	}

	msg := "Successfully logged out."
	if !removed {
		msg = "No active session; already logged out."
	}
	return ctx.JSON(serverutils.SuccessResponse(msg, dto.LogoutResponse{Message: msg}))
}
