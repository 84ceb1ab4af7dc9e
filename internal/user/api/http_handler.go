package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-checkout/internal/platform/apperr"
	"github.com/ridloal/e-commerce-checkout/internal/user/domain"
	"github.com/ridloal/e-commerce-checkout/internal/user/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(us service.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, "Register", err, "Failed to register user")
		return
	}

	c.JSON(http.StatusOK, domain.RegisterResponse{Message: "User registered", User: *user})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, err)
		return
	}

	response, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, "Login", err, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, response)
}
