package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-checkout/internal/platform/apperr"
	"github.com/ridloal/e-commerce-checkout/internal/platform/auth"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/domain"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/service"
	userDomain "github.com/ridloal/e-commerce-checkout/internal/user/domain"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
	gate            *auth.Gate
}

func NewPurchaseHandler(ps service.PurchaseService, gate *auth.Gate) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: ps, gate: gate}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchaseRoutes := router.Group("/purchases", h.gate.Authenticate())
	{
		purchaseRoutes.POST("", h.gate.RequireRole(userDomain.RoleClient), h.Checkout)
		purchaseRoutes.GET("/mine", h.ListMine)
		purchaseRoutes.GET("/:id", h.GetInvoice)
	}

	adminRoutes := router.Group("/admin", h.gate.Authenticate(), h.gate.RequireRole(userDomain.RoleAdmin))
	{
		adminRoutes.GET("/purchases", h.ListAll)
	}
}

func (h *PurchaseHandler) Checkout(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, err)
		return
	}

	invoice, err := h.purchaseService.Checkout(c.Request.Context(), principal, req)
	if err != nil {
		// An unknown product is a problem with the cart, not a missing resource.
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		apperr.Respond(c, "Checkout", err, "Failed to process purchase")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *PurchaseHandler) GetInvoice(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}

	invoice, err := h.purchaseService.GetInvoice(c.Request.Context(), id, principal)
	if err != nil {
		apperr.Respond(c, "GetInvoice", err, "Failed to retrieve purchase")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *PurchaseHandler) ListMine(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	purchases, err := h.purchaseService.ListMine(c.Request.Context(), principal.UserID)
	if err != nil {
		apperr.Respond(c, "ListMine", err, "Failed to retrieve purchases")
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func (h *PurchaseHandler) ListAll(c *gin.Context) {
	purchases, err := h.purchaseService.ListAll(c.Request.Context())
	if err != nil {
		apperr.Respond(c, "ListAll", err, "Failed to retrieve purchases")
		return
	}
	c.JSON(http.StatusOK, purchases)
}
