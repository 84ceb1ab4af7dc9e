package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-checkout/internal/platform/apperr"
	"github.com/ridloal/e-commerce-checkout/internal/platform/auth"
	"github.com/ridloal/e-commerce-checkout/internal/product/domain"
	"github.com/ridloal/e-commerce-checkout/internal/product/service"
	userDomain "github.com/ridloal/e-commerce-checkout/internal/user/domain"
)

type ProductHandler struct {
	productService service.ProductService
	gate           *auth.Gate
}

func NewProductHandler(ps service.ProductService, gate *auth.Gate) *ProductHandler {
	return &ProductHandler{productService: ps, gate: gate}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	productRoutes := router.Group("/products", h.gate.Authenticate())
	adminOnly := h.gate.RequireRole(userDomain.RoleAdmin)
	{
		productRoutes.GET("", h.ListProducts)
		productRoutes.GET("/:id", h.GetProduct)
		productRoutes.POST("", adminOnly, h.CreateProduct)
		productRoutes.PUT("/:id", adminOnly, h.UpdateProduct)
		productRoutes.DELETE("/:id", adminOnly, h.DeleteProduct)
	}
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		apperr.Respond(c, "ListProducts", err, "Failed to retrieve products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	product, err := h.productService.GetProductDetails(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, "GetProduct", err, "Failed to retrieve product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, err)
		return
	}
	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		apperr.Respond(c, "CreateProduct", err, "Failed to create product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req domain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadRequest(c, err)
		return
	}
	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		apperr.Respond(c, "UpdateProduct", err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		apperr.Respond(c, "DeleteProduct", err, "Failed to delete product")
		return
	}
	c.JSON(http.StatusOK, domain.DeleteProductResponse{Message: "Product deleted"})
}
