package handler

import (
	"errors"
	"net/http"

	"github.com/freshkeep/freshkeep/internal/middleware"
	"github.com/freshkeep/freshkeep/internal/models"
	"github.com/freshkeep/freshkeep/internal/service"
	"github.com/freshkeep/freshkeep/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// GET /api/products?search=
// All-scope listing: grouped by category, each group expiry-ascending.
func (h *ProductHandler) List(c *gin.Context) {
	ownerID := currentUserID(c)
	sess := middleware.GetSession(c)

	view, err := h.productService.ListAll(ownerID, c.Query("search"))
	if err != nil {
		if service.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":    sess.Username,
		"flashes":     sess.ConsumeFlashes(),
		"total":       view.Total,
		"search_term": view.SearchTerm,
		"groups":      view.Groups,
	})
}

// GET /api/products/expiring?search=
// Products expiring within 30 days plus expired/near-expiry counts.
func (h *ProductHandler) ListExpiring(c *gin.Context) {
	ownerID := currentUserID(c)
	sess := middleware.GetSession(c)

	view, err := h.productService.ListExpiring(ownerID, c.Query("search"))
	if err != nil {
		if service.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":          sess.Username,
		"flashes":           sess.ConsumeFlashes(),
		"expired_count":     view.ExpiredCount,
		"near_expiry_count": view.NearExpiryCount,
		"search_term":       view.SearchTerm,
		"products":          view.Products,
	})
}

// GET /api/products/:id
// Edit prefill; owner-scoped, so a foreign id is indistinguishable from a
// missing one.
func (h *ProductHandler) Get(c *gin.Context) {
	ownerID := currentUserID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.productService.GetForEdit(productID, ownerID)
	if err != nil {
		logger.Log.Error("Failed to fetch product",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	ownerID := currentUserID(c)
	sess := middleware.GetSession(c)

	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.productService.Add(ownerID, input)
	if err != nil {
		if service.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add product"})
		return
	}

	sess.AddSuccess("Product added successfully!")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product added successfully",
		"product": product,
	})
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	ownerID := currentUserID(c)
	sess := middleware.GetSession(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.productService.Update(productID, ownerID, input)
	if err != nil {
		switch {
		case service.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		}
		return
	}

	sess.AddSuccess("Product updated successfully!")

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DELETE /api/products/:id
// A miss (missing or non-owned id) still reports success to the caller; the
// audit log keeps the difference.
func (h *ProductHandler) Delete(c *gin.Context) {
	ownerID := currentUserID(c)
	sess := middleware.GetSession(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.productService.Delete(productID, ownerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	sess.AddSuccess("Product deleted successfully!")

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// Meta exposes the form enumerations (product types and categories).
func (h *ProductHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"product_types": models.ProductTypes,
		"categories":    models.Categories,
	})
}

// currentUserID reads the user id bound by RequireAuth.
func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet("user_id").(uuid.UUID)
}
