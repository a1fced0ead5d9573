package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/freshkeep/freshkeep/internal/audit"
	"github.com/freshkeep/freshkeep/internal/expiry"
	"github.com/freshkeep/freshkeep/internal/models"
	"github.com/freshkeep/freshkeep/internal/repository"
	"github.com/freshkeep/freshkeep/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ProductInput carries raw form fields for add/update. Everything arrives as
// strings from the request surface and is parsed during validation.
type ProductInput struct {
	ProductName       string `json:"product_name"`
	ProductType       string `json:"product_type"`
	Location          string `json:"location"`
	Quantity          string `json:"quantity"`
	Category          string `json:"category"`
	ManufacturingDate string `json:"manufacturing_date"`
	ExpiryDate        string `json:"expiry_date"`
}

// AnnotatedProduct is a product row with its derived expiry status attached.
type AnnotatedProduct struct {
	models.Product
	ExpiryStatus expiry.Status `json:"expiry_status"`
}

// CategoryGroup is one category bucket of the all-products view, keeping the
// expiry-ascending order of its rows.
type CategoryGroup struct {
	Category models.Category    `json:"category"`
	Products []AnnotatedProduct `json:"products"`
}

// AllProductsView is the grouped all-scope listing handed to the renderer.
type AllProductsView struct {
	Total      int             `json:"total"`
	SearchTerm string          `json:"search_term,omitempty"`
	Groups     []CategoryGroup `json:"groups"`
}

// ExpiringView is the 30-day-window listing with its summary counts.
type ExpiringView struct {
	ExpiredCount    int                `json:"expired_count"`
	NearExpiryCount int                `json:"near_expiry_count"`
	SearchTerm      string             `json:"search_term,omitempty"`
	Products        []AnnotatedProduct `json:"products"`
}

type ProductService struct {
	productRepo *repository.ProductRepository
	auditLog    *audit.Log
}

func NewProductService(productRepo *repository.ProductRepository, auditLog *audit.Log) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		auditLog:    auditLog,
	}
}

// Add validates the input and inserts a new product owned by ownerID.
func (s *ProductService) Add(ownerID uuid.UUID, input ProductInput) (*models.Product, error) {
	fields, err := s.validateInput(input, time.Now())
	if err != nil {
		logger.Log.Warn("Product validation failed",
			zap.String("user_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	product := fields
	product.ID = uuid.New()
	product.UserID = ownerID

	if err := s.productRepo.Create(product); err != nil {
		logger.Log.Error("Failed to insert product",
			zap.String("user_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.recordAudit(ownerID, audit.ActionAdd, product.ID.String(), audit.OutcomeOK)

	logger.Log.Info("Product added",
		zap.String("user_id", ownerID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("product_name", product.ProductName),
	)

	return product, nil
}

// Update validates the input and rewrites the product matching id AND
// ownerID. A non-owned id fails exactly like a missing one.
func (s *ProductService) Update(id, ownerID uuid.UUID, input ProductInput) (*models.Product, error) {
	fields, err := s.validateInput(input, time.Now())
	if err != nil {
		logger.Log.Warn("Product validation failed",
			zap.String("user_id", ownerID.String()),
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	found, err := s.productRepo.Update(id, ownerID, fields)
	if err != nil {
		logger.Log.Error("Failed to update product",
			zap.String("user_id", ownerID.String()),
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if !found {
		s.recordAudit(ownerID, audit.ActionUpdate, id.String(), audit.OutcomeNotFound)
		return nil, ErrNotFound
	}

	s.recordAudit(ownerID, audit.ActionUpdate, id.String(), audit.OutcomeOK)

	logger.Log.Info("Product updated",
		zap.String("user_id", ownerID.String()),
		zap.String("product_id", id.String()),
	)

	return s.productRepo.GetByID(id, ownerID)
}

// Delete removes the product matching id AND ownerID. A miss (missing or
// non-owned id) is a no-op success for the caller; the audit log keeps the
// distinction.
func (s *ProductService) Delete(id, ownerID uuid.UUID) error {
	found, err := s.productRepo.Delete(id, ownerID)
	if err != nil {
		logger.Log.Error("Failed to delete product",
			zap.String("user_id", ownerID.String()),
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
		return err
	}

	if !found {
		s.recordAudit(ownerID, audit.ActionDelete, id.String(), audit.OutcomeNotFound)
		logger.Log.Warn("Delete matched no owned product",
			zap.String("user_id", ownerID.String()),
			zap.String("product_id", id.String()),
		)
		return nil
	}

	s.recordAudit(ownerID, audit.ActionDelete, id.String(), audit.OutcomeOK)

	logger.Log.Info("Product deleted",
		zap.String("user_id", ownerID.String()),
		zap.String("product_id", id.String()),
	)

	return nil
}

// GetForEdit returns the product for form prefill, or nil if not owned.
func (s *ProductService) GetForEdit(id, ownerID uuid.UUID) (*models.Product, error) {
	return s.productRepo.GetByID(id, ownerID)
}

// ListAll builds the all-scope view: every owned product, optionally
// filtered by search term, grouped by category in order of first appearance
// with each group keeping expiry-ascending order.
func (s *ProductService) ListAll(ownerID uuid.UUID, searchTerm string) (*AllProductsView, error) {
	searchTerm, err := sanitizeSearchTerm(searchTerm)
	if err != nil {
		return nil, err
	}

	today := time.Now()
	products, err := s.productRepo.List(ownerID, searchTerm, repository.ScopeAll, today)
	if err != nil {
		logger.Log.Error("Failed to list products",
			zap.String("user_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	view := &AllProductsView{
		Total:      len(products),
		SearchTerm: searchTerm,
	}

	groupIndex := make(map[models.Category]int)
	for _, p := range products {
		annotated := AnnotatedProduct{
			Product:      p,
			ExpiryStatus: expiry.Classify(p.ExpiryDate, today),
		}

		idx, ok := groupIndex[p.Category]
		if !ok {
			idx = len(view.Groups)
			groupIndex[p.Category] = idx
			view.Groups = append(view.Groups, CategoryGroup{Category: p.Category})
		}
		view.Groups[idx].Products = append(view.Groups[idx].Products, annotated)
	}

	return view, nil
}

// ListExpiring builds the expiring-scope view: products with an expiry date
// inside the 30-day window, expiry-ascending, with expired vs near-expiry
// summary counts.
func (s *ProductService) ListExpiring(ownerID uuid.UUID, searchTerm string) (*ExpiringView, error) {
	searchTerm, err := sanitizeSearchTerm(searchTerm)
	if err != nil {
		return nil, err
	}

	today := time.Now()
	products, err := s.productRepo.List(ownerID, searchTerm, repository.ScopeExpiring, today)
	if err != nil {
		logger.Log.Error("Failed to list expiring products",
			zap.String("user_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	view := &ExpiringView{
		SearchTerm: searchTerm,
		Products:   make([]AnnotatedProduct, 0, len(products)),
	}

	for _, p := range products {
		status := expiry.Classify(p.ExpiryDate, today)
		if status.Status == expiry.StatusExpired {
			view.ExpiredCount++
		} else {
			view.NearExpiryCount++
		}
		view.Products = append(view.Products, AnnotatedProduct{
			Product:      p,
			ExpiryStatus: status,
		})
	}

	return view, nil
}

// sanitizeSearchTerm trims the term and enforces the 2-50 char bounds. An
// out-of-bounds term is a validation error and the filtered query never runs.
func sanitizeSearchTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", nil
	}
	if len(term) < 2 {
		return "", validationError("search term must be at least 2 characters long")
	}
	if len(term) > 50 {
		return "", validationError("search term is too long (maximum 50 characters)")
	}
	return term, nil
}

// validateInput checks every field constraint in form order, first failure
// wins, and parses the raw strings into a typed product.
func (s *ProductService) validateInput(input ProductInput, now time.Time) (*models.Product, error) {
	name := strings.TrimSpace(input.ProductName)
	location := strings.TrimSpace(input.Location)

	if name == "" || input.ProductType == "" || location == "" ||
		input.Quantity == "" || input.Category == "" ||
		input.ManufacturingDate == "" || input.ExpiryDate == "" {
		return nil, validationError("all fields are required")
	}

	if len(name) < 2 || len(name) > 100 {
		return nil, validationError("product name must be between 2 and 100 characters")
	}

	if len(location) < 2 || len(location) > 200 {
		return nil, validationError("location must be between 2 and 200 characters")
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(input.Quantity))
	if err != nil || quantity < 1 || quantity > 9999 {
		return nil, validationError("quantity must be between 1 and 9999")
	}

	productType := models.ProductType(input.ProductType)
	if !models.ValidProductType(productType) {
		return nil, validationError("invalid product type")
	}

	category := models.Category(input.Category)
	if !models.ValidCategory(category) {
		return nil, validationError("invalid category")
	}

	manufacturingDate, err := time.Parse(dateLayout, input.ManufacturingDate)
	if err != nil {
		return nil, validationError("invalid manufacturing date")
	}

	expiryDate, err := time.Parse(dateLayout, input.ExpiryDate)
	if err != nil {
		return nil, validationError("invalid expiry date")
	}

	if !expiryDate.After(manufacturingDate) {
		return nil, validationError("expiry date must be after manufacturing date")
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if manufacturingDate.After(today) {
		return nil, validationError("manufacturing date cannot be in the future")
	}

	return &models.Product{
		ProductName:       name,
		ProductType:       productType,
		Location:          location,
		Quantity:          quantity,
		Category:          category,
		ManufacturingDate: manufacturingDate,
		ExpiryDate:        expiryDate,
	}, nil
}

func (s *ProductService) recordAudit(ownerID uuid.UUID, action audit.Action, productID string, outcome audit.Outcome) {
	entry := audit.Entry{
		UserID:    ownerID.String(),
		Action:    action,
		ProductID: productID,
		Outcome:   outcome,
	}
	if err := s.auditLog.Record(entry); err != nil {
		// Audit failures must not fail the user's request.
		logger.Log.Error("Failed to record audit entry",
			zap.String("user_id", ownerID.String()),
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
}
