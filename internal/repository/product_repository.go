package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/freshkeep/freshkeep/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope selects which products a listing shows.
type Scope string

const (
	// ScopeAll shows every product, ordered by category then expiry date.
	ScopeAll Scope = "all"
	// ScopeExpiring restricts to products expiring within 30 days (expired
	// ones included), ordered by expiry date.
	ScopeExpiring Scope = "expiring"
)

// ExpiringWindowDays is the look-ahead of the expiring scope.
const ExpiringWindowDays = 30

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// GetByID returns the product only if it belongs to ownerID; otherwise nil.
func (r *ProductRepository) GetByID(id, ownerID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("id = ? AND user_id = ?", id, ownerID).First(&product).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &product, nil
}

// Update rewrites the mutable fields of the product matching id AND ownerID.
// Returns found=false when no owned row matched; a cross-tenant id and a
// missing id are deliberately indistinguishable here.
func (r *ProductRepository) Update(id, ownerID uuid.UUID, product *models.Product) (bool, error) {
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"product_name":       product.ProductName,
			"product_type":       product.ProductType,
			"location":           product.Location,
			"quantity":           product.Quantity,
			"category":           product.Category,
			"manufacturing_date": product.ManufacturingDate,
			"expiry_date":        product.ExpiryDate,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Delete removes the product matching id AND ownerID. found=false means the
// statement matched nothing, which callers record for auditing.
func (r *ProductRepository) Delete(id, ownerID uuid.UUID) (bool, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Product{})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// List composes the owner-scoped listing query.
//
// The search term, when present, is a case-insensitive substring match across
// product_name, product_type, location and category. Term length validation
// happens in the service layer before this query runs.
func (r *ProductRepository) List(ownerID uuid.UUID, searchTerm string, scope Scope, today time.Time) ([]models.Product, error) {
	query := r.db.Where("user_id = ?", ownerID)

	if searchTerm != "" {
		pattern := "%" + strings.ToLower(searchTerm) + "%"
		query = query.Where(
			"(LOWER(product_name) LIKE ? OR LOWER(product_type) LIKE ? OR LOWER(location) LIKE ? OR LOWER(category) LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	switch scope {
	case ScopeExpiring:
		cutoff := truncateToDay(today).AddDate(0, 0, ExpiringWindowDays)
		query = query.Where("expiry_date <= ?", cutoff).Order("expiry_date ASC")
	default:
		query = query.Order("category, expiry_date ASC")
	}

	var products []models.Product
	err := query.Find(&products).Error

	return products, err
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
