package testutil

import (
	"time"

	"github.com/freshkeep/freshkeep/internal/models"
	"github.com/freshkeep/freshkeep/internal/utils"
	"github.com/google/uuid"
)

// CreateTestUser creates a user with a hashed password, ready to insert.
func CreateTestUser(username, email, password string) (*models.User, error) {
	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}, nil
}

// DefaultTestUser returns a default test user
func DefaultTestUser() (*models.User, error) {
	return CreateTestUser("testuser", "test@example.com", "Test123456")
}

// CreateTestProduct creates a product owned by userID whose expiry date is
// expiryOffsetDays from today (negative = already expired).
func CreateTestProduct(userID uuid.UUID, name string, category models.Category, expiryOffsetDays int) *models.Product {
	today := time.Now()

	return &models.Product{
		ID:                uuid.New(),
		UserID:            userID,
		ProductName:       name,
		ProductType:       models.TypeBox,
		Location:          "Kitchen shelf",
		Quantity:          1,
		Category:          category,
		ManufacturingDate: today.AddDate(0, 0, expiryOffsetDays-30),
		ExpiryDate:        today.AddDate(0, 0, expiryOffsetDays),
		CreatedAt:         today,
		UpdatedAt:         today,
	}
}
