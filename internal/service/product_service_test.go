package service_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/freshkeep/freshkeep/internal/audit"
	"github.com/freshkeep/freshkeep/internal/expiry"
	"github.com/freshkeep/freshkeep/internal/models"
	"github.com/freshkeep/freshkeep/internal/repository"
	"github.com/freshkeep/freshkeep/internal/service"
	"github.com/freshkeep/freshkeep/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProductServiceTestSuite struct {
	suite.Suite
	testDB         *testutil.TestDatabase
	productRepo    *repository.ProductRepository
	auditLog       *audit.Log
	productService *service.ProductService
	owner          *models.User
	other          *models.User
}

func (s *ProductServiceTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.productRepo = repository.NewProductRepository(s.testDB.DB)
}

func (s *ProductServiceTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *ProductServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	auditLog, err := audit.Open(filepath.Join(s.T().TempDir(), "audit.log"))
	require.NoError(s.T(), err)
	s.auditLog = auditLog
	s.productService = service.NewProductService(s.productRepo, s.auditLog)

	s.owner, err = testutil.CreateTestUser("owner", "owner@example.com", "Password1")
	require.NoError(s.T(), err)
	s.other, err = testutil.CreateTestUser("other", "other@example.com", "Password1")
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.testDB.DB.Create(s.owner).Error)
	require.NoError(s.T(), s.testDB.DB.Create(s.other).Error)
}

func (s *ProductServiceTestSuite) TearDownTest() {
	require.NoError(s.T(), s.auditLog.Close())
}

func validInput() service.ProductInput {
	today := time.Now()
	return service.ProductInput{
		ProductName:       "Greek Yogurt",
		ProductType:       "jar",
		Location:          "Fridge door",
		Quantity:          "2",
		Category:          "food",
		ManufacturingDate: today.AddDate(0, 0, -10).Format("2006-01-02"),
		ExpiryDate:        today.AddDate(0, 0, 20).Format("2006-01-02"),
	}
}

func (s *ProductServiceTestSuite) TestAdd_Success() {
	// Act
	product, err := s.productService.Add(s.owner.ID, validInput())

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Greek Yogurt", product.ProductName)
	assert.Equal(s.T(), 2, product.Quantity)
	assert.Equal(s.T(), s.owner.ID, product.UserID)
	assert.NotEqual(s.T(), uuid.Nil, product.ID)

	entries, err := s.auditLog.ReadAll()
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), audit.ActionAdd, entries[0].Action)
	assert.Equal(s.T(), audit.OutcomeOK, entries[0].Outcome)
}

func (s *ProductServiceTestSuite) TestAdd_ValidationMatrix() {
	future := time.Now().AddDate(0, 0, 5).Format("2006-01-02")

	tests := []struct {
		name        string
		mutate      func(*service.ProductInput)
		wantMessage string
	}{
		{"missing name", func(in *service.ProductInput) { in.ProductName = "" }, "all fields are required"},
		{"whitespace name", func(in *service.ProductInput) { in.ProductName = "   " }, "all fields are required"},
		{"missing expiry", func(in *service.ProductInput) { in.ExpiryDate = "" }, "all fields are required"},
		{"short name", func(in *service.ProductInput) { in.ProductName = "a" }, "product name must be between 2 and 100 characters"},
		{"short location", func(in *service.ProductInput) { in.Location = "x" }, "location must be between 2 and 200 characters"},
		{"quantity not a number", func(in *service.ProductInput) { in.Quantity = "lots" }, "quantity must be between 1 and 9999"},
		{"quantity zero", func(in *service.ProductInput) { in.Quantity = "0" }, "quantity must be between 1 and 9999"},
		{"quantity too large", func(in *service.ProductInput) { in.Quantity = "10000" }, "quantity must be between 1 and 9999"},
		{"unknown type", func(in *service.ProductInput) { in.ProductType = "crate" }, "invalid product type"},
		{"unknown category", func(in *service.ProductInput) { in.Category = "toys" }, "invalid category"},
		{"bad manufacturing date", func(in *service.ProductInput) { in.ManufacturingDate = "10-01-2024" }, "invalid manufacturing date"},
		{"bad expiry date", func(in *service.ProductInput) { in.ExpiryDate = "someday" }, "invalid expiry date"},
		{"expiry before manufacturing", func(in *service.ProductInput) {
			in.ManufacturingDate = "2024-06-01"
			in.ExpiryDate = "2024-05-01"
		}, "expiry date must be after manufacturing date"},
		{"future manufacturing date", func(in *service.ProductInput) {
			in.ManufacturingDate = future
			in.ExpiryDate = time.Now().AddDate(0, 0, 40).Format("2006-01-02")
		}, "manufacturing date cannot be in the future"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			input := validInput()
			tt.mutate(&input)

			_, err := s.productService.Add(s.owner.ID, input)

			require.Error(s.T(), err)
			assert.True(s.T(), service.IsValidationError(err))
			assert.Contains(s.T(), err.Error(), tt.wantMessage)
		})
	}
}

func (s *ProductServiceTestSuite) TestUpdate_Success() {
	// Arrange
	product, err := s.productService.Add(s.owner.ID, validInput())
	require.NoError(s.T(), err)

	input := validInput()
	input.ProductName = "Skyr"
	input.Quantity = "5"

	// Act
	updated, err := s.productService.Update(product.ID, s.owner.ID, input)

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Skyr", updated.ProductName)
	assert.Equal(s.T(), 5, updated.Quantity)
	assert.Equal(s.T(), product.ID, updated.ID)
}

func (s *ProductServiceTestSuite) TestUpdate_NotOwned() {
	// Arrange
	product, err := s.productService.Add(s.owner.ID, validInput())
	require.NoError(s.T(), err)

	// Act: another user targets the same id
	_, err = s.productService.Update(product.ID, s.other.ID, validInput())

	// Assert: identical to a missing id
	assert.ErrorIs(s.T(), err, service.ErrNotFound)

	_, err = s.productService.Update(uuid.New(), s.other.ID, validInput())
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func (s *ProductServiceTestSuite) TestDelete_MissIsSilentButAudited() {
	// Act: delete an id that matches nothing
	err := s.productService.Delete(uuid.New(), s.owner.ID)

	// Assert: caller sees success, audit log keeps the miss
	require.NoError(s.T(), err)

	entries, readErr := s.auditLog.ReadAll()
	require.NoError(s.T(), readErr)
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), audit.ActionDelete, entries[0].Action)
	assert.Equal(s.T(), audit.OutcomeNotFound, entries[0].Outcome)
}

func (s *ProductServiceTestSuite) TestDelete_Owned() {
	// Arrange
	product, err := s.productService.Add(s.owner.ID, validInput())
	require.NoError(s.T(), err)

	// Act
	err = s.productService.Delete(product.ID, s.owner.ID)

	// Assert
	require.NoError(s.T(), err)
	fetched, err := s.productService.GetForEdit(product.ID, s.owner.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), fetched)
}

func (s *ProductServiceTestSuite) TestListAll_GroupsByFirstAppearance() {
	// Arrange: rows arrive category-sorted, so food groups ahead of medicine
	// and each group keeps expiry-ascending order
	meds := testutil.CreateTestProduct(s.owner.ID, "Ibuprofen", models.CategoryMedicine, 5)
	foodLate := testutil.CreateTestProduct(s.owner.ID, "Rice", models.CategoryFood, 200)
	foodEarly := testutil.CreateTestProduct(s.owner.ID, "Milk", models.CategoryFood, 10)
	for _, p := range []*models.Product{meds, foodLate, foodEarly} {
		require.NoError(s.T(), s.productRepo.Create(p))
	}

	// Act
	view, err := s.productService.ListAll(s.owner.ID, "")

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, view.Total)
	require.Len(s.T(), view.Groups, 2)
	assert.Equal(s.T(), models.CategoryFood, view.Groups[0].Category)
	assert.Equal(s.T(), models.CategoryMedicine, view.Groups[1].Category)
	require.Len(s.T(), view.Groups[0].Products, 2)
	assert.Equal(s.T(), "Milk", view.Groups[0].Products[0].ProductName)
	assert.Equal(s.T(), "Rice", view.Groups[0].Products[1].ProductName)
}

func (s *ProductServiceTestSuite) TestListAll_AnnotatesStatus() {
	product := testutil.CreateTestProduct(s.owner.ID, "Milk", models.CategoryFood, -2)
	require.NoError(s.T(), s.productRepo.Create(product))

	view, err := s.productService.ListAll(s.owner.ID, "")

	require.NoError(s.T(), err)
	require.Len(s.T(), view.Groups, 1)
	got := view.Groups[0].Products[0]
	assert.Equal(s.T(), expiry.StatusExpired, got.ExpiryStatus.Status)
	assert.Equal(s.T(), 2, got.ExpiryStatus.Days)
}

func (s *ProductServiceTestSuite) TestListExpiring_Counts() {
	// Arrange: two expired, one near-expiry, one outside the window
	for _, offset := range []int{-10, -1, 15, 45} {
		p := testutil.CreateTestProduct(s.owner.ID, "Item", models.CategoryFood, offset)
		require.NoError(s.T(), s.productRepo.Create(p))
	}

	// Act
	view, err := s.productService.ListExpiring(s.owner.ID, "")

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, view.ExpiredCount)
	assert.Equal(s.T(), 1, view.NearExpiryCount)
	assert.Len(s.T(), view.Products, 3)
}

func (s *ProductServiceTestSuite) TestSearchTermBounds() {
	// Act
	_, errShort := s.productService.ListAll(s.owner.ID, "a")
	_, errPadded := s.productService.ListAll(s.owner.ID, "  a  ")
	_, errOK := s.productService.ListAll(s.owner.ID, "ab")
	_, errLong := s.productService.ListAll(s.owner.ID, strings.Repeat("x", 51))
	_, errEmpty := s.productService.ListAll(s.owner.ID, "")

	// Assert: bounds apply after trimming, empty means unfiltered
	assert.True(s.T(), service.IsValidationError(errShort))
	assert.True(s.T(), service.IsValidationError(errPadded))
	assert.NoError(s.T(), errOK)
	assert.True(s.T(), service.IsValidationError(errLong))
	assert.NoError(s.T(), errEmpty)
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
