package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProductHandlerIntegrationTestSuite struct {
	suite.Suite
	app    *testApp
	client *testClient
}

func (s *ProductHandlerIntegrationTestSuite) SetupSuite() {
	s.app = newTestApp(s.T())
}

func (s *ProductHandlerIntegrationTestSuite) TearDownSuite() {
	s.app.teardown(s.T())
}

func (s *ProductHandlerIntegrationTestSuite) SetupTest() {
	s.app.reset(s.T())
	s.client = s.app.newClient()
	s.client.signupAndLogin(s.T(), "alice", "alice@example.com", "secret99")
}

func productPayload(name string, expiryOffsetDays int) gin.H {
	today := time.Now()
	return gin.H{
		"product_name":       name,
		"product_type":       "box",
		"location":           "Kitchen shelf",
		"quantity":           "1",
		"category":           "food",
		"manufacturing_date": today.AddDate(0, 0, expiryOffsetDays-30).Format("2006-01-02"),
		"expiry_date":        today.AddDate(0, 0, expiryOffsetDays).Format("2006-01-02"),
	}
}

func (s *ProductHandlerIntegrationTestSuite) createProduct(name string, expiryOffsetDays int) string {
	w := s.client.do(s.T(), http.MethodPost, "/api/products", productPayload(name, expiryOffsetDays))
	require.Equal(s.T(), http.StatusCreated, w.Code)

	product := parseBody(s.T(), w)["product"].(map[string]interface{})
	return product["id"].(string)
}

func (s *ProductHandlerIntegrationTestSuite) TestUnauthenticated() {
	anonymous := s.app.newClient()

	w := anonymous.do(s.T(), http.MethodGet, "/api/products", nil)

	require.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(s.T(), "authentication required", parseBody(s.T(), w)["error"])
}

func (s *ProductHandlerIntegrationTestSuite) TestCreateAndList() {
	// Act
	s.createProduct("Milk", 5)
	w := s.client.do(s.T(), http.MethodGet, "/api/products", nil)

	// Assert
	require.Equal(s.T(), http.StatusOK, w.Code)
	body := parseBody(s.T(), w)
	assert.Equal(s.T(), "alice", body["username"])
	assert.Equal(s.T(), float64(1), body["total"])

	groups := body["groups"].([]interface{})
	require.Len(s.T(), groups, 1)
	group := groups[0].(map[string]interface{})
	assert.Equal(s.T(), "food", group["category"])
	products := group["products"].([]interface{})
	require.Len(s.T(), products, 1)

	// Derived status rides along with the row
	row := products[0].(map[string]interface{})
	assert.Equal(s.T(), "Milk", row["product_name"])
	status := row["expiry_status"].(map[string]interface{})
	assert.Equal(s.T(), "Expiring This Week", status["status"])
	assert.Equal(s.T(), "#fd7e14", status["color"])

	// Create flash is delivered with the listing, once
	flashes := body["flashes"].([]interface{})
	require.Len(s.T(), flashes, 1)
	assert.Equal(s.T(), "Product added successfully!", flashes[0].(map[string]interface{})["message"])
}

func (s *ProductHandlerIntegrationTestSuite) TestCreate_ValidationError() {
	payload := productPayload("Milk", 5)
	payload["quantity"] = "0"

	w := s.client.do(s.T(), http.MethodPost, "/api/products", payload)

	require.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Equal(s.T(), "quantity must be between 1 and 9999", parseBody(s.T(), w)["error"])
}

func (s *ProductHandlerIntegrationTestSuite) TestGet_Prefill() {
	id := s.createProduct("Olive Oil", 90)

	w := s.client.do(s.T(), http.MethodGet, "/api/products/"+id, nil)

	require.Equal(s.T(), http.StatusOK, w.Code)
	product := parseBody(s.T(), w)["product"].(map[string]interface{})
	assert.Equal(s.T(), "Olive Oil", product["product_name"])
	assert.Equal(s.T(), "box", product["product_type"])
}

func (s *ProductHandlerIntegrationTestSuite) TestGet_InvalidID() {
	w := s.client.do(s.T(), http.MethodGet, "/api/products/not-a-uuid", nil)

	require.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Equal(s.T(), "invalid product id", parseBody(s.T(), w)["error"])
}

func (s *ProductHandlerIntegrationTestSuite) TestGet_ForeignProduct() {
	// Arrange: bob asks for alice's product
	id := s.createProduct("Olive Oil", 90)
	bob := s.app.newClient()
	bob.signupAndLogin(s.T(), "bob", "bob@example.com", "secret99")

	// Act
	w := bob.do(s.T(), http.MethodGet, "/api/products/"+id, nil)

	// Assert: indistinguishable from a missing id
	require.Equal(s.T(), http.StatusNotFound, w.Code)
	assert.Equal(s.T(), "product not found", parseBody(s.T(), w)["error"])

	w = bob.do(s.T(), http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	require.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *ProductHandlerIntegrationTestSuite) TestUpdate() {
	id := s.createProduct("Milk", 5)

	payload := productPayload("Whole Milk", 5)
	payload["quantity"] = "3"
	w := s.client.do(s.T(), http.MethodPut, "/api/products/"+id, payload)

	require.Equal(s.T(), http.StatusOK, w.Code)
	product := parseBody(s.T(), w)["product"].(map[string]interface{})
	assert.Equal(s.T(), "Whole Milk", product["product_name"])
	assert.Equal(s.T(), float64(3), product["quantity"])
}

func (s *ProductHandlerIntegrationTestSuite) TestUpdate_ForeignProduct() {
	id := s.createProduct("Milk", 5)
	bob := s.app.newClient()
	bob.signupAndLogin(s.T(), "bob", "bob@example.com", "secret99")

	w := bob.do(s.T(), http.MethodPut, "/api/products/"+id, productPayload("Hijacked", 5))

	require.Equal(s.T(), http.StatusNotFound, w.Code)
	assert.Equal(s.T(), "product not found", parseBody(s.T(), w)["error"])
}

func (s *ProductHandlerIntegrationTestSuite) TestDelete() {
	id := s.createProduct("Milk", 5)

	w := s.client.do(s.T(), http.MethodDelete, "/api/products/"+id, nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	w = s.client.do(s.T(), http.MethodGet, "/api/products/"+id, nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *ProductHandlerIntegrationTestSuite) TestDelete_MissStillSucceeds() {
	w := s.client.do(s.T(), http.MethodDelete, "/api/products/"+uuid.NewString(), nil)

	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "Product deleted successfully", parseBody(s.T(), w)["message"])
}

func (s *ProductHandlerIntegrationTestSuite) TestListExpiring() {
	// Arrange: expired, near-expiry, and out-of-window products
	s.createProduct("Old Milk", -3)
	s.createProduct("Cheese", 10)
	s.createProduct("Canned Beans", 60)

	// Act
	w := s.client.do(s.T(), http.MethodGet, "/api/products/expiring", nil)

	// Assert
	require.Equal(s.T(), http.StatusOK, w.Code)
	body := parseBody(s.T(), w)
	assert.Equal(s.T(), float64(1), body["expired_count"])
	assert.Equal(s.T(), float64(1), body["near_expiry_count"])

	products := body["products"].([]interface{})
	require.Len(s.T(), products, 2)
	first := products[0].(map[string]interface{})
	assert.Equal(s.T(), "Old Milk", first["product_name"])
	status := first["expiry_status"].(map[string]interface{})
	assert.Equal(s.T(), "Expired", status["status"])
	assert.Equal(s.T(), float64(3), status["days"])
}

func (s *ProductHandlerIntegrationTestSuite) TestList_Search() {
	s.createProduct("Almond Butter", 40)
	s.createProduct("Rice", 40)

	w := s.client.do(s.T(), http.MethodGet, "/api/products?search=almond", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), float64(1), parseBody(s.T(), w)["total"])

	w = s.client.do(s.T(), http.MethodGet, "/api/products?search=a", nil)
	require.Equal(s.T(), http.StatusBadRequest, w.Code)
	assert.Equal(s.T(), "search term must be at least 2 characters long", parseBody(s.T(), w)["error"])
}

func (s *ProductHandlerIntegrationTestSuite) TestMeta() {
	w := s.client.do(s.T(), http.MethodGet, "/api/products/meta", nil)

	require.Equal(s.T(), http.StatusOK, w.Code)
	body := parseBody(s.T(), w)
	assert.Len(s.T(), body["product_types"], 8)
	assert.Len(s.T(), body["categories"], 5)
}

func TestProductHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ProductHandlerIntegrationTestSuite))
}
