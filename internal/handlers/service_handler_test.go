// internal/handlers/service_handler_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/services"
)

type ServiceHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *ServiceHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:handler_test?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(&models.ServiceCategory{}, &models.Service{}))
	suite.db = db

	catalogService := services.NewCatalogService(db)
	serviceHandler := NewServiceHandler(catalogService)

	suite.router = gin.New()
	v1 := suite.router.Group("/v1")
	v1.GET("/services", serviceHandler.ListServices)
	v1.GET("/services/:id", serviceHandler.GetService)
	v1.POST("/services", serviceHandler.CreateService)
}

func (suite *ServiceHandlerTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM services")
}

func (suite *ServiceHandlerTestSuite) postService(name, slug string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]interface{}{
		"name": name,
		"slug": slug,
	})
	req, _ := http.NewRequest("POST", "/v1/services", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ServiceHandlerTestSuite) TestCreateServiceEnvelope() {
	w := suite.postService("Logo Design", "logo-design")
	suite.Equal(http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("success", response["status"])

	data := response["data"].(map[string]interface{})
	suite.Equal("logo-design", data["slug"])
}

func (suite *ServiceHandlerTestSuite) TestDuplicateSlugConflict() {
	w := suite.postService("Logo Design", "logo-design")
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.postService("Another One", "logo-design")
	suite.Equal(http.StatusConflict, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("error", response["status"])
}

func (suite *ServiceHandlerTestSuite) TestValidationFailure() {
	w := suite.postService("Logo Design", "Not A Slug!")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ServiceHandlerTestSuite) TestListEnvelopeCarriesPagination() {
	for i := 1; i <= 3; i++ {
		w := suite.postService(fmt.Sprintf("Service %d", i), fmt.Sprintf("service-%d", i))
		suite.Require().Equal(http.StatusCreated, w.Code)
	}

	req, _ := http.NewRequest("GET", "/v1/services?limit=2", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("success", response["status"])

	meta := response["meta"].(map[string]interface{})
	pagination := meta["pagination"].(map[string]interface{})
	suite.Equal(true, pagination["has_next_page"])
	suite.NotEmpty(pagination["next_cursor"])

	data := response["data"].([]interface{})
	suite.Len(data, 2)
}

func (suite *ServiceHandlerTestSuite) TestGetServiceInvalidID() {
	req, _ := http.NewRequest("GET", "/v1/services/not-a-uuid", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ServiceHandlerTestSuite) TestUnknownSortFieldRejected() {
	req, _ := http.NewRequest("GET", "/v1/services?sortBy=password_hash", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestServiceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceHandlerTestSuite))
}
