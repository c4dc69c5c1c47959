// internal/services/seller_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/config"
	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type SellerServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *SellerService
}

func (suite *SellerServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T(), "seller_test")
	suite.service = NewSellerService(suite.db, &config.Config{
		Payment: config.PaymentConfig{DefaultCommissionRate: 20},
	})
}

func (suite *SellerServiceTestSuite) TearDownTest() {
	suite.db.Exec("DELETE FROM sellers")
	suite.db.Exec("DELETE FROM users")
}

func (suite *SellerServiceTestSuite) TestRegisterSellerDefaults() {
	user := createTestUser(suite.T(), suite.db, "newseller", models.UserRoleCustomer)

	seller, err := suite.service.RegisterSeller(user.ID, &RegisterSellerRequest{
		DisplayName: "New Studio",
	})
	suite.Require().NoError(err)
	suite.Equal(models.SellerStatusPendingReview, seller.Status)
	suite.Equal(20.0, seller.CommissionRate)
}

func (suite *SellerServiceTestSuite) TestRegisterSellerCustomRate() {
	user := createTestUser(suite.T(), suite.db, "negotiated", models.UserRoleCustomer)

	rate := 12.5
	seller, err := suite.service.RegisterSeller(user.ID, &RegisterSellerRequest{
		DisplayName:    "Negotiated Studio",
		CommissionRate: &rate,
	})
	suite.Require().NoError(err)
	suite.Equal(12.5, seller.CommissionRate)
}

func (suite *SellerServiceTestSuite) TestOneSellerPerUser() {
	user := createTestUser(suite.T(), suite.db, "doubleseller", models.UserRoleCustomer)

	_, err := suite.service.RegisterSeller(user.ID, &RegisterSellerRequest{DisplayName: "First"})
	suite.Require().NoError(err)

	_, err = suite.service.RegisterSeller(user.ID, &RegisterSellerRequest{DisplayName: "Second"})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrConflict))
}

func (suite *SellerServiceTestSuite) TestSuspendedUserCannotRegister() {
	user := createTestUser(suite.T(), suite.db, "suspended-user", models.UserRoleCustomer)
	suite.Require().NoError(suite.db.Model(user).Update("status", models.UserStatusSuspended).Error)

	_, err := suite.service.RegisterSeller(user.ID, &RegisterSellerRequest{DisplayName: "Blocked"})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrForbidden))
}

func (suite *SellerServiceTestSuite) TestListSellersStatusFilter() {
	first := createTestUser(suite.T(), suite.db, "list-seller-1", models.UserRoleCustomer)
	second := createTestUser(suite.T(), suite.db, "list-seller-2", models.UserRoleCustomer)

	approved, err := suite.service.RegisterSeller(first.ID, &RegisterSellerRequest{DisplayName: "Approved Studio"})
	suite.Require().NoError(err)
	_, err = suite.service.UpdateSellerStatus(approved.ID, &UpdateSellerStatusRequest{Status: models.SellerStatusApproved})
	suite.Require().NoError(err)

	_, err = suite.service.RegisterSeller(second.ID, &RegisterSellerRequest{DisplayName: "Waiting Studio"})
	suite.Require().NoError(err)

	status := models.SellerStatusApproved
	params := SellerListParams{
		CursorParams: utils.CursorParams{Limit: 10, SortBy: "created_at", SortOrder: "ASC"},
		Status:       &status,
	}
	sellers, _, err := suite.service.ListSellers(params)
	suite.Require().NoError(err)
	suite.Require().Len(sellers, 1)
	suite.Equal("Approved Studio", sellers[0].DisplayName)
}

func TestSellerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SellerServiceTestSuite))
}
