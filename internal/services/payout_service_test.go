// internal/services/payout_service_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/config"
	"github.com/vendora/marketplace-backend/internal/models"
)

func TestComputeCommission(t *testing.T) {
	fee, net := ComputeCommission(1000, 20)
	assert.Equal(t, 200.0, fee)
	assert.Equal(t, 800.0, net)

	fee, net = ComputeCommission(99.99, 2.5)
	assert.Equal(t, 2.5, fee)
	assert.Equal(t, 97.49, net)

	// Zero commission passes the full amount through.
	fee, net = ComputeCommission(50, 0)
	assert.Equal(t, 0.0, fee)
	assert.Equal(t, 50.0, net)
}

func TestComputeCommissionInvariant(t *testing.T) {
	cases := []struct {
		amount float64
		rate   float64
	}{
		{1000, 20},
		{33.33, 15},
		{0.03, 50},
		{123.45, 7.5},
		{9999.99, 2.9},
	}

	for _, tc := range cases {
		fee, net := ComputeCommission(tc.amount, tc.rate)
		// fee + net reassembles the rounded gross amount exactly.
		assert.InDelta(t, tc.amount, fee+net, 0.005, "amount=%v rate=%v", tc.amount, tc.rate)
	}
}

type PayoutServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	payoutService *PayoutService
	sellerService *SellerService
	cfg           *config.Config
}

func (suite *PayoutServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T(), "payout_test")
	suite.cfg = &config.Config{
		Payment: config.PaymentConfig{
			DefaultCommissionRate: 20,
			MinimumPayout:         10,
		},
	}
	suite.payoutService = NewPayoutService(suite.db, suite.cfg)
	suite.sellerService = NewSellerService(suite.db, suite.cfg)
}

func (suite *PayoutServiceTestSuite) TearDownTest() {
	suite.db.Exec("DELETE FROM payouts")
	suite.db.Exec("DELETE FROM sellers")
	suite.db.Exec("DELETE FROM users")
}

func (suite *PayoutServiceTestSuite) createApprovedSeller(username string) *models.Seller {
	user := createTestUser(suite.T(), suite.db, username, models.UserRoleCustomer)

	seller, err := suite.sellerService.RegisterSeller(user.ID, &RegisterSellerRequest{
		DisplayName: "Test Studio",
	})
	suite.Require().NoError(err)

	seller, err = suite.sellerService.UpdateSellerStatus(seller.ID, &UpdateSellerStatusRequest{
		Status: models.SellerStatusApproved,
	})
	suite.Require().NoError(err)

	return seller
}

func (suite *PayoutServiceTestSuite) createPayout(seller *models.Seller, amount float64) *models.Payout {
	payout, err := suite.payoutService.CreatePayout(&CreatePayoutRequest{
		SellerID:    seller.ID,
		PeriodStart: time.Now().AddDate(0, -1, 0),
		PeriodEnd:   time.Now(),
		Amount:      amount,
		ItemCount:   5,
	})
	suite.Require().NoError(err)
	return payout
}

func (suite *PayoutServiceTestSuite) TestCreatePayoutComputesCommission() {
	seller := suite.createApprovedSeller("studio1")

	payout := suite.createPayout(seller, 1000)
	suite.Equal(1000.0, payout.Amount)
	suite.Equal(200.0, payout.PlatformFee)
	suite.Equal(800.0, payout.NetAmount)
	suite.Equal(models.PayoutStatusPending, payout.Status)
	suite.Nil(payout.ProcessedAt)
}

func (suite *PayoutServiceTestSuite) TestCreatePayoutRequiresApprovedSeller() {
	user := createTestUser(suite.T(), suite.db, "pending-studio", models.UserRoleCustomer)
	seller, err := suite.sellerService.RegisterSeller(user.ID, &RegisterSellerRequest{
		DisplayName: "Pending Studio",
	})
	suite.Require().NoError(err)

	_, err = suite.payoutService.CreatePayout(&CreatePayoutRequest{
		SellerID:    seller.ID,
		PeriodStart: time.Now().AddDate(0, -1, 0),
		PeriodEnd:   time.Now(),
		Amount:      100,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrForbidden))
}

func (suite *PayoutServiceTestSuite) TestCreatePayoutBelowMinimum() {
	seller := suite.createApprovedSeller("studio2")

	_, err := suite.payoutService.CreatePayout(&CreatePayoutRequest{
		SellerID:    seller.ID,
		PeriodStart: time.Now().AddDate(0, -1, 0),
		PeriodEnd:   time.Now(),
		Amount:      5,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrValidation))
}

func (suite *PayoutServiceTestSuite) TestCreatePayoutInvalidPeriod() {
	seller := suite.createApprovedSeller("studio3")

	_, err := suite.payoutService.CreatePayout(&CreatePayoutRequest{
		SellerID:    seller.ID,
		PeriodStart: time.Now(),
		PeriodEnd:   time.Now().AddDate(0, -1, 0),
		Amount:      100,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrValidation))
}

func (suite *PayoutServiceTestSuite) TestLifecycleHappyPath() {
	seller := suite.createApprovedSeller("studio4")
	payout := suite.createPayout(seller, 500)

	_, err := suite.payoutService.UpdatePayoutStatus(payout.ID, &UpdatePayoutStatusRequest{
		Status: models.PayoutStatusProcessing,
	})
	suite.Require().NoError(err)

	completed, err := suite.payoutService.UpdatePayoutStatus(payout.ID, &UpdatePayoutStatusRequest{
		Status: models.PayoutStatusCompleted,
	})
	suite.Require().NoError(err)

	reloaded, err := suite.payoutService.GetPayout(completed.ID)
	suite.Require().NoError(err)
	suite.Equal(models.PayoutStatusCompleted, reloaded.Status)
	suite.NotNil(reloaded.ProcessedAt)

	// Completion is the one writer for the seller's aggregates.
	updated, err := suite.sellerService.GetSeller(seller.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(5), updated.TotalSales)
	suite.Equal(500.0, updated.TotalRevenue)
}

func (suite *PayoutServiceTestSuite) TestCannotSkipProcessing() {
	seller := suite.createApprovedSeller("studio5")
	payout := suite.createPayout(seller, 500)

	_, err := suite.payoutService.UpdatePayoutStatus(payout.ID, &UpdatePayoutStatusRequest{
		Status: models.PayoutStatusCompleted,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrInvalidTransition))
}

func (suite *PayoutServiceTestSuite) TestFailureRequiresReason() {
	seller := suite.createApprovedSeller("studio6")
	payout := suite.createPayout(seller, 500)

	_, err := suite.payoutService.UpdatePayoutStatus(payout.ID, &UpdatePayoutStatusRequest{
		Status: models.PayoutStatusProcessing,
	})
	suite.Require().NoError(err)

	_, err = suite.payoutService.UpdatePayoutStatus(payout.ID, &UpdatePayoutStatusRequest{
		Status: models.PayoutStatusFailed,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrValidation))

	_, err = suite.payoutService.UpdatePayoutStatus(payout.ID, &UpdatePayoutStatusRequest{
		Status:        models.PayoutStatusFailed,
		FailureReason: "destination account closed",
	})
	suite.Require().NoError(err)
}

func (suite *PayoutServiceTestSuite) TestFailedIsTerminal() {
	seller := suite.createApprovedSeller("studio7")
	payout := suite.createPayout(seller, 500)

	_, err := suite.payoutService.UpdatePayoutStatus(payout.ID, &UpdatePayoutStatusRequest{
		Status: models.PayoutStatusProcessing,
	})
	suite.Require().NoError(err)

	_, err = suite.payoutService.UpdatePayoutStatus(payout.ID, &UpdatePayoutStatusRequest{
		Status:        models.PayoutStatusFailed,
		FailureReason: "transfer rejected",
	})
	suite.Require().NoError(err)

	_, err = suite.payoutService.UpdatePayoutStatus(payout.ID, &UpdatePayoutStatusRequest{
		Status: models.PayoutStatusProcessing,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrInvalidTransition))
}

func TestPayoutServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PayoutServiceTestSuite))
}
