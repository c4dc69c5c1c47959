// internal/services/subscription_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type SubscriptionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *SubscriptionService
}

func (suite *SubscriptionServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T(), "subscription_test")
	suite.service = NewSubscriptionService(suite.db)
}

func (suite *SubscriptionServiceTestSuite) TearDownTest() {
	suite.db.Exec("DELETE FROM credit_transactions")
	suite.db.Exec("DELETE FROM subscriptions")
	suite.db.Exec("DELETE FROM subscription_plans")
	suite.db.Exec("DELETE FROM users")
}

func (suite *SubscriptionServiceTestSuite) createPlan(slug string, credits int64) *models.SubscriptionPlan {
	plan, err := suite.service.CreatePlan(&CreatePlanRequest{
		Name:            "Plan " + slug,
		Slug:            slug,
		Price:           9.99,
		CreditsPerCycle: credits,
	})
	suite.Require().NoError(err)
	return plan
}

func (suite *SubscriptionServiceTestSuite) TestCreatePlanSlugConflict() {
	suite.createPlan("starter", 100)

	_, err := suite.service.CreatePlan(&CreatePlanRequest{
		Name:            "Starter Again",
		Slug:            "starter",
		Price:           19.99,
		CreditsPerCycle: 200,
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrConflict))
}

func (suite *SubscriptionServiceTestSuite) TestSubscribeGrantsCredits() {
	plan := suite.createPlan("starter", 100)
	user := createTestUser(suite.T(), suite.db, "subscriber", models.UserRoleCustomer)

	subscription, err := suite.service.Subscribe(user.ID, plan.ID)
	suite.Require().NoError(err)
	suite.Equal(models.SubscriptionStatusActive, subscription.Status)
	suite.True(subscription.CurrentPeriodEnd.After(subscription.CurrentPeriodStart))

	balance, err := suite.service.GetBalance(user.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(100), balance)
}

func (suite *SubscriptionServiceTestSuite) TestSubscribeOnlyOneActive() {
	plan := suite.createPlan("starter", 100)
	user := createTestUser(suite.T(), suite.db, "repeat-subscriber", models.UserRoleCustomer)

	_, err := suite.service.Subscribe(user.ID, plan.ID)
	suite.Require().NoError(err)

	_, err = suite.service.Subscribe(user.ID, plan.ID)
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrConflict))
}

func (suite *SubscriptionServiceTestSuite) TestSubscribeInactivePlan() {
	plan := suite.createPlan("retired", 100)
	inactive := false
	_, err := suite.service.UpdatePlan(plan.ID, &UpdatePlanRequest{IsActive: &inactive})
	suite.Require().NoError(err)

	user := createTestUser(suite.T(), suite.db, "late-subscriber", models.UserRoleCustomer)
	_, err = suite.service.Subscribe(user.ID, plan.ID)
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrValidation))
}

func (suite *SubscriptionServiceTestSuite) TestCancelThenResubscribe() {
	plan := suite.createPlan("starter", 100)
	user := createTestUser(suite.T(), suite.db, "canceler", models.UserRoleCustomer)

	_, err := suite.service.Subscribe(user.ID, plan.ID)
	suite.Require().NoError(err)

	canceled, err := suite.service.CancelCurrent(user.ID)
	suite.Require().NoError(err)
	suite.Equal(models.SubscriptionStatusCanceled, canceled.Status)

	// After cancellation a new subscription may start; credits accumulate.
	_, err = suite.service.Subscribe(user.ID, plan.ID)
	suite.Require().NoError(err)

	balance, err := suite.service.GetBalance(user.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(200), balance)
}

func (suite *SubscriptionServiceTestSuite) TestSpendCredits() {
	plan := suite.createPlan("starter", 100)
	user := createTestUser(suite.T(), suite.db, "spender", models.UserRoleCustomer)

	_, err := suite.service.Subscribe(user.ID, plan.ID)
	suite.Require().NoError(err)

	entry, err := suite.service.SpendCredits(user.ID, &SpendCreditsRequest{
		Amount: 30,
		Reason: "featured placement",
	})
	suite.Require().NoError(err)
	suite.Equal(int64(-30), entry.Delta)
	suite.Equal(models.CreditEntryTypeSpend, entry.EntryType)

	balance, err := suite.service.GetBalance(user.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(70), balance)
}

func (suite *SubscriptionServiceTestSuite) TestOverspendRejected() {
	plan := suite.createPlan("starter", 50)
	user := createTestUser(suite.T(), suite.db, "overspender", models.UserRoleCustomer)

	_, err := suite.service.Subscribe(user.ID, plan.ID)
	suite.Require().NoError(err)

	_, err = suite.service.SpendCredits(user.ID, &SpendCreditsRequest{
		Amount: 51,
		Reason: "too much",
	})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrValidation))

	// The failed spend leaves no ledger entry behind.
	balance, err := suite.service.GetBalance(user.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(50), balance)
}

func (suite *SubscriptionServiceTestSuite) TestLedgerPagination() {
	plan := suite.createPlan("starter", 100)
	user := createTestUser(suite.T(), suite.db, "ledger-user", models.UserRoleCustomer)

	_, err := suite.service.Subscribe(user.ID, plan.ID)
	suite.Require().NoError(err)

	for i := 0; i < 3; i++ {
		_, err := suite.service.SpendCredits(user.ID, &SpendCreditsRequest{
			Amount: 10,
			Reason: "promotion",
		})
		suite.Require().NoError(err)
	}

	params := LedgerListParams{
		CursorParams: utils.CursorParams{Limit: 2, SortBy: "delta", SortOrder: "ASC"},
	}
	entries, info, err := suite.service.ListLedger(user.ID, params)
	suite.Require().NoError(err)
	suite.Len(entries, 2)
	suite.True(info.HasNextPage)

	spend := models.CreditEntryTypeSpend
	params = LedgerListParams{
		CursorParams: utils.CursorParams{Limit: 10, SortBy: "created_at", SortOrder: "ASC"},
		EntryType:    &spend,
	}
	entries, _, err = suite.service.ListLedger(user.ID, params)
	suite.Require().NoError(err)
	suite.Len(entries, 3)
}

func TestSubscriptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceTestSuite))
}
