// internal/services/category_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *CategoryService
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T(), "category_test")
	suite.service = NewCategoryService(suite.db)
}

func (suite *CategoryServiceTestSuite) TearDownTest() {
	suite.db.Exec("DELETE FROM service_categories")
}

func (suite *CategoryServiceTestSuite) TestCreateCategorySlugConflict() {
	_, err := suite.service.CreateCategory(&CreateCategoryRequest{Name: "Design", Slug: "design"})
	suite.Require().NoError(err)

	_, err = suite.service.CreateCategory(&CreateCategoryRequest{Name: "Design 2", Slug: "design"})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrConflict))
}

func (suite *CategoryServiceTestSuite) TestGetCategoryBySlug() {
	created, err := suite.service.CreateCategory(&CreateCategoryRequest{Name: "Design", Slug: "design"})
	suite.Require().NoError(err)

	found, err := suite.service.GetCategoryBySlug("design")
	suite.Require().NoError(err)
	suite.Equal(created.ID, found.ID)

	_, err = suite.service.GetCategoryBySlug("missing")
	suite.True(errors.Is(err, ErrNotFound))
}

func (suite *CategoryServiceTestSuite) TestCategoryCannotBeOwnParent() {
	category, err := suite.service.CreateCategory(&CreateCategoryRequest{Name: "Design", Slug: "design"})
	suite.Require().NoError(err)

	_, err = suite.service.UpdateCategory(category.ID, &UpdateCategoryRequest{ParentID: &category.ID})
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrValidation))
}

func (suite *CategoryServiceTestSuite) TestDeleteCategoryWithChildrenRefused() {
	parent, err := suite.service.CreateCategory(&CreateCategoryRequest{Name: "Design", Slug: "design"})
	suite.Require().NoError(err)

	child, err := suite.service.CreateCategory(&CreateCategoryRequest{
		Name:     "Logos",
		Slug:     "logos",
		ParentID: &parent.ID,
	})
	suite.Require().NoError(err)

	err = suite.service.DeleteCategory(parent.ID)
	suite.Require().Error(err)
	suite.True(errors.Is(err, ErrConflict))

	// Leaf categories delete fine, then the parent follows.
	suite.Require().NoError(suite.service.DeleteCategory(child.ID))
	suite.Require().NoError(suite.service.DeleteCategory(parent.ID))
}

func (suite *CategoryServiceTestSuite) TestCategoryTree() {
	design, err := suite.service.CreateCategory(&CreateCategoryRequest{Name: "Design", Slug: "design", Order: 2})
	suite.Require().NoError(err)

	_, err = suite.service.CreateCategory(&CreateCategoryRequest{Name: "Development", Slug: "development", Order: 1})
	suite.Require().NoError(err)

	_, err = suite.service.CreateCategory(&CreateCategoryRequest{
		Name:     "Logos",
		Slug:     "logos",
		ParentID: &design.ID,
	})
	suite.Require().NoError(err)

	inactive := false
	hidden, err := suite.service.CreateCategory(&CreateCategoryRequest{
		Name:     "Hidden",
		Slug:     "hidden",
		IsActive: &inactive,
	})
	suite.Require().NoError(err)
	_ = hidden

	tree, err := suite.service.GetCategoryTree()
	suite.Require().NoError(err)
	suite.Require().Len(tree, 2)

	// Roots come back in display order; children hang off their parent.
	suite.Equal("development", tree[0].Slug)
	suite.Equal("design", tree[1].Slug)
	suite.Require().Len(tree[1].Children, 1)
	suite.Equal("logos", tree[1].Children[0].Slug)
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}
