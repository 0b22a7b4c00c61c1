package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/gabrieudev/marcahora/internal/constants"
	"github.com/gabrieudev/marcahora/internal/database"
	"github.com/gabrieudev/marcahora/internal/dto"
	"github.com/gabrieudev/marcahora/internal/models"
	"github.com/gabrieudev/marcahora/internal/repository"
	"github.com/gabrieudev/marcahora/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type organizationTestEnv struct {
	db         *gorm.DB
	handler    *OrganizationHandler
	orgService *services.OrganizationService
}

func setupOrganizationTestEnv(t *testing.T) organizationTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	memberRepo := repository.NewMemberRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	orgService := services.NewOrganizationService(orgRepo, memberRepo)
	handler := NewOrganizationHandler(orgService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return organizationTestEnv{
		db:         db,
		handler:    handler,
		orgService: orgService,
	}
}

func orgTestContext(method, url string, body []byte, userID string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func createOrgTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashed",
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestOrganizationHandler_CreateOrganization(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createOrgTestUser(t, env.db, "Dona", "dona@marcahora.com")

	payload := map[string]interface{}{
		"name":     "Festival de Inverno",
		"slug":     "festival-inverno",
		"settings": map[string]interface{}{"fuso": "America/Sao_Paulo"},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodPost, "/api/organizations", body, user.ID, nil)

	env.handler.CreateOrganization(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.OrganizationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Festival de Inverno", response.Name)
	require.Equal(t, "festival-inverno", response.Slug)
	require.Equal(t, user.ID, response.OwnerID)
}

func TestOrganizationHandler_CreateOrganization_SlugConflict(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createOrgTestUser(t, env.db, "Dona", "dona@marcahora.com")
	_, err := env.orgService.Create(services.CreateOrganizationInput{Name: "Org", Slug: "repetido"}, user.ID)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]string{"name": "Outra", "slug": "repetido"})
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodPost, "/api/organizations", body, user.ID, nil)

	env.handler.CreateOrganization(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestOrganizationHandler_GetOrganization(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createOrgTestUser(t, env.db, "Dona", "dona@marcahora.com")
	org, err := env.orgService.Create(services.CreateOrganizationInput{Name: "Org", Slug: "org"}, user.ID)
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodGet, "/api/organizations/x", nil, user.ID, gin.Params{{Key: "organizationId", Value: org.ID}})

	env.handler.GetOrganization(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.OrganizationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, org.ID, response.ID)
}

func TestOrganizationHandler_GetOrganization_NotFound(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createOrgTestUser(t, env.db, "Dona", "dona@marcahora.com")

	c, w := orgTestContext(http.MethodGet, "/api/organizations/x", nil, user.ID, gin.Params{{Key: "organizationId", Value: "nao-existe"}})

	env.handler.GetOrganization(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrganizationHandler_SearchOrganizations(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createOrgTestUser(t, env.db, "Dona", "dona@marcahora.com")
	_, err := env.orgService.Create(services.CreateOrganizationInput{Name: "Festival de Inverno", Slug: "festival"}, user.ID)
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodGet, "/api/organizations/search?name=Festival", nil, user.ID, nil)
	env.handler.SearchOrganizations(c)

	require.Equal(t, http.StatusOK, w.Code)
	var orgs []dto.OrganizationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orgs))
	require.Len(t, orgs, 1)

	// Missing query parameter.
	c, w = orgTestContext(http.MethodGet, "/api/organizations/search", nil, user.ID, nil)
	env.handler.SearchOrganizations(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrganizationHandler_UpdateOrganization(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createOrgTestUser(t, env.db, "Dona", "dona@marcahora.com")
	org, err := env.orgService.Create(services.CreateOrganizationInput{Name: "Org", Slug: "org"}, user.ID)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]string{"name": "Org Renomeada"})
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodPatch, "/api/organizations/x", body, user.ID, gin.Params{{Key: "organizationId", Value: org.ID}})

	env.handler.UpdateOrganization(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.OrganizationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Org Renomeada", response.Name)
}

func TestOrganizationHandler_UpdateOrganization_NotOwner(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createOrgTestUser(t, env.db, "Dona", "dona@marcahora.com")
	org, err := env.orgService.Create(services.CreateOrganizationInput{Name: "Org", Slug: "org"}, user.ID)
	require.NoError(t, err)
	other := createOrgTestUser(t, env.db, "Outra", "outra@marcahora.com")

	body, err := json.Marshal(map[string]string{"name": "Invasão"})
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodPatch, "/api/organizations/x", body, other.ID, gin.Params{{Key: "organizationId", Value: org.ID}})

	env.handler.UpdateOrganization(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrganizationHandler_DeleteOrganization(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createOrgTestUser(t, env.db, "Dona", "dona@marcahora.com")
	org, err := env.orgService.Create(services.CreateOrganizationInput{Name: "Org", Slug: "org"}, user.ID)
	require.NoError(t, err)

	c, w := orgTestContext(http.MethodDelete, "/api/organizations/x", nil, user.ID, gin.Params{{Key: "organizationId", Value: org.ID}})

	env.handler.DeleteOrganization(c)

	require.Equal(t, http.StatusNoContent, w.Code)

	var refreshed models.Organization
	require.NoError(t, env.db.Where("id = ?", org.ID).First(&refreshed).Error)
	require.False(t, refreshed.FlActive)
}

func TestOrganizationHandler_ListAndMyOrganizations(t *testing.T) {
	env := setupOrganizationTestEnv(t)

	user := createOrgTestUser(t, env.db, "Dona", "dona@marcahora.com")
	_, err := env.orgService.Create(services.CreateOrganizationInput{Name: "Org", Slug: "org"}, user.ID)
	require.NoError(t, err)
	bystander := createOrgTestUser(t, env.db, "Outra", "outra@marcahora.com")

	c, w := orgTestContext(http.MethodGet, "/api/organizations", nil, user.ID, nil)
	env.handler.ListOrganizations(c)
	require.Equal(t, http.StatusOK, w.Code)
	var orgs []dto.OrganizationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orgs))
	require.Len(t, orgs, 1)

	c, w = orgTestContext(http.MethodGet, "/api/organizations/my", nil, bystander.ID, nil)
	env.handler.GetMyOrganizations(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orgs))
	require.Empty(t, orgs)
}
