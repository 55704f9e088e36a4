// main_test.go
package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"athproof/docstore"
	"athproof/models"
	"athproof/store"
)

// TestWriteRules exercises the document-layer write policy directly.
// Given: the access policy installed on the document store at startup.
// When: writes to each collection are attempted by each role.
// Then: only the roles the policy names are allowed through.
func TestWriteRules(t *testing.T) {
	cases := []struct {
		name       string
		role       string
		collection string
		allowed    bool
	}{
		{"super admin can edit settings", models.RoleSuperAdmin, store.CollectionSettings, true},
		{"admin cannot edit settings", models.RoleAdmin, store.CollectionSettings, false},
		{"super admin can manage accounts", models.RoleSuperAdmin, store.CollectionAdminUsers, true},
		{"admin cannot manage accounts", models.RoleAdmin, store.CollectionAdminUsers, false},
		{"admin can write athletes", models.RoleAdmin, store.CollectionAthletes, true},
		{"super admin can write athletes", models.RoleSuperAdmin, store.CollectionAthletes, true},
		{"coach cannot write athletes", models.RoleCoach, store.CollectionAthletes, false},
		{"scout cannot write blogs", models.RoleScout, store.CollectionBlogs, false},
		{"admin can write gallery", models.RoleAdmin, store.CollectionGallery, true},
		{"anonymous cannot write anything", "", store.CollectionGallery, false},
		{"unknown collection is always denied", models.RoleSuperAdmin, "secrets", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := writeRules(tc.role, docstore.OpWrite, tc.collection)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, docstore.ErrDenied)
			}
		})
	}
}

// TestHealthEndpoint tests the /health endpoint.
// Given: A router with the health endpoint registered.
// When: A GET request is made to /health.
// Then: It should return HTTP 200 and the expected content.
func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req, _ := http.NewRequest("GET", "/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "OK", resp.Body.String())
}
