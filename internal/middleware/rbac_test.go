package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

func performWithRole(role models.UserRole, cap Capability) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/guarded", func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
		c.Next()
	}, Require(cap), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireCapabilityMatrix(t *testing.T) {
	cases := []struct {
		role models.UserRole
		cap  Capability
		want int
	}{
		{models.RoleAdmin, CapRunSolver, http.StatusOK},
		{models.RoleDean, CapRunSolver, http.StatusOK},
		{models.RoleHead, CapRunSolver, http.StatusForbidden},
		{models.RoleHead, CapValidateDept, http.StatusOK},
		{models.RoleDean, CapValidateDept, http.StatusForbidden},
		{models.RoleDean, CapApproveFinal, http.StatusOK},
		{models.RoleProfessor, CapViewStats, http.StatusForbidden},
		{models.RoleProfessor, CapViewTimetable, http.StatusOK},
		{models.RoleStudent, CapViewTimetable, http.StatusOK},
		{models.RoleStudent, CapExportTimetable, http.StatusForbidden},
	}

	for _, tc := range cases {
		got := performWithRole(tc.role, tc.cap)
		assert.Equal(t, tc.want, got, "role %s capability %s", tc.role, tc.cap)
	}
}

func TestRequireWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", Require(CapViewTimetable), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
