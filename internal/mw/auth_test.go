package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"school-resource-backend/internal/model"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"Bearer  spaced ", "spaced"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		assert.Equal(t, tc.want, BearerToken(r), "header %q", tc.header)
	}
}

func TestAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(setRole bool, role model.Role) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if setRole {
			c.Set(CtxRole, role)
		}
		AdminOnly()(c)
		if !c.IsAborted() {
			c.Status(http.StatusOK)
		}
		return w
	}

	assert.Equal(t, http.StatusOK, run(true, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, run(true, model.RoleTeacher).Code)
	assert.Equal(t, http.StatusUnauthorized, run(false, "").Code)
}
