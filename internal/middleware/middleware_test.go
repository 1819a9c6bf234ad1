package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/studyplanner-api/internal/models"
	"github.com/noah-isme/studyplanner-api/internal/service"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
)

type staticValidator map[string]*models.JWTClaims

func (v staticValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func protectedRouter(validator TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", JWT(validator))
	group.GET("/plans/:userId", RBAC(string(models.RoleAdmin), RoleSelf), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAndSelfAccess(t *testing.T) {
	validator := staticValidator{
		"student": {UserID: "u1", Role: models.RoleStudent},
		"admin":   {UserID: "root", Role: models.RoleAdmin},
	}
	r := protectedRouter(validator)

	cases := []struct {
		name   string
		header string
		path   string
		want   int
	}{
		{"missing header", "", "/plans/u1", http.StatusUnauthorized},
		{"malformed header", "Token student", "/plans/u1", http.StatusUnauthorized},
		{"bad token", "Bearer nope", "/plans/u1", http.StatusUnauthorized},
		{"self", "Bearer student", "/plans/u1", http.StatusOK},
		{"other user", "Bearer student", "/plans/u2", http.StatusForbidden},
		{"admin", "Bearer admin", "/plans/u2", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalJWT(staticValidator{"ok": {UserID: "u1"}}))
	r.GET("/", func(c *gin.Context) {
		_, found := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"authenticated": found})
	})

	for header, want := range map[string]string{"": "false", "Bearer bad": "false", "Bearer ok": "true"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"authenticated":`+want+`}`, w.Body.String())
	}
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/path", nil))

	families, err := metrics.Registry().Gather()
	assert.NoError(t, err)
	routes := map[string]bool{}
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "path" {
					routes[lp.GetValue()] = true
				}
			}
		}
	}
	assert.True(t, routes["/items/:id"])
	assert.True(t, routes[unmatchedRoute])
	assert.False(t, routes["/random/path"])
}
