package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyplanner-api/internal/middleware"
	"github.com/noah-isme/studyplanner-api/internal/models"
)

type apiEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

type testRequest struct {
	method string
	target string
	body   string
	params gin.Params
	claims *models.JWTClaims
}

func serve(t *testing.T, h gin.HandlerFunc, req testRequest) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	c.Request = httptest.NewRequest(req.method, req.target, body)
	if req.body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	c.Params = req.params
	if req.claims != nil {
		c.Set(middleware.ContextUserKey, req.claims)
	}

	h(c)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func userParam(id string) gin.Params {
	return gin.Params{{Key: "userId", Value: id}}
}

func idParam(id string) gin.Params {
	return gin.Params{{Key: "id", Value: id}}
}

