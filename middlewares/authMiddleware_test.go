package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/open", func(c *gin.Context) {
		if claims := CtxValue(c.Request.Context()); claims != nil {
			c.String(http.StatusOK, claims.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/secured", RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r *gin.Engine, path string, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("API_SECRET", "middleware-secret")
	r := newTestRouter()

	w := serve(r, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = serve(r, "/open", "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, "/open", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	issued, err := utils.JwtGenerate(3, "clerk", "USER")
	assert.NoError(t, err)
	w = serve(r, "/open", "Bearer "+issued.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "clerk", w.Body.String())
}

func TestRequireAuthAndAdmin(t *testing.T) {
	r := newTestRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/secured", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/admin", "").Code)
}
