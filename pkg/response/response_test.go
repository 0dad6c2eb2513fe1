package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
)

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w
}

func TestOKEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) { OK(c, "done", map[string]int{"n": 1}) })

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"done","data":{"n":1},"errors":[]}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestPagedMetadata(t *testing.T) {
	page := models.NewPagination(1, 10, 21)
	w := record(func(c *gin.Context) { Paged(c, "page", []int{1, 2}, page) })

	var env PagedEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 1, env.PageNumber)
	assert.Equal(t, 10, env.PageSize)
	assert.Equal(t, 21, env.TotalRecords)
	assert.Equal(t, 3, env.TotalPages)
	assert.False(t, env.HasPrevious)
	assert.True(t, env.HasNext)
}

func TestErrorUsesDetails(t *testing.T) {
	err := appErrors.WithDetails(appErrors.ErrValidation, []string{"name is required"})
	w := record(func(c *gin.Context) { Error(c, err) })

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"validation failed","data":null,"errors":["name is required"]}`, w.Body.String())
}

func TestErrorSanitisesCause(t *testing.T) {
	w := record(func(c *gin.Context) { Error(c, appErrors.Storage(errors.New("pq: relation missing"), "")) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation missing")
	assert.Contains(t, w.Body.String(), "could not access data store")
}
