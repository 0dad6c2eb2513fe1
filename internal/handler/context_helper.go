package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/middleware"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/response"
)

// requireClaims returns the caller's claims or writes 401 and returns nil.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}

// bindJSON decodes the request body, writing a validation error on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid request payload"), []string{err.Error()}))
		return false
	}
	return true
}

// pageParams reads page and pageSize; unparsable values fall back to defaults.
func pageParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(models.DefaultPageSize)))
	return page, size
}

func searchQuery(c *gin.Context) string {
	return strings.TrimSpace(c.Query("query"))
}
