package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jntcloudcod2019/challenge-fiap-api/internal/models"
	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  []string    `json:"errors"`
}

// PagedEnvelope extends Envelope with page metadata.
type PagedEnvelope struct {
	Envelope
	PageNumber   int  `json:"pageNumber"`
	PageSize     int  `json:"pageSize"`
	TotalRecords int  `json:"totalRecords"`
	TotalPages   int  `json:"totalPages"`
	HasPrevious  bool `json:"hasPrevious"`
	HasNext      bool `json:"hasNext"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends a success envelope.
func JSON(c *gin.Context, status int, message string, data interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Success: true, Message: message, Data: data, Errors: []string{}})
}

// OK responds with HTTP 200.
func OK(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusOK, message, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, message, data)
}

// Paged sends a success envelope for one page of results.
func Paged(c *gin.Context, message string, data interface{}, page models.Pagination) {
	noStore(c)
	c.JSON(http.StatusOK, PagedEnvelope{
		Envelope:     Envelope{Success: true, Message: message, Data: data, Errors: []string{}},
		PageNumber:   page.Page,
		PageSize:     page.PageSize,
		TotalRecords: page.TotalCount,
		TotalPages:   page.TotalPages(),
		HasPrevious:  page.Page > 1,
		HasNext:      page.Page < page.TotalPages(),
	})
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	errs := appErr.Details
	if len(errs) == 0 {
		errs = []string{appErr.Message}
	}
	c.JSON(appErr.Status, Envelope{Success: false, Message: appErr.Message, Data: nil, Errors: errs})
}
