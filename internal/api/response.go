package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"shop-service/internal/apperr"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type envelope struct {
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PerPage     int `json:"per_page"`
}

type errorBody struct {
	Message   string `json:"message"`
	Error     string `json:"error"`
	Reference string `json:"reference,omitempty"`
}

type validationBody struct {
	Status  int                 `json:"status"`
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Message: message, Data: data})
}

func respondPage[T any](c *gin.Context, message string, page *service.Page[T]) {
	c.JSON(http.StatusOK, envelope{
		Message: message,
		Data:    page.Items,
		Pagination: &pagination{
			CurrentPage: page.Page,
			TotalPages:  page.TotalPages(),
			TotalItems:  page.TotalItems,
			PerPage:     page.PerPage,
		},
	})
}

var statusByKind = map[error]int{
	apperr.ErrNotFound:            http.StatusNotFound,
	apperr.ErrBadRequest:          http.StatusBadRequest,
	apperr.ErrUnauthorized:        http.StatusUnauthorized,
	apperr.ErrForbidden:           http.StatusForbidden,
	apperr.ErrConstraintViolation: http.StatusConflict,
	apperr.ErrConflict:            http.StatusConflict,
}

// respondError writes the error response for err and aborts the chain.
// Unclassified errors are logged under a reference that is the only detail
// the client gets.
func (h *Handler) respondError(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		if status, known := statusByKind[e.Kind]; known {
			c.AbortWithStatusJSON(status, errorBody{Message: e.Message, Error: e.Kind.Error()})
			return
		}
	}

	reference := uuid.New().String()
	h.logger.Error("Request failed",
		zap.String("reference", reference),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{
		Message:   "Internal server error",
		Error:     apperr.ErrInternal.Error(),
		Reference: reference,
	})
}

// bind decodes the JSON body into req. Shape and validation failures are
// answered here and bind reports false.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrs):
		fields := make(map[string][]string, len(validationErrs))
		for _, fe := range validationErrs {
			name := fieldPath(fe.Namespace())
			fields[name] = append(fields[name], validationMessage(fe))
		}
		respondValidation(c, fields)
	case errors.As(err, &typeErr):
		respondValidation(c, map[string][]string{
			typeErr.Field: {"Must be of type " + typeErr.Type.String()},
		})
	case errors.Is(err, io.EOF):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Message: "Request body is empty", Error: apperr.ErrBadRequest.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Message: "Invalid request body", Error: apperr.ErrBadRequest.Error()})
	}
	return false
}

func respondValidation(c *gin.Context, fields map[string][]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, validationBody{
		Status:  http.StatusUnprocessableEntity,
		Error:   "validation_error",
		Message: "The given data was invalid",
		Errors:  fields,
	})
}

// fieldPath drops the struct name from a namespace such as
// "UpdateCartRequest.products[0].quantity"
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if fe.Kind() == reflect.String {
			return "Must be at least " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return "Must contain at least " + fe.Param() + " item(s)"
		}
		return "Must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters"
		}
		return "Must be at most " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "eqfield":
		return "Confirmation does not match"
	case "phone10":
		return "Must be exactly 10 digits"
	case "datefmt":
		return "Must be a date in YYYY-MM-DD format"
	default:
		return "Invalid value"
	}
}
