package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gdugdh24/match-matrix-backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// UseJSONFieldNames makes validation errors report json field names instead
// of Go field names.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// respondBindError answers a failed ShouldBindJSON with 400 and, for
// validation failures, a field -> message map.
func respondBindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}

// respondError maps domain errors onto HTTP statuses. Anything unknown is a
// 500 and is attached to the context for the access log.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "participant not found"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotWhitelisted):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "email is not on the whitelist"})
	case errors.Is(err, domain.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrMatchingBusy):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "matching is busy, retry shortly"})
	case errors.Is(err, domain.ErrParticipantAlreadyMatched):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "participant already matched"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// fieldPath drops the root struct name: "DuoRequest.participant1.email"
// becomes "participant1.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param() + unit(fe)
	case "max":
		return "must be at most " + fe.Param() + unit(fe)
	}
	return "is invalid"
}

func unit(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Map:
		return " items"
	}
	return ""
}
