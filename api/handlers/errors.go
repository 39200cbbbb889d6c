package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "pokeproxy/pkg/errors"
	"pokeproxy/pkg/logger"
)

var registerOnce sync.Once

// registerFieldNames makes validation errors report the json, form or uri name of a field.
func registerFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.Split(field.Tag.Get(tag), ",")[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
	})
}

// respondError writes the {"error": message} body with the mapped status.
// Internal errors are logged and never leak their cause.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	status := apperrors.StatusCode(appErr)

	if status >= http.StatusInternalServerError {
		logger.WithModule("http").Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	_ = c.Error(err)

	message := appErr.Message
	if status == http.StatusInternalServerError {
		message = apperrors.ErrInternal.Message
	}
	c.JSON(status, gin.H{"error": message})
}

// bindJSON binds the body into dest.
// Malformed JSON is a bad request, failed rules are a validation error.
func bindJSON[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			respondError(c, apperrors.ErrValidation.WithMessage("%s", formatValidationError(ve)))
			return false
		}
		respondError(c, apperrors.Wrap(apperrors.ErrBadRequest.WithMessage("invalid JSON payload"), err))
		return false
	}
	return true
}

// bindQuery binds the query string into dest.
func bindQuery[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		respondError(c, apperrors.ErrValidation.WithMessage("%s", formatBindError(err)))
		return false
	}
	return true
}

// bindURI binds the path params into dest.
func bindURI[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindUri(dest); err != nil {
		respondError(c, apperrors.ErrValidation.WithMessage("%s", formatBindError(err)))
		return false
	}
	return true
}

func formatBindError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return formatValidationError(ve)
	}
	return "invalid request parameters"
}

func formatValidationError(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return "invalid request payload"
	}

	messages := make([]string, 0, len(ve))
	for _, failure := range ve {
		field := prettifyFieldName(failure.Field())
		switch failure.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, failure.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", field, failure.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, failure.Param()))
		default:
			if failure.Param() != "" {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s=%s", field, failure.Tag(), failure.Param()))
			} else {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", field, failure.Tag()))
			}
		}
	}
	return strings.Join(messages, "; ")
}

func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	return strings.ToLower(name)
}
