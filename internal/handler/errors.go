package handler

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sliramanoel/venda/internal/i18n"
	"github.com/sliramanoel/venda/internal/middleware"
	"github.com/sliramanoel/venda/internal/service"
)

var jsonNamesOnce sync.Once

// UseJSONFieldNames makes binding errors report fields by their JSON name
func UseJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
	})
}

// respondBindError answers 400 for a request that failed to bind. Validation failures
// carry a localized message per field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": middleware.Localize(c, i18n.ErrInvalidBody)})
		return
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldMessage(c, fe)
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   middleware.Localize(c, i18n.ErrValidation),
		"details": details,
	})
}

func fieldMessage(c *gin.Context, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return middleware.Localize(c, i18n.FieldRequired)
	case "min":
		return middleware.Localize(c, i18n.FieldMin, fe.Param())
	case "max":
		return middleware.Localize(c, i18n.FieldMax, fe.Param())
	case "gte":
		return middleware.Localize(c, i18n.FieldGTE, fe.Param())
	case "oneof":
		return middleware.Localize(c, i18n.FieldOneOf, fe.Param())
	case "email":
		return middleware.Localize(c, i18n.EmailFormat)
	default:
		return middleware.Localize(c, i18n.FieldInvalid)
	}
}

// respondError maps service errors to status codes and localized messages
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		tag := middleware.LanguageFrom(c)
		details := make(map[string]string, len(verr.Fields))
		for field, reason := range verr.Fields {
			details[field] = reason.Localize(tag)
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   middleware.Localize(c, i18n.ErrValidation),
			"details": details,
		})
		return
	}

	status, key := classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": middleware.Localize(c, key)})
}

func classify(err error) (int, i18n.Key) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, i18n.ErrOrderNotFound
	case errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest, i18n.ErrInvalidStatus
	case errors.Is(err, service.ErrInvalidSignature):
		return http.StatusUnauthorized, i18n.ErrInvalidSignature
	case errors.Is(err, service.ErrInvalidPayload):
		return http.StatusBadRequest, i18n.ErrInvalidPayload
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, i18n.ErrInvalidCredentials
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, i18n.ErrEmailTaken
	case errors.Is(err, service.ErrRegistrationClosed):
		return http.StatusForbidden, i18n.ErrRegistrationClosed
	default:
		return http.StatusInternalServerError, i18n.ErrInternal
	}
}
