package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/folio-social/folio/pkg/logging"
)

var validate = validator.New()

// Envelope is the shape of every response body
type Envelope struct {
	Response interface{}       `json:"response"`
	Details  []ValidationError `json:"details,omitempty"`
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidateRequest validates obj against its validate tags
func ValidateRequest(obj any) []ValidationError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Message: err.Error(), Type: "invalid"}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
			Type:    fe.Tag(),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gt":
		return "Value must be greater than " + fe.Param()
	default:
		return "Invalid value"
	}
}

func respond(c *gin.Context, code int, payload interface{}) {
	c.JSON(code, Envelope{Response: payload})
}

func respondValidation(c *gin.Context, details []ValidationError) {
	c.JSON(http.StatusBadRequest, Envelope{Response: "Invalid request data", Details: details})
}

// respondError maps err to a status; server-side failures are logged
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	apiErr := FromError(err)
	if apiErr.Code >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context(), logger).Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", apiErr.Code),
			zap.Error(err))
	}
	_ = c.Error(err)
	respond(c, apiErr.Code, apiErr.Message)
}
