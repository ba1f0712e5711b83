package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vikraya/backend/internal/domain/order"
	"github.com/vikraya/backend/internal/interfaces/http/dto"
)

// SetupValidator configures the gin validator: JSON tag names in error
// messages plus the order-domain enum tags used by request DTOs.
func SetupValidator() {
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
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("orderkind", func(fl validator.FieldLevel) bool {
		return order.OrderKind(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
		return order.OrderStatus(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("paymentstatus", func(fl validator.FieldLevel) bool {
		return order.PaymentStatus(fl.Field().String()).IsValid()
	})
	// Carrier vocabularies differ, so any non-blank label is accepted
	// into the tracking ledger.
	_ = v.RegisterValidation("trackingstatus", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: validationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 validation error response
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString(RequestIDKey)
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "orderkind":
		return "Must be 'product' or 'service'"
	case "orderstatus":
		return "Unrecognized order status"
	case "paymentstatus":
		return "Unrecognized payment status"
	case "trackingstatus":
		return "Tracking status cannot be blank"
	default:
		return "Invalid value"
	}
}
