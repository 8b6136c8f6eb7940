package middleware

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gin-gonic/gin"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/errors"
)

var (
	validatorOnce sync.Once

	// DO-416 or DO-416A for one line of a multi-line order
	orderNoPattern = regexp.MustCompile(`^DO-\d+[A-Z]?$`)
)

// InitValidator registers custom validation tags on gin's binding
// validator. Safe to call more than once.
func InitValidator() {
	validatorOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("orderno", validateOrderNo)
		}
	})
}

func validateOrderNo(fl validator.FieldLevel) bool {
	return orderNoPattern.MatchString(fl.Field().String())
}

// ValidationErrorFormatter turns validator errors into a field->message map
func ValidationErrorFormatter(err error) map[string]string {
	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			fields[e.Field()] = formatValidationError(e)
		}
	}
	return fields
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "orderno":
		return "must be a DO-NNN order number, optionally with a line suffix"
	default:
		return fmt.Sprintf("failed validation: %s", e.Tag())
	}
}

// BindAndValidate binds JSON and returns a formatted validation error
// when the payload is invalid
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindJSON(obj); err != nil {
		if fields := ValidationErrorFormatter(err); len(fields) > 0 {
			return errors.ErrValidationWithFields("request validation failed", fields)
		}
		return errors.ErrBadRequest("invalid request body").Wrap(err)
	}
	return nil
}
