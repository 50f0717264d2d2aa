// internal/web/utils/response.go
package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"passbi-cache/internal/web/models/responses"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// HandleError maps an error onto a JSON error response
func HandleError(c *fiber.Ctx, err error, message string) error {
	statusCode := fiber.StatusInternalServerError

	msg := err.Error()
	if strings.Contains(msg, "introuvable") {
		statusCode = fiber.StatusNotFound
	} else if strings.Contains(msg, "pas de connexion") {
		statusCode = fiber.StatusServiceUnavailable
	} else if strings.Contains(msg, "jeton") {
		statusCode = fiber.StatusUnauthorized
	}

	response := responses.ErrorResponse{
		Error:   true,
		Message: message,
		Code:    statusCode,
		Details: err.Error(),
	}

	return c.Status(statusCode).JSON(response)
}

// HandleValidationError maps a validation failure onto a 400 response
func HandleValidationError(c *fiber.Ctx, err error, message string) error {
	var details string

	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errorMessages []string
			for _, validationErr := range validationErrors {
				errorMessages = append(errorMessages, formatValidationError(validationErr))
			}
			details = strings.Join(errorMessages, "; ")
		} else {
			details = err.Error()
		}
	}

	response := responses.ErrorResponse{
		Error:   true,
		Message: message,
		Code:    fiber.StatusBadRequest,
		Details: details,
	}

	return c.Status(fiber.StatusBadRequest).JSON(response)
}

// formatValidationError formats a single field validation failure
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("le champ %s est obligatoire", err.Field())
	case "email":
		return fmt.Sprintf("le champ %s doit etre un email valide", err.Field())
	default:
		return fmt.Sprintf("le champ %s est invalide", err.Field())
	}
}

// ValidateStruct validates a struct with the shared validator
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// SendSuccessResponse sends a data response
func SendSuccessResponse(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(responses.NewDataResponse(data, message))
}

// SendListResponse sends a list response
func SendListResponse(c *fiber.Ctx, data interface{}, count int, message string) error {
	response := responses.ListResponse{
		BaseResponse: responses.NewSuccessResponse(message),
		Data:         data,
		Count:        count,
	}
	return c.JSON(response)
}
