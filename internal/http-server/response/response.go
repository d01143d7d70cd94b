// Package response реализует единый конверт HTTP-ответов сервиса.
package response

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator"
)

// Response единый конверт ответа: и для успеха, и для ошибки.
type Response struct {
	Success      bool   `json:"success"`
	StatusCode   int    `json:"statusCode"`
	Message      string `json:"message"`
	Data         any    `json:"data,omitempty"`
	ErrorDetails any    `json:"errorDetails,omitempty"`
}

// OK формирует успешный ответ с данными.
func OK(statusCode int, message string, data any) Response {
	return Response{
		Success:    true,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	}
}

// Error формирует ответ об ошибке.
func Error(statusCode int, message string) Response {
	return Response{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ValidationError формирует ответ 400 со списком нарушенных полей.
func ValidationError(errs validator.ValidationErrors) Response {
	var details []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			details = append(details, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			details = append(details, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "uuid":
			details = append(details, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		case "min":
			details = append(details, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			details = append(details, fmt.Sprintf("field %s is too long", err.Field()))
		case "gte", "lte":
			details = append(details, fmt.Sprintf("field %s is out of range", err.Field()))
		case "oneof":
			details = append(details, fmt.Sprintf("field %s has an unsupported value", err.Field()))
		default:
			details = append(details, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Success:      false,
		StatusCode:   http.StatusBadRequest,
		Message:      "Validation failed",
		ErrorDetails: details,
	}
}
