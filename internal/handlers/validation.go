package handlers

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/ecoles/schoolmanager/pkg/errors"
	"github.com/ecoles/schoolmanager/pkg/response"
	appValidator "github.com/ecoles/schoolmanager/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules. On
// failure it writes a 400 whose details map each JSON field to its problem.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, validationError(err))
		return false
	}
	return true
}

func validationError(err error) *appErrors.AppError {
	var failures appValidator.ValidationErrors
	if !errors.As(err, &failures) || len(failures) == 0 {
		return appErrors.NewBadRequest("invalid request payload")
	}

	fields := make(map[string]any, len(failures))
	messages := make([]string, 0, len(failures))
	for _, failure := range failures {
		msg := describeFailure(failure)
		if _, seen := fields[failure.Field]; !seen {
			fields[failure.Field] = msg
		}
		messages = append(messages, fmt.Sprintf("%s %s", prettifyFieldName(failure.Field), msg))
	}
	sort.Strings(messages)

	return appErrors.NewBadRequest(strings.Join(messages, "; ")).WithDetails(map[string]any{"fields": fields})
}

func describeFailure(failure appValidator.ValidationError) string {
	switch failure.Tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", failure.Param)
	case "max":
		return fmt.Sprintf("must be at most %s characters", failure.Param)
	case "uuid4", "uuid":
		return "must be a valid UUID"
	case "codename":
		return "must be lower snake case"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", failure.Param)
	}
	if failure.Param != "" {
		return fmt.Sprintf("failed validation: %s=%s", failure.Tag, failure.Param)
	}
	return "failed validation: " + failure.Tag
}

func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	return strings.ToLower(strings.ReplaceAll(name, "_", " "))
}
