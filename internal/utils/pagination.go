package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-user-api/internal/services"
)

// GetListParams extracts the list parameters from the query string. filter is
// accepted as an alias of select. skip and limit must be non-negative
// integers; a missing limit is left nil so the service picks its default.
func GetListParams(c *gin.Context) (services.ListInput, error) {
	input := services.ListInput{
		Where:  c.Query("where"),
		Sort:   c.Query("sort"),
		Select: c.Query("select"),
	}
	if input.Select == "" {
		input.Select = c.Query("filter")
	}

	if raw, ok := c.GetQuery("skip"); ok {
		skip, err := nonNegative("skip", raw)
		if err != nil {
			return input, err
		}
		input.Skip = skip
	}

	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := nonNegative("limit", raw)
		if err != nil {
			return input, err
		}
		input.Limit = &limit
	}

	if raw, ok := c.GetQuery("count"); ok {
		switch strings.ToLower(raw) {
		case "true":
			input.Count = true
		case "false", "":
		default:
			return input, fieldError("count", fmt.Sprintf("%q must be a boolean", "count"))
		}
	}

	return input, nil
}

func nonNegative(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(name, fmt.Sprintf("%q must be an integer", name))
	}
	if n < 0 {
		return 0, fieldError(name, fmt.Sprintf("%q must be greater than or equal to 0", name))
	}
	return n, nil
}

func fieldError(name, message string) error {
	return &services.ValidationError{Fields: []services.FieldError{{Field: name, Message: message}}}
}
