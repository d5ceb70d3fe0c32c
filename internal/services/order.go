package services

import (
	"strings"

	"github.com/soundscene/accounts/internal/apperr"
)

// allowedSortFields maps client-supplied sort names to model columns.
var allowedSortFields = map[string]string{
	"name":       "name",
	"email":      "email",
	"username":   "username",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type orderTerm struct {
	Column string
	Desc   bool
}

// parseOrderBy converts a client ordering string ("-username",
// "created_at") into the resolved ordering terms. The id column is
// always appended with the same sign as a tiebreaker, so pagination
// stays deterministic even with duplicate primary-sort values. An empty
// input selects the default ordering (-created_at, -id).
func parseOrderBy(orderBy string) ([]orderTerm, error) {
	if orderBy == "" {
		return []orderTerm{{"created_at", true}, {"id", true}}, nil
	}
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")

	column, ok := allowedSortFields[field]
	if !ok {
		return nil, apperr.Newf(apperr.CodeInvalidSort, "Invalid sort field: '%s'", field)
	}
	return []orderTerm{{column, desc}, {"id", desc}}, nil
}
