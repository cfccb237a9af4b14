package handler

import (
	"strconv"
	"strings"

	"github.com/avillegas/roster-stats-service/internal/model"
	"github.com/avillegas/roster-stats-service/internal/service"
)

// Headers the identity layer in front of this service stamps onto requests.
// Authentication itself is external; by the time a request lands here the
// gateway has already verified who is calling and which team they manage.
const (
	HeaderTeamID = "X-Team-ID"
	HeaderRole   = "X-Role"
)

type headerGetter interface {
	GetHeader(key string) string
}

// scopeFrom builds the explicit scope token every service call receives.
// The team id is mandatory; the role defaults to viewer so a missing header
// can never escalate privileges.
func scopeFrom(c headerGetter) (model.Scope, error) {
	raw := strings.TrimSpace(c.GetHeader(HeaderTeamID))
	teamID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || teamID <= 0 {
		return model.Scope{}, service.NewInvalidInputError([]service.FieldError{{Field: "X-Team-ID", Message: "must be a valid integer > 0"}})
	}
	role := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderRole)))
	if role != model.RoleAdmin {
		role = model.RoleViewer
	}
	return model.Scope{TeamID: teamID, Role: role}, nil
}
