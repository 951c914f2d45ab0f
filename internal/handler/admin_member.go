package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/repository"
)

// AdminMemberHandler lets admins review and adjust memberships.
type AdminMemberHandler struct {
	Members *repository.MemberRepo
}

func NewAdminMemberHandler(m *repository.MemberRepo) *AdminMemberHandler {
	return &AdminMemberHandler{Members: m}
}

// List returns all members, newest first.
func (h *AdminMemberHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	members, err := h.Members.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list members failed"})
	}
	out := make([]memberPart, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberPart(m.ID, m.Email, m.FullName, m.Role, m.MembershipType, m.MembershipStatus))
	}
	return c.JSON(http.StatusOK, echo.Map{"members": out})
}

type membershipReq struct {
	MembershipType   string `json:"membership_type"`
	MembershipStatus string `json:"membership_status"`
}

// UpdateMembership sets a member's membership type and status.
func (h *AdminMemberHandler) UpdateMembership(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}
	var req membershipReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	mType := strings.ToLower(strings.TrimSpace(req.MembershipType))
	mStatus := strings.ToLower(strings.TrimSpace(req.MembershipStatus))
	if mType == "" || mStatus == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "membership_type/membership_status required"})
	}
	switch mStatus {
	case "active", "expired", "suspended":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid membership_status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Members.UpdateMembership(ctx, id, mType, mStatus); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update membership failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"membership_type": mType, "membership_status": mStatus})
}
