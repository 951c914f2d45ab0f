package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/repository"
	"github.com/runclubno/runclub-backend/internal/strava"
)

// StravaHandler links member accounts to Strava and syncs their runs.
type StravaHandler struct {
	Links  *repository.StravaRepo
	Client *strava.Client
}

func NewStravaHandler(l *repository.StravaRepo, cl *strava.Client) *StravaHandler {
	return &StravaHandler{Links: l, Client: cl}
}

type stravaConnectReq struct {
	Code string `json:"code"`
}

// Connect exchanges the OAuth authorization code and stores the athlete
// link for the member.
func (h *StravaHandler) Connect(c echo.Context) error {
	uid, err := memberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req stravaConnectReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	tok, err := h.Client.ExchangeCode(ctx, strings.TrimSpace(req.Code))
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "strava token exchange failed"})
	}

	link := model.StravaLink{
		MemberID:     uid,
		AthleteID:    tok.Athlete.ID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Unix(tok.ExpiresAt, 0).UTC(),
	}
	if err := h.Links.UpsertLink(ctx, &link); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store strava link failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"athlete_id": link.AthleteID, "expires_at": link.ExpiresAt})
}

// Sync pulls recent activities from Strava and upserts them, returning
// how many were new.
func (h *StravaHandler) Sync(c echo.Context) error {
	uid, err := memberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	link, err := h.Links.GetLink(ctx, uid)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "strava not connected"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load strava link failed"})
	}
	if time.Now().UTC().After(link.ExpiresAt) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "strava token expired, reconnect"})
	}

	acts, err := h.Client.ListActivities(ctx, link.AccessToken, 50)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "fetch activities failed"})
	}

	rows := make([]model.StravaActivity, 0, len(acts))
	for _, a := range acts {
		startedAt, err := time.Parse(time.RFC3339, a.StartDate)
		if err != nil {
			continue
		}
		rows = append(rows, model.StravaActivity{
			MemberID:         uid,
			StravaActivityID: a.ID,
			Name:             a.Name,
			DistanceMeters:   a.Distance,
			MovingTimeSec:    a.MovingTime,
			StartedAt:        startedAt.UTC(),
		})
	}
	n, err := h.Links.UpsertActivities(ctx, uid, rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store activities failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"synced": n, "fetched": len(rows)})
}

// Activities lists the member's synced runs, newest first.
func (h *StravaHandler) Activities(c echo.Context) error {
	uid, err := memberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acts, err := h.Links.ListActivities(ctx, uid, 100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list activities failed"})
	}
	out := make([]echo.Map, 0, len(acts))
	for _, a := range acts {
		out = append(out, echo.Map{
			"strava_activity_id": a.StravaActivityID,
			"name":               a.Name,
			"distance_meters":    a.DistanceMeters,
			"moving_time_sec":    a.MovingTimeSec,
			"started_at":         a.StartedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"activities": out})
}
