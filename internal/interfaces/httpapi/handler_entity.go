package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-sync/internal/domain/competition"
	"github.com/riskibarqy/football-sync/internal/domain/match"
	"github.com/riskibarqy/football-sync/internal/domain/team"
	"github.com/riskibarqy/football-sync/internal/usecase"
)

type competitionDTO struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	Type       string `json:"type,omitempty"`
	Emblem     string `json:"emblem,omitempty"`
	Plan       string `json:"plan,omitempty"`
}

type teamDTO struct {
	ID         string `json:"id"`
	ExternalID int64  `json:"external_id"`
	Name       string `json:"name"`
	ShortName  string `json:"short_name,omitempty"`
	TLA        string `json:"tla,omitempty"`
	Crest      string `json:"crest,omitempty"`
	Address    string `json:"address,omitempty"`
	Website    string `json:"website,omitempty"`
	Founded    *int   `json:"founded,omitempty"`
	ClubColors string `json:"club_colors,omitempty"`
	Venue      string `json:"venue,omitempty"`
}

type matchDTO struct {
	ID            string  `json:"id"`
	ExternalID    int64   `json:"external_id"`
	CompetitionID string  `json:"competition_id"`
	Status        string  `json:"status"`
	MatchDate     string  `json:"match_date"`
	Stage         string  `json:"stage,omitempty"`
	Matchday      *int    `json:"matchday,omitempty"`
	HomeTeamID    *string `json:"home_team_id"`
	AwayTeamID    *string `json:"away_team_id"`
}

type getCompetitionRequest struct {
	ExternalID string `validate:"required,max=64"`
}

type getByNumericIDRequest struct {
	ExternalID int64 `validate:"required,gt=0"`
}

func (h *Handler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompetition")
	defer span.End()

	if !h.requireLookup(ctx, w) {
		return
	}
	req := getCompetitionRequest{ExternalID: strings.TrimSpace(r.PathValue("externalID"))}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.lookup.GetCompetition(ctx, req.ExternalID)
	if err != nil {
		h.logger.WarnContext(ctx, "get competition failed", "external_id", req.ExternalID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(item))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	if !h.requireLookup(ctx, w) {
		return
	}
	req, err := h.numericIDRequest(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.lookup.GetTeam(ctx, req.ExternalID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "external_id", req.ExternalID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, teamToDTO(item))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	if !h.requireLookup(ctx, w) {
		return
	}
	req, err := h.numericIDRequest(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.lookup.GetMatch(ctx, req.ExternalID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "external_id", req.ExternalID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) requireLookup(ctx context.Context, w http.ResponseWriter) bool {
	if h.lookup != nil {
		return true
	}
	writeError(ctx, w, fmt.Errorf("%w: entity lookup is not configured", usecase.ErrDependencyUnavailable))
	return false
}

func (h *Handler) numericIDRequest(ctx context.Context, r *http.Request) (getByNumericIDRequest, error) {
	raw := strings.TrimSpace(r.PathValue("externalID"))
	externalID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return getByNumericIDRequest{}, fmt.Errorf("%w: external id must be an integer", usecase.ErrInvalidInput)
	}

	req := getByNumericIDRequest{ExternalID: externalID}
	if err := h.validateRequest(ctx, req); err != nil {
		return getByNumericIDRequest{}, err
	}
	return req, nil
}

func competitionToDTO(item competition.Competition) competitionDTO {
	return competitionDTO{
		ID:         item.ID,
		ExternalID: item.ExternalID,
		Name:       item.Name,
		Code:       item.Code,
		Type:       item.Type,
		Emblem:     item.Emblem,
		Plan:       item.Plan,
	}
}

func teamToDTO(item team.Team) teamDTO {
	return teamDTO{
		ID:         item.ID,
		ExternalID: item.ExternalID,
		Name:       item.Name,
		ShortName:  item.ShortName,
		TLA:        item.TLA,
		Crest:      item.Crest,
		Address:    item.Address,
		Website:    item.Website,
		Founded:    item.Founded,
		ClubColors: item.ClubColors,
		Venue:      item.Venue,
	}
}

// matchToDTO renders the stored unix kickoff as RFC 3339 UTC.
func matchToDTO(item match.Match) matchDTO {
	return matchDTO{
		ID:            item.ID,
		ExternalID:    item.ExternalID,
		CompetitionID: item.CompetitionID,
		Status:        item.Status,
		MatchDate:     time.Unix(item.MatchDate, 0).UTC().Format(time.RFC3339),
		Stage:         item.Stage,
		Matchday:      item.Matchday,
		HomeTeamID:    item.HomeTeamID,
		AwayTeamID:    item.AwayTeamID,
	}
}
