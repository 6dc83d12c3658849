package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/stampcard/internal/application"
)

type clubService interface {
	CreateClub(ctx context.Context, input application.ClubInput) (application.Club, error)
	DeleteClub(ctx context.Context, id string) error
	ListClubs(ctx context.Context) ([]application.Club, error)
}

// ClubHandler serves club administration endpoints.
type ClubHandler struct {
	service   clubService
	responder responder
	logger    *slog.Logger
}

// NewClubHandler constructs a club handler.
func NewClubHandler(service clubService, logger *slog.Logger) *ClubHandler {
	base := defaultLogger(logger)
	return &ClubHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ClubHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ClubHandler", operation, attrs...)
}

// Create registers a new club.
func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req clubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode club request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "club_name", req.Name)

	club, err := h.service.CreateClub(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "club creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("club_id", club.ID).InfoContext(r.Context(), "club created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, clubResponse{Club: toClubDTO(club)})
}

// Delete removes a club configuration.
func (h *ClubHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	clubID, ok := ClubIDFromContext(r.Context())
	if !ok || strings.TrimSpace(clubID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing club id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClubID)
		return
	}

	logger := h.log(r.Context(), "Delete", "club_id", clubID)
	if err := h.service.DeleteClub(r.Context(), clubID); err != nil {
		logger.ErrorContext(r.Context(), "club delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "club deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// List returns every configured club.
func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	clubs, err := h.service.ListClubs(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "club list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(clubs)).InfoContext(r.Context(), "clubs listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listClubsResponse{Clubs: toClubDTOs(clubs)})
}

type clubRequest struct {
	Name            string `json:"name"`
	VoiceChannelID  string `json:"voice_channel_id"`
	NotifyChannelID string `json:"notify_channel_id"`
	NotifyRoleID    string `json:"notify_role_id"`
	ArtworkKey      string `json:"artwork_key"`
	StartTime       string `json:"start_time"`
	WindowMinutes   int    `json:"window_minutes"`
	RequiredSeconds int    `json:"required_seconds"`
	LeadMinutes     int    `json:"lead_minutes"`
}

func (r clubRequest) toInput() application.ClubInput {
	return application.ClubInput{
		Name:            strings.TrimSpace(r.Name),
		VoiceChannelID:  strings.TrimSpace(r.VoiceChannelID),
		NotifyChannelID: strings.TrimSpace(r.NotifyChannelID),
		NotifyRoleID:    strings.TrimSpace(r.NotifyRoleID),
		ArtworkKey:      strings.TrimSpace(r.ArtworkKey),
		StartTime:       strings.TrimSpace(r.StartTime),
		WindowMinutes:   r.WindowMinutes,
		RequiredSeconds: r.RequiredSeconds,
		LeadMinutes:     r.LeadMinutes,
	}
}

type clubResponse struct {
	Club clubDTO `json:"club"`
}

type listClubsResponse struct {
	Clubs []clubDTO `json:"clubs"`
}

type clubDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	VoiceChannelID  string `json:"voice_channel_id"`
	NotifyChannelID string `json:"notify_channel_id,omitempty"`
	NotifyRoleID    string `json:"notify_role_id,omitempty"`
	ArtworkKey      string `json:"artwork_key"`
	StartTime       string `json:"start_time"`
	WindowSeconds   int    `json:"window_seconds"`
	RequiredSeconds int    `json:"required_seconds"`
	LeadSeconds     int    `json:"lead_seconds"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toClubDTO(club application.Club) clubDTO {
	return clubDTO{
		ID:              club.ID,
		Name:            club.Name,
		VoiceChannelID:  club.VoiceChannelID,
		NotifyChannelID: club.NotifyChannelID,
		NotifyRoleID:    club.NotifyRoleID,
		ArtworkKey:      club.ArtworkKey,
		StartTime:       club.StartTime,
		WindowSeconds:   club.WindowSeconds,
		RequiredSeconds: club.RequiredSeconds,
		LeadSeconds:     club.LeadSeconds,
		CreatedAt:       club.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       club.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toClubDTOs(clubs []application.Club) []clubDTO {
	if len(clubs) == 0 {
		return nil
	}
	out := make([]clubDTO, 0, len(clubs))
	for _, club := range clubs {
		out = append(out, toClubDTO(club))
	}
	return out
}
