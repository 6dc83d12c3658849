package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/stampcard/internal/application"
)

type clubResolver interface {
	GetClubByName(ctx context.Context, name string) (application.Club, error)
}

type statsService interface {
	MemberStats(ctx context.Context, clubID, memberID string) (application.MemberStats, error)
	RenderCard(ctx context.Context, w io.Writer, club application.Club, memberID string) error
	Ranking(ctx context.Context, clubID string, period application.RankingPeriod) (application.Ranking, error)
}

// StatsHandler serves attendance statistics, stamp cards, and rankings.
type StatsHandler struct {
	clubs     clubResolver
	stats     statsService
	responder responder
	logger    *slog.Logger
}

// NewStatsHandler constructs a stats handler.
func NewStatsHandler(clubs clubResolver, stats statsService, logger *slog.Logger) *StatsHandler {
	base := defaultLogger(logger)
	return &StatsHandler{clubs: clubs, stats: stats, responder: newResponder(base), logger: base}
}

func (h *StatsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "StatsHandler", operation, attrs...)
}

// resolveClub loads the club named in the request path, writing the error
// response itself when resolution fails.
func (h *StatsHandler) resolveClub(w http.ResponseWriter, r *http.Request, operation string) (application.Club, bool) {
	name, ok := ClubNameFromContext(r.Context())
	if !ok || strings.TrimSpace(name) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing club name")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClubName)
		return application.Club{}, false
	}

	club, err := h.clubs.GetClubByName(r.Context(), name)
	if err != nil {
		h.log(r.Context(), operation, "club_name", name).ErrorContext(r.Context(), "club lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return application.Club{}, false
	}
	return club, true
}

func memberIDFromQuery(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("member_id"))
}

// Stats returns a member's attendance summary for the club.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.stats == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	club, ok := h.resolveClub(w, r, "Stats")
	if !ok {
		return
	}

	memberID := memberIDFromQuery(r)
	if memberID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingMemberID)
		return
	}

	logger := h.log(r.Context(), "Stats", "club_id", club.ID, "member_id", memberID)
	stats, err := h.stats.MemberStats(r.Context(), club.ID, memberID)
	if err != nil {
		logger.ErrorContext(r.Context(), "member stats failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member stats served")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statsResponse{Stats: stats})
}

// Card streams a member's stamp card PNG for the current month.
func (h *StatsHandler) Card(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.stats == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	club, ok := h.resolveClub(w, r, "Card")
	if !ok {
		return
	}

	memberID := memberIDFromQuery(r)
	if memberID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingMemberID)
		return
	}

	logger := h.log(r.Context(), "Card", "club_id", club.ID, "member_id", memberID)

	w.Header().Set("Content-Type", "image/png")
	if err := h.stats.RenderCard(r.Context(), w, club, memberID); err != nil {
		// Headers may already be written; log and drop the connection
		// rather than emitting a JSON body with an image content type.
		logger.ErrorContext(r.Context(), "card rendering failed", "error", err, "error_kind", application.ErrorKind(err))
		return
	}
	logger.InfoContext(r.Context(), "stamp card served")
}

// Ranking returns the club's leaderboards.
func (h *StatsHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.stats == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	club, ok := h.resolveClub(w, r, "Ranking")
	if !ok {
		return
	}

	period := application.RankingPeriod(strings.TrimSpace(r.URL.Query().Get("period")))
	logger := h.log(r.Context(), "Ranking", "club_id", club.ID, "period", string(period))

	ranking, err := h.stats.Ranking(r.Context(), club.ID, period)
	if err != nil {
		logger.ErrorContext(r.Context(), "ranking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "ranking served")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, rankingResponse{Ranking: ranking})
}

type statsResponse struct {
	Stats application.MemberStats `json:"stats"`
}

type rankingResponse struct {
	Ranking application.Ranking `json:"ranking"`
}
