package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/leagueops/league-rankings/internal/domain/standing"
	"github.com/leagueops/league-rankings/internal/platform/cache"
	"github.com/leagueops/league-rankings/internal/platform/logging"
	"github.com/leagueops/league-rankings/internal/usecase"
)

// ResultsFeed pulls season result lines from the upstream results service.
type ResultsFeed interface {
	SeasonResults(ctx context.Context, seasonID string) ([]string, error)
}

type Handler struct {
	standingsService *usecase.StandingsService
	replayService    *usecase.ReplayService
	feed             ResultsFeed
	cache            *cache.Store
	logger           *logging.Logger
	validator        *validator.Validate
}

// NewHandler wires the API surface. feed and cacheStore may be nil when the
// results feed or response caching is disabled.
func NewHandler(
	standingsService *usecase.StandingsService,
	replayService *usecase.ReplayService,
	feed ResultsFeed,
	cacheStore *cache.Store,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		standingsService: standingsService,
		replayService:    replayService,
		feed:             feed,
		cache:            cacheStore,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type ingestMatchesRequest struct {
	Lines         []string `json:"lines" validate:"required,min=1,dive,required"`
	SkipMalformed bool     `json:"skip_malformed"`
}

func (h *Handler) IngestMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestMatches")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	var req ingestMatchesRequest
	if err := h.decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.standingsService.Ingest(ctx, usecase.IngestInput{
		LeagueID:      leagueID,
		Lines:         req.Lines,
		SkipMalformed: req.SkipMalformed,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "ingest matches failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.invalidateStandings(ctx, leagueID)
	writeSuccess(ctx, w, http.StatusOK, ingestResultToDTO(result))
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	load := func(ctx context.Context) (any, error) {
		snapshot, err := h.standingsService.Snapshot(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return snapshotToDTO(snapshot), nil
	}

	var (
		value any
		err   error
	)
	if h.cache != nil {
		value, err = h.cache.GetOrLoad(ctx, standingsCacheKey(leagueID), load)
	} else {
		value, err = load(ctx)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, value)
}

func (h *Handler) GetStandingsText(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandingsText")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	text, err := h.standingsService.SnapshotText(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings text failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

type syncFromFeedRequest struct {
	SeasonID      string `json:"season_id" validate:"required"`
	SkipMalformed bool   `json:"skip_malformed"`
}

func (h *Handler) SyncFromFeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncFromFeed")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	if h.feed == nil {
		writeError(ctx, w, fmt.Errorf("%w: results feed is disabled (FEED_ENABLED=false)", usecase.ErrDependencyUnavailable))
		return
	}

	var req syncFromFeedRequest
	if err := h.decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	lines, err := h.feed.SeasonResults(ctx, req.SeasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "fetch season results failed", "league_id", leagueID, "season_id", req.SeasonID, "error", err)
		writeError(ctx, w, fmt.Errorf("%w: fetch season results: %v", usecase.ErrDependencyUnavailable, err))
		return
	}
	if len(lines) == 0 {
		writeError(ctx, w, fmt.Errorf("%w: season %s has no results", usecase.ErrNotFound, req.SeasonID))
		return
	}

	result, err := h.standingsService.Ingest(ctx, usecase.IngestInput{
		LeagueID:      leagueID,
		Lines:         lines,
		SkipMalformed: req.SkipMalformed,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "ingest feed results failed", "league_id", leagueID, "season_id", req.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.invalidateStandings(ctx, leagueID)
	writeSuccess(ctx, w, http.StatusOK, ingestResultToDTO(result))
}

func (h *Handler) ResetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	if err := h.standingsService.Reset(ctx, leagueID); err != nil {
		h.logger.WarnContext(ctx, "reset league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.invalidateStandings(ctx, leagueID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "reset"})
}

type replayRequest struct {
	Sources       []replaySourceRequest `json:"sources" validate:"required,min=1,dive"`
	MaxWorkers    int                   `json:"max_workers" validate:"gte=0"`
	SkipMalformed bool                  `json:"skip_malformed"`
}

type replaySourceRequest struct {
	Name  string   `json:"name" validate:"required"`
	Lines []string `json:"lines"`
}

func (h *Handler) Replay(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Replay")
	defer span.End()

	var req replayRequest
	if err := h.decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	sources := make([]usecase.ReplaySource, 0, len(req.Sources))
	for _, source := range req.Sources {
		sources = append(sources, usecase.ReplaySource{
			Name:  source.Name,
			Lines: source.Lines,
		})
	}

	result, err := h.replayService.Replay(ctx, usecase.ReplayInput{
		Sources:       sources,
		MaxWorkers:    req.MaxWorkers,
		SkipMalformed: req.SkipMalformed,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "replay failed", "source_count", len(req.Sources), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, replayResultToDTO(result))
}

func (h *Handler) decodeRequest(r *http.Request, out any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) invalidateStandings(ctx context.Context, leagueID string) {
	if h.cache == nil {
		return
	}
	h.cache.Delete(ctx, standingsCacheKey(leagueID))
}

func standingsCacheKey(leagueID string) string {
	return "standings:" + leagueID
}

type standingRowDTO struct {
	Position int    `json:"position"`
	TeamName string `json:"team_name"`
	Points   int    `json:"points"`
}

type snapshotDTO struct {
	Matchday int              `json:"matchday"`
	Rows     []standingRowDTO `json:"rows"`
}

type ingestResultDTO struct {
	Applied   int           `json:"applied"`
	Skipped   int           `json:"skipped"`
	Matchday  int           `json:"matchday"`
	Completed []snapshotDTO `json:"completed_matchdays,omitempty"`
	Current   snapshotDTO   `json:"current"`
}

type replayResultDTO struct {
	RunID        string            `json:"run_id"`
	SourceCount  int               `json:"source_count"`
	SuccessCount int               `json:"success_count"`
	FailedCount  int               `json:"failed_count"`
	WorkerCount  int               `json:"worker_count"`
	Sources      []replaySourceDTO `json:"sources"`
}

type replaySourceDTO struct {
	Name       string      `json:"name"`
	Status     string      `json:"status"`
	Matchday   int         `json:"matchday"`
	Applied    int         `json:"applied"`
	Skipped    int         `json:"skipped"`
	Snapshot   snapshotDTO `json:"snapshot"`
	DurationMs int64       `json:"duration_ms"`
	Message    string      `json:"message,omitempty"`
}

func snapshotToDTO(snapshot standing.Snapshot) snapshotDTO {
	rows := make([]standingRowDTO, 0, len(snapshot.Rows))
	for _, row := range snapshot.Rows {
		rows = append(rows, standingRowDTO{
			Position: row.Position,
			TeamName: row.TeamName,
			Points:   row.Points,
		})
	}

	return snapshotDTO{
		Matchday: snapshot.Matchday,
		Rows:     rows,
	}
}

func ingestResultToDTO(result usecase.IngestResult) ingestResultDTO {
	out := ingestResultDTO{
		Applied:  result.Applied,
		Skipped:  result.Skipped,
		Matchday: result.Matchday,
		Current:  snapshotToDTO(result.Current),
	}
	for _, snapshot := range result.Completed {
		out.Completed = append(out.Completed, snapshotToDTO(snapshot))
	}

	return out
}

func replayResultToDTO(result usecase.ReplayResult) replayResultDTO {
	out := replayResultDTO{
		RunID:        result.RunID,
		SourceCount:  result.SourceCount,
		SuccessCount: result.SuccessCount,
		FailedCount:  result.FailedCount,
		WorkerCount:  result.WorkerCount,
		Sources:      make([]replaySourceDTO, 0, len(result.Sources)),
	}
	for _, source := range result.Sources {
		out.Sources = append(out.Sources, replaySourceDTO{
			Name:       source.Name,
			Status:     source.Status,
			Matchday:   source.Matchday,
			Applied:    source.Applied,
			Skipped:    source.Skipped,
			Snapshot:   snapshotToDTO(source.Snapshot),
			DurationMs: source.DurationMs,
			Message:    source.Message,
		})
	}

	return out
}
