package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func (h *Handler) RunCalculateResultsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCalculateResultsJob")
	defer span.End()

	var req calculateResultsJobRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.jobService.HandleCalculateResults(ctx, usecase.CalculateResultsJob{
		MatchID:    req.MatchID,
		DispatchID: req.DispatchID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "calculate results job failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) RunRecalculateStandingsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecalculateStandingsJob")
	defer span.End()

	var req recalculateStandingsJobRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.jobService.HandleRecalculateStandings(ctx, usecase.RecalculateStandingsJob{
		LeagueIDs:  req.LeagueIDs,
		Full:       req.Full,
		DispatchID: req.DispatchID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "recalculate standings job failed", "league_ids", req.LeagueIDs, "error", err)
		writeError(ctx, w, err)
		return
	}
	// partial failures are reported in the body; a 5xx makes QStash retry
	// the whole batch.
	if out.FailedCount > 0 && out.FailedCount == len(out.Leagues) {
		writeError(ctx, w, fmt.Errorf("recalculate standings failed for all %d leagues", out.FailedCount))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) RunBotsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBotsJob")
	defer span.End()

	var req runBotsJobRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.jobService.HandleRunBots(ctx, usecase.RunBotsJob{DispatchID: req.DispatchID})
	if err != nil {
		h.logger.WarnContext(ctx, "run bots job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
