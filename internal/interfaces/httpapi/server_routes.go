package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerBetRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("PUT /v1/leagues/{leagueID}/matches/{matchID}/bet", RequireAuth(verifier, http.HandlerFunc(handler.PlaceBet)))
	mux.Handle("DELETE /v1/leagues/{leagueID}/bets/{betID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteBet)))
	mux.Handle("GET /v1/leagues/{leagueID}/bets/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyBets)))
	mux.Handle("GET /v1/leagues/{leagueID}/matches/{matchID}/bets", RequireAuth(verifier, http.HandlerFunc(handler.ListMatchBets)))
}

func registerStandingRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues/{leagueID}/standings", RequireAuth(verifier, http.HandlerFunc(handler.GetLeagueStandings)))
	mux.Handle("GET /v1/leagues/{leagueID}/standings/{userID}", RequireAuth(verifier, http.HandlerFunc(handler.GetMemberStats)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/calculate-results", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCalculateResultsJob)))
	mux.Handle("POST /v1/internal/jobs/recalculate-standings", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecalculateStandingsJob)))
	mux.Handle("POST /v1/internal/jobs/run-bots", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunBotsJob)))
}
