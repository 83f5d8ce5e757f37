package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/leagues/{leagueID}/matches", handler.IngestMatches)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/standings", handler.GetStandings)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/standings/text", handler.GetStandingsText)
	mux.HandleFunc("POST /v1/leagues/{leagueID}/feed/sync", handler.SyncFromFeed)
	mux.HandleFunc("DELETE /v1/leagues/{leagueID}", handler.ResetLeague)
	mux.HandleFunc("POST /v1/replays", handler.Replay)
}
