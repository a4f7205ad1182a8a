package httpapi

import (
	"net/http"

	"github.com/riskibarqy/football-sync/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	syncAuthToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerSyncRoutes(mux, handler, syncAuthToken)
	registerEntityRoutes(mux, handler, syncAuthToken)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerSyncRoutes(mux *http.ServeMux, handler *Handler, syncAuthToken string) {
	mux.Handle("POST /v1/internal/sync/all", RequireSyncToken(syncAuthToken, http.HandlerFunc(handler.RunSyncAll)))
	mux.Handle("POST /v1/internal/sync/competitions", RequireSyncToken(syncAuthToken, http.HandlerFunc(handler.RunSyncCompetitions)))
	mux.Handle("POST /v1/internal/sync/teams", RequireSyncToken(syncAuthToken, http.HandlerFunc(handler.RunSyncTeams)))
	mux.Handle("POST /v1/internal/sync/matches", RequireSyncToken(syncAuthToken, http.HandlerFunc(handler.RunSyncMatches)))
	mux.Handle("GET /v1/internal/sync/runs", RequireSyncToken(syncAuthToken, http.HandlerFunc(handler.ListSyncRuns)))
	mux.Handle("GET /v1/internal/sync/runs/{runID}", RequireSyncToken(syncAuthToken, http.HandlerFunc(handler.GetSyncRun)))
}

func registerEntityRoutes(mux *http.ServeMux, handler *Handler, syncAuthToken string) {
	mux.Handle("GET /v1/internal/competitions/{externalID}", RequireSyncToken(syncAuthToken, http.HandlerFunc(handler.GetCompetition)))
	mux.Handle("GET /v1/internal/teams/{externalID}", RequireSyncToken(syncAuthToken, http.HandlerFunc(handler.GetTeam)))
	mux.Handle("GET /v1/internal/matches/{externalID}", RequireSyncToken(syncAuthToken, http.HandlerFunc(handler.GetMatch)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
