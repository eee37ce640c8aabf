package routes

import (
	"net/http"
	"spotnsort/handler"
	"spotnsort/middleware"
	"spotnsort/models"
	"spotnsort/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the HTTP surface needs
type Services struct {
	Auth         *service.AuthService
	Sessions     *service.SessionService
	Submission   *service.SubmissionService
	Reports      *service.ReportService
	Management   *service.ManagementService
	Analytics    *service.AnalyticsService
	Map          *service.MapService
	Feed         handler.ReportFeed
	MetricsToken string
}

// SetupRoutes configures all API routes
func SetupRoutes(s Services) *mux.Router {
	router := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(s.Auth)
	reportHandler := handler.NewReportHandler(s.Submission, s.Reports)
	authorityHandler := handler.NewAuthorityHandler(s.Management, s.Analytics)
	photoHandler := handler.NewPhotoHandler()
	mapHandler := handler.NewMapHandler(s.Map)
	liveHandler := handler.NewLiveHandler(s.Feed)

	authMiddleware := middleware.NewAuthMiddleware(s.Sessions)

	// API v1 routes
	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	// Auth routes (public except logout/me)
	auth := apiV1.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.Handle("/logout", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.Logout))).Methods("POST")
	auth.Handle("/me", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods("GET")

	// Form options
	apiV1.HandleFunc("/categories", reportHandler.Categories).Methods("GET")

	// POST /api/v1/photos - picked file → data URI (any logged-in role)
	apiV1.Handle("/photos", authMiddleware.RequireAuth(http.HandlerFunc(photoHandler.Upload))).Methods("POST")

	// Citizen routes
	user := apiV1.PathPrefix("/user").Subrouter()
	user.Use(authMiddleware.RequireAuth, middleware.RequireRole(models.RoleUser))
	user.HandleFunc("/reports", reportHandler.ListMine).Methods("GET")
	user.HandleFunc("/reports", reportHandler.Submit).Methods("POST")
	user.HandleFunc("/reports/{id}/rating", reportHandler.Rate).Methods("PUT")
	user.HandleFunc("/summary", reportHandler.Summary).Methods("GET")
	user.HandleFunc("/rewards", reportHandler.Rewards).Methods("GET")

	// Authority routes
	authority := apiV1.PathPrefix("/authority").Subrouter()
	authority.Use(authMiddleware.RequireAuth, middleware.RequireRole(models.RoleAuthority))
	authority.HandleFunc("/reports", authorityHandler.ListReports).Methods("GET")
	authority.HandleFunc("/analytics", authorityHandler.Analytics).Methods("GET")
	authority.HandleFunc("/reports/{id}/draft", authorityHandler.GetDraft).Methods("GET")
	authority.HandleFunc("/reports/{id}/draft", authorityHandler.SaveDraft).Methods("PUT")
	authority.HandleFunc("/reports/{id}/photo", authorityHandler.StagePhoto).Methods("POST")
	authority.HandleFunc("/reports/{id}/in-progress", authorityHandler.MarkInProgress).Methods("POST")
	authority.HandleFunc("/reports/{id}/resolve", authorityHandler.Resolve).Methods("POST")

	// Any logged-in role
	apiV1.Handle("/map", authMiddleware.RequireAuth(http.HandlerFunc(mapHandler.Markers))).Methods("GET")
	apiV1.Handle("/live", authMiddleware.RequireAuth(http.HandlerFunc(liveHandler.Serve))).Methods("GET")

	// Operator endpoints
	router.Handle("/metrics", middleware.RequireStaticToken(s.MetricsToken)(promhttp.Handler())).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}

// Wrap applies the cross-cutting middleware around the router
func Wrap(router http.Handler) http.Handler {
	return middleware.CORS(middleware.RequestID(middleware.Logging(router)))
}
