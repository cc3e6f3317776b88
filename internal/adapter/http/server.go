package adapthttp

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"weekplanner/internal/app"
)

// LocalUserID is the identity attached to every request when auth is disabled.
const LocalUserID = "local"

// OIDCConfig holds the single sign-on settings. SSO routes answer 404 unless
// Enabled is set.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	recipes     *app.RecipeService
	weekplans   *app.WeekplanService
	authSvc     *app.AuthService
	oidcConfig  OIDCConfig
	webDir      string
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(rs *app.RecipeService, ws *app.WeekplanService, as *app.AuthService, oidcConfig OIDCConfig, webDir string) *Server {
	return &Server{recipes: rs, weekplans: ws, authSvc: as, oidcConfig: oidcConfig, webDir: webDir}
}

// WithoutAuth disables authentication and runs every request as LocalUserID.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/setup", s.handleSetupUser)
	api.HandleFunc("/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	api.Handle("/recipes", s.authMiddleware(http.HandlerFunc(s.handleRecipes)))
	api.Handle("/recipes/{id}", s.authMiddleware(http.HandlerFunc(s.handleRecipe)))
	api.Handle("/cuisines", s.authMiddleware(http.HandlerFunc(s.handleCuisines)))

	api.Handle("/favorites", s.authMiddleware(http.HandlerFunc(s.handleFavorites)))
	api.Handle("/favorites/{id}", s.authMiddleware(http.HandlerFunc(s.handleFavorite)))

	api.Handle("/weekplans", s.authMiddleware(http.HandlerFunc(s.handleWeekplans)))
	api.Handle("/weekplans/{id}", s.authMiddleware(http.HandlerFunc(s.handleWeekplan)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
