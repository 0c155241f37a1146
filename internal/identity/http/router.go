package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/feiralabs/feira/internal/identity/service"
	"github.com/feiralabs/feira/internal/identity/store"
	"github.com/feiralabs/feira/pkg/httpx"
	"github.com/feiralabs/feira/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.AccessVerifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService  *service.AuthService
	UserService  *service.UserService
	RolesService *service.RolesService
}

func NewRouter(
	verifier httpx.AccessVerifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdminRoles()
	r.registerAdminUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{
		UserService: r.UserService,
		AuthService: r.AuthService,
	}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/refresh - strict rate limit by IP (unauthenticated token
	// endpoint, rotation makes replays cheap to probe)
	refreshHandler := &RefreshHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/logout - moderate rate limit by IP
	logoutHandler := &LogoutHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /auth/me - authenticated, answered from verified claims alone
	meHandler := &MeHandler{}
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(meHandler,
			httpx.BearerAuth(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAdminRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	admin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.BearerAuth(r.verifier),
			httpx.RequireAnyRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/admin/roles", admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/admin/roles", admin(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("PATCH /v1/admin/roles/{id}", admin(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/admin/roles/{id}", admin(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerAdminUsers() {
	h := &UsersHandler{UserService: r.UserService, RolesService: r.RolesService}

	admin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.BearerAuth(r.verifier),
			httpx.RequireAnyRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/admin/users", admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("PATCH /v1/admin/users/{id}", admin(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/admin/users/{id}", admin(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /v1/admin/users/{id}/roles", admin(http.HandlerFunc(h.HandleAssignRole)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// tokenResponse is the wire shape for any endpoint handing out a token pair.
type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func newTokenResponse(accessToken, refreshToken string, ttl time.Duration) tokenResponse {
	return tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(ttl.Seconds()),
	}
}
