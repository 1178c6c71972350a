package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	wsadapter "rankkit/adapters/websocket"
	"rankkit/auth"
	"rankkit/core"
	"rankkit/realtime"
	"rankkit/service"
)

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client key.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
}

// NewMux builds an http.Handler exposing the leaderboard REST API and WebSocket stream.
// Routes:
//   - POST   {prefix}/v1/auth/register
//   - POST   {prefix}/v1/auth/login
//   - GET    {prefix}/v1/leaderboard
//   - POST   {prefix}/v1/leaderboard
//   - DELETE {prefix}/v1/leaderboard/{name}
//   - POST   {prefix}/v1/leaderboard/{name}/score      (authenticated)
//   - GET    {prefix}/v1/leaderboard/{name}/top?limit=10
//   - GET    {prefix}/v1/leaderboard/{name}/scores?start=0&limit=20
//   - GET    {prefix}/v1/leaderboard/{name}/me          (authenticated)
//   - DELETE {prefix}/v1/leaderboard/{name}/me          (authenticated)
//   - GET    {prefix}/healthz
//   - WS     {prefix}/ws
func NewMux(svc *service.RankService, authn *auth.Handler, tokens *auth.TokenManager, hub *realtime.Hub, opts Options) http.Handler {
	mux := http.NewServeMux()
	api := &api{svc: svc, authn: authn, tokens: tokens}

	// health
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/healthz"), api.healthCheck)

	// WebSocket events
	if hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub))
	}

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/v1/auth/"), func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, opts.PathPrefix)
		parts := split(path, '/')
		if r.Method != http.MethodPost || len(parts) != 3 {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		switch parts[2] {
		case "register":
			api.register(w, r)
		case "login":
			api.login(w, r)
		default:
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		}
	})

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/v1/leaderboard"), func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			api.listLeaderboards(w, r)
		case http.MethodPost:
			api.createLeaderboard(w, r)
		default:
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		}
	})

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/v1/leaderboard/"), func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, opts.PathPrefix)
		parts := split(path, '/')
		// parts[0] = "v1", parts[1] = "leaderboard", parts[2] = name
		if len(parts) < 3 {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		name := core.BoardName(parts[2])
		if len(parts) == 3 {
			if r.Method == http.MethodDelete {
				api.deleteLeaderboard(w, r, name)
				return
			}
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		switch {
		case parts[3] == "score" && r.Method == http.MethodPost:
			api.submitScore(w, r, name)
		case parts[3] == "top" && r.Method == http.MethodGet:
			api.top(w, r, name)
		case parts[3] == "scores" && r.Method == http.MethodGet:
			api.scores(w, r, name)
		case parts[3] == "me" && r.Method == http.MethodGet:
			api.me(w, r, name)
		case parts[3] == "me" && r.Method == http.MethodDelete:
			api.removeMe(w, r, name)
		default:
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		}
	})

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst)
	}
	return handler
}

type api struct {
	svc    *service.RankService
	authn  *auth.Handler
	tokens *auth.TokenManager
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON", nil)
		return
	}
	if err := a.authn.Register(r.Context(), req.Username, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{"username": strings.TrimSpace(req.Username)})
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON", nil)
		return
	}
	token, err := a.authn.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"token": token, "expiresIn": int(a.tokens.TTL().Seconds())})
}

func (a *api) listLeaderboards(w http.ResponseWriter, r *http.Request) {
	all, err := a.svc.ListLeaderboards(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if all == nil {
		all = []core.LeaderboardInfo{}
	}
	writeJSON(w, all)
}

func (a *api) createLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON", nil)
		return
	}
	info, err := a.svc.CreateLeaderboard(r.Context(), core.BoardName(req.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, info)
}

func (a *api) deleteLeaderboard(w http.ResponseWriter, r *http.Request, name core.BoardName) {
	if err := a.svc.DeleteLeaderboard(r.Context(), name); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (a *api) submitScore(w http.ResponseWriter, r *http.Request, name core.BoardName) {
	ident, ok := a.identity(w, r)
	if !ok {
		return
	}
	var req struct {
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON", nil)
		return
	}
	res, err := a.svc.SubmitScore(r.Context(), name, core.Member(ident.Name), req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, res)
}

func (a *api) top(w http.ResponseWriter, r *http.Request, name core.BoardName) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer", nil)
			return
		}
		limit = n
	}
	entries, err := a.svc.GetTop(r.Context(), name, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []core.RankedEntry{}
	}
	writeJSON(w, map[string]any{"leaderboardName": name, "scores": entries})
}

func (a *api) scores(w http.ResponseWriter, r *http.Request, name core.BoardName) {
	start := 0
	limit := 20
	q := r.URL.Query()
	if raw := q.Get("start"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start", "start must be an integer", nil)
			return
		}
		start = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer", nil)
			return
		}
		limit = n
	}
	page, err := a.svc.GetPage(r.Context(), name, start, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if page.Entries == nil {
		page.Entries = []core.RankedEntry{}
	}
	writeJSON(w, page)
}

func (a *api) me(w http.ResponseWriter, r *http.Request, name core.BoardName) {
	ident, ok := a.identity(w, r)
	if !ok {
		return
	}
	standing, err := a.svc.GetPlayer(r.Context(), name, core.Member(ident.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, standing)
}

func (a *api) removeMe(w http.ResponseWriter, r *http.Request, name core.BoardName) {
	ident, ok := a.identity(w, r)
	if !ok {
		return
	}
	removed, err := a.svc.RemovePlayer(r.Context(), name, core.Member(ident.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"removed": removed})
}

// identity extracts and verifies the bearer token, writing the 401 itself on
// failure.
func (a *api) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	raw := bearerToken(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
		return auth.Identity{}, false
	}
	ident, err := a.tokens.Verify(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", nil)
		return auth.Identity{}, false
	}
	return ident, true
}

// healthCheck verifies the service is working properly
func (a *api) healthCheck(w http.ResponseWriter, r *http.Request) {
	_, err := a.svc.ListLeaderboards(r.Context())

	status := map[string]any{
		"status": "healthy",
		"checks": map[string]any{
			"catalog": "ok",
		},
	}

	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		status["status"] = "unhealthy"
		status["checks"].(map[string]any)["catalog"] = "failed"
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, status)
}

// Helpers

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "invalid_score", err.Error(), nil)
	case errors.Is(err, core.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_range", err.Error(), nil)
	case errors.Is(err, core.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_name", err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidRegistration):
		writeError(w, http.StatusBadRequest, "invalid_registration", err.Error(), nil)
	case errors.Is(err, core.ErrLeaderboardNotFound):
		writeError(w, http.StatusNotFound, "leaderboard_not_found", err.Error(), nil)
	case errors.Is(err, core.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, "player_not_found", err.Error(), nil)
	case errors.Is(err, core.ErrLeaderboardExists):
		writeError(w, http.StatusConflict, "leaderboard_exists", err.Error(), nil)
	case errors.Is(err, core.ErrUserExists):
		writeError(w, http.StatusConflict, "user_exists", err.Error(), nil)
	case errors.Is(err, core.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func split(p string, sep rune) []string {
	var parts []string
	cur := make([]rune, 0, len(p))
	// trim leading '/'
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	for _, r := range p {
		if r == sep {
			if len(cur) > 0 {
				parts = append(parts, string(cur))
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: msg, Details: details})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// withCORS wraps a handler with a minimal CORS policy.
func withCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies a simple token-bucket limiter per client key.
func withRateLimit(next http.Handler, rpm int, burst int) http.Handler {
	limiter := newRateLimiter(rpm, burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !limiter.allow(key) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey uses the bearer token if present, otherwise remote IP.
func clientKey(r *http.Request) string {
	if token := bearerToken(r); token != "" {
		return token
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	rpm   float64
	burst float64
	mu    sync.Mutex
	b     map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(rpm, burst int) *rateLimiter {
	return &rateLimiter{
		rpm:   float64(rpm),
		burst: float64(burst),
		b:     make(map[string]*bucket),
	}
}

func (l *rateLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.b[key]
	if !ok {
		l.b[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Minutes()
	b.tokens += elapsed * l.rpm
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	if b.tokens < 1 {
		b.last = now
		return false
	}
	b.tokens--
	b.last = now
	return true
}
