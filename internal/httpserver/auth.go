// apps/go-server/internal/httpserver/auth.go
//
// Player accounts and identity.
//   - POST /auth/signup, /auth/login, /auth/logout; GET /auth/me (gated).
//   - GET /stats/me (gated): the account's stored high score.
//   - JWT (HS256) in an HttpOnly cookie or Authorization: Bearer header.
//   - Guests get a long-lived anonymous cookie; on signup/login their best
//     score is carried over to the account.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordslide/apps/go-server/internal/progress"
)

var errUsernameTaken = errors.New("username taken")

// credentials is the body of signup and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

// mountAuthRoutes registers authentication + gated routes (/auth/*, /stats/me).
func (s *Server) mountAuthRoutes(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
		_ = json.NewEncoder(w).Encode(me)
	})

	r.With(s.requireAuth()).Get("/stats/me", func(w http.ResponseWriter, r *http.Request) {
		me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
		p := progress.New(s.deps.KV, userPlayer(me.ID))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":        me.ID,
			"username":  me.Username,
			"highScore": p.HighScore(r.Context()),
		})
	})
}

// handleSignup creates a new user, signs a JWT, sets auth cookie, and claims anon progress.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "accounts_disabled")
		return
	}
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.createUser(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, errUsernameTaken) {
			writeError(w, http.StatusConflict, "Username taken")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.startSession(w, r, u) {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates user, sets cookie, and claims anon progress.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "accounts_disabled")
		return
	}
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.findUserByUsername(r.Context(), strings.TrimSpace(body.Username))
	if err != nil || !checkPassword(u.PasswordHash, body.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !s.startSession(w, r, u) {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// startSession sets the auth cookie for u; on failure it has already
// written the error response.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u *userRow) bool {
	tok, exp, err := signJWT(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign jwt")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	setAuthCookie(w, tok, exp)
	s.claimAnonProgress(r.Context(), s.ensureAnonID(w, r), u.ID)
	return true
}

// claimAnonProgress carries a guest's high score over to an account.
func (s *Server) claimAnonProgress(ctx context.Context, anonID, userID string) {
	if anonID == "" || userID == "" {
		return
	}
	score := progress.New(s.deps.KV, anonPlayer(anonID)).HighScore(ctx)
	if score == 0 {
		return
	}
	if _, err := progress.New(s.deps.KV, userPlayer(userID)).SaveHighScore(ctx, score); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("claim anon progress")
	}
}

// --------------------------- player identity -------------------------------

const anonCookieName = "wordslide_anon"

func userPlayer(id string) string { return "u:" + id }
func anonPlayer(id string) string { return "a:" + id }

// playerID returns the progress namespace of the caller: the signed-in user,
// or the anonymous cookie (set if missing).
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return userPlayer(me.ID)
	}
	return anonPlayer(s.ensureAnonID(w, r))
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	secure, sameSite := cookieMode()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	// Later lookups in the same request see the new ID.
	r.AddCookie(&http.Cookie{Name: anonCookieName, Value: id})
	return id
}

// --------------------------- optional auth ---------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u := s.userFromToken(r); u != nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bearerOrCookie(r) == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			u := s.userFromToken(r)
			if u == nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

// userFromToken validates the request's JWT and checks the user still exists.
func (s *Server) userFromToken(r *http.Request) *authUser {
	tok := bearerOrCookie(r)
	if tok == "" || s.deps.DB == nil {
		return nil
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil
	}
	u, err := s.findUserByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return &authUser{ID: u.ID, Username: u.Username}
}

// ------------------------ users table --------------------------------------

// userRow matches the users table shape.
type userRow struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// createUser validates input, checks uniqueness, hashes password, and inserts a new user.
func (s *Server) createUser(ctx context.Context, username, pw string) (*userRow, error) {
	username = strings.TrimSpace(username)
	if err := validateSignup(username, pw); err != nil {
		return nil, err
	}
	if _, err := s.findUserByUsername(ctx, username); err == nil {
		return nil, errUsernameTaken
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &userRow{ID: uuid.NewString(), Username: username, PasswordHash: string(h), CreatedAt: time.Now().UTC()}
	if _, err := s.deps.DB.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return u, nil
}

// findUserByUsername/ID load a user row or return an error if missing.
func (s *Server) findUserByUsername(ctx context.Context, username string) (*userRow, error) {
	return scanUser(s.deps.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username=?`, username))
}
func (s *Server) findUserByID(ctx context.Context, id string) (*userRow, error) {
	return scanUser(s.deps.DB.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id=?`, id))
}

func scanUser(row *sql.Row) (*userRow, error) {
	var u userRow
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// validateSignup enforces basic username/password rules.
func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	return nil
}

// ------------------------------ JWT & cookies ------------------------------

func jwtSecret() []byte { return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")) }

// signJWT creates an HS256 JWT with id/username and a configurable expiry (JWT_EXPIRES_DAYS; default 14).
func signJWT(id, username string) (string, time.Time, error) {
	days := 14
	if n, err := strconv.Atoi(getEnv("JWT_EXPIRES_DAYS", "")); err == nil && n > 0 {
		days = n
	}
	now := time.Now()
	exp := now.Add(time.Duration(days) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString(jwtSecret())
	return ss, exp, err
}

func cookieName() string { return getEnv("COOKIE_NAME", "wordslide_token") }

// cookieMode: cross-site cookies need Secure + SameSite=None in production.
func cookieMode() (bool, http.SameSite) {
	if getEnv("NODE_ENV", "") == "production" {
		return true, http.SameSiteNoneMode
	}
	return false, http.SameSiteLaxMode
}

// setAuthCookie writes the auth token cookie.
func setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure, sameSite := cookieMode()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// clearAuthCookie deletes the auth token cookie.
func clearAuthCookie(w http.ResponseWriter) {
	secure, sameSite := cookieMode()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName()); err == nil {
		return c.Value
	}
	return ""
}
