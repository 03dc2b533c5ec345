package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 50
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// claims is the token payload the backend issues.
type claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

type userView struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func viewUser(u user) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format(timeLayout),
	}
}

type authView struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) signToken(userID int) (string, error) {
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (s *Server) parseToken(raw string) (int, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, err
	}
	if cl.UserID <= 0 {
		return 0, errors.New("token has no user")
	}
	return cl.UserID, nil
}

type userKey struct{}

// authenticate resolves a bearer Authorization header to a known user. A
// non-empty message means the request is rejected with it.
func (s *Server) authenticate(header string) (int, string) {
	if header == "" {
		return 0, "Missing authorization header"
	}
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return 0, "Invalid authorization format"
	}

	id, err := s.parseToken(raw)
	if err != nil {
		s.log.Debug("token rejected", "error", err)
		return 0, "Invalid or expired token"
	}
	if _, found := s.cat.userByID(id); !found {
		return 0, "Invalid or expired token"
	}
	return id, ""
}

// requireAuth rejects requests without a valid bearer token for a known user.
func (s *Server) requireAuth(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id, msg := s.authenticate(ctx.Header("Authorization"))
		if msg != "" {
			if err := huma.WriteErr(api, ctx, http.StatusUnauthorized, msg); err != nil {
				s.log.Warn("writing error response", "error", err)
			}
			return
		}
		next(huma.WithValue(ctx, userKey{}, id))
	}
}

func currentUser(ctx context.Context) int {
	id, _ := ctx.Value(userKey{}).(int)
	return id
}

// credentialsInput carries a raw JSON body so malformed and incomplete
// requests get the backend's messages.
type credentialsInput struct {
	RawBody []byte
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /login.
func (s *Server) login(_ context.Context, in *credentialsInput) (*reply, error) {
	var req loginRequest
	if err := json.Unmarshal(in.RawBody, &req); err != nil {
		return nil, failure(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return nil, failure(http.StatusBadRequest, "Email and password are required")
	}

	u, found := s.cat.userByEmail(req.Email)
	if !found {
		return nil, failure(http.StatusUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, failure(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := s.signToken(u.ID)
	if err != nil {
		s.log.Error("issuing token", "user_id", u.ID, "error", err)
		return nil, failure(http.StatusInternalServerError, "Failed to generate token")
	}

	s.log.Info("user logged in", "user_id", u.ID)
	return ok(http.StatusOK, "", authView{Token: token, User: viewUser(u)}), nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// register handles POST /register.
func (s *Server) register(_ context.Context, in *credentialsInput) (*reply, error) {
	var req registerRequest
	if err := json.Unmarshal(in.RawBody, &req); err != nil {
		return nil, failure(http.StatusBadRequest, "Invalid request body")
	}

	switch {
	case req.Username == "" || req.Email == "" || req.Password == "":
		return nil, failure(http.StatusBadRequest, "Username, email and password are required")
	case !emailPattern.MatchString(req.Email):
		return nil, failure(http.StatusBadRequest, "Invalid email format")
	case len(req.Password) < minPasswordLen:
		return nil, failure(http.StatusBadRequest, "Password must be at least 6 characters")
	case len(req.Password) > maxPasswordLen:
		return nil, failure(http.StatusBadRequest, "Password is too long")
	}

	id, err := s.AddUser(req.Username, req.Email, req.Password)
	if errors.Is(err, errConflict) {
		return nil, failure(http.StatusConflict, "User already exists")
	}
	if err != nil {
		s.log.Error("registering user", "error", err)
		return nil, failure(http.StatusInternalServerError, "Failed to create user")
	}

	u, _ := s.cat.userByID(id)
	token, err := s.signToken(id)
	if err != nil {
		s.log.Error("issuing token", "user_id", id, "error", err)
		return nil, failure(http.StatusInternalServerError, "Failed to generate token")
	}

	s.log.Info("user registered", "user_id", id)
	return ok(http.StatusOK, "", authView{Token: token, User: viewUser(u)}), nil
}

func (s *Server) registerAuthRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Summary:     "Log in",
		Description: "Exchanges an email and password for a bearer token.",
		Tags:        []string{"auth"},
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, s.login)

	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/register",
		Summary:     "Register an account",
		Description: "Creates an account and returns a bearer token for it.",
		Tags:        []string{"auth"},
		Errors:      []int{http.StatusBadRequest, http.StatusConflict},
	}, s.register)
}
