package apitest

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"learnsnap/internal/models"
)

// AddUser registers an account directly and returns it.
func (s *Server) AddUser(t testing.TB, email, username, password string, role models.Role) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: s.id(), Email: email, Username: username, Role: role, CreatedAt: stamp()}
	s.accounts[email] = &account{user: u, passwordHash: hash}
	return u
}

// Token issues a valid access token for user.
func (s *Server) Token(t testing.TB, user models.User) string {
	t.Helper()
	tok, err := s.issue(user, s.tokenTTL)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// ExpiredToken issues a correctly signed token whose expiry has passed.
func (s *Server) ExpiredToken(t testing.TB, user models.User) string {
	t.Helper()
	tok, err := s.issue(user, -time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func (s *Server) issue(user models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.Email,
		"user_id": user.ID,
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(jwtSecret))
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decode(w, r, &req) {
		return
	}
	fields := map[string]string{}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = "must be a well-formed email address"
	}
	if len(req.Username) < 2 || len(req.Username) > 50 {
		fields["username"] = "size must be between 2 and 50"
	}
	if len(req.Password) < 8 {
		fields["password"] = "size must be at least 8"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	s.mu.Lock()
	if _, taken := s.accounts[req.Email]; taken {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "Email is already in use")
		return
	}
	for _, a := range s.accounts {
		if a.user.Username == req.Username {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "Username is already taken")
			return
		}
	}
	u := models.User{ID: s.id(), Email: req.Email, Username: req.Username, Role: models.RoleLearner, CreatedAt: stamp()}
	s.accounts[req.Email] = &account{user: u, passwordHash: hash}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.SignupResponse{
		ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role,
		Message: "User registered successfully",
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	tok, err := s.issue(acc.user, s.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{AccessToken: tok, User: acc.user})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	u := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[u.Email]
	if req.Username != "" && req.Username != acc.user.Username {
		for _, a := range s.accounts {
			if a.user.Username == req.Username {
				writeError(w, http.StatusConflict, "Username is already taken")
				return
			}
		}
		acc.user.Username = req.Username
	}
	if req.Bio != "" {
		acc.user.Bio = req.Bio
	}
	if req.ProfileImage != "" {
		acc.user.ProfileImage = req.ProfileImage
	}
	acc.user.UpdatedAt = stamp()
	writeJSON(w, http.StatusOK, acc.user)
}
