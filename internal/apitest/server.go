// Package apitest runs an in-process fake of the LearnSnap REST API so client
// packages can be tested over real HTTP round trips.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"learnsnap/internal/models"
)

const jwtSecret = "apitest-secret"

type account struct {
	user         models.User
	passwordHash []byte
}

type quizRecord struct {
	quiz    models.Quiz
	correct string
}

// Server is the fake API. Seed it with the Add* helpers, point a client at
// URL(), and inspect what the client did through the counters.
type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	nextID      int64
	accounts    map[string]*account // by email
	videos      map[int64]*models.Video
	categories  map[int64]*models.Category
	quizzes     map[int64]*quizRecord
	quizOrder   map[int64][]int64 // video id -> quiz ids
	submissions map[int64]int
	progress    map[int64]map[int64]*models.VideoProgress // user id -> video id
	points      map[int64]*models.Points
	streaks     map[int64]*models.Streak
	badges      []models.Badge
	userBadges  map[int64][]models.UserBadge

	gamification     bool
	optionsAsString  bool
	tokenTTL         time.Duration
	overrides        map[string]override
	requests         map[string]int
	lastAuthHeader   string
	lastRequestIDHdr string
}

type override struct {
	status  int
	message string
}

// New starts a server and registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		nextID:       1,
		accounts:     make(map[string]*account),
		videos:       make(map[int64]*models.Video),
		categories:   make(map[int64]*models.Category),
		quizzes:      make(map[int64]*quizRecord),
		quizOrder:    make(map[int64][]int64),
		submissions:  make(map[int64]int),
		progress:     make(map[int64]map[int64]*models.VideoProgress),
		points:       make(map[int64]*models.Points),
		streaks:      make(map[int64]*models.Streak),
		userBadges:   make(map[int64][]models.UserBadge),
		gamification: true,
		tokenTTL:     time.Hour,
		overrides:    make(map[string]override),
		requests:     make(map[string]int),
	}
	s.srv = httptest.NewServer(s.router())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base, including the /api prefix.
func (s *Server) URL() string { return s.srv.URL + "/api" }

func (s *Server) Close() { s.srv.Close() }

func (s *Server) router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.record)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", s.signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)

	// Catalog reads are public, like the real API.
	api.HandleFunc("/videos", s.listVideos).Methods(http.MethodGet)
	api.HandleFunc("/videos/search", s.searchVideos).Methods(http.MethodGet)
	api.HandleFunc("/videos/popular", s.popularVideos).Methods(http.MethodGet)
	api.HandleFunc("/videos/recent", s.recentVideos).Methods(http.MethodGet)
	api.HandleFunc("/videos/category/{id:[0-9]+}", s.videosByCategory).Methods(http.MethodGet)
	api.HandleFunc("/videos/instructor/{id:[0-9]+}", s.videosByInstructor).Methods(http.MethodGet)
	api.HandleFunc("/videos/{id:[0-9]+}", s.getVideo).Methods(http.MethodGet)
	api.HandleFunc("/videos/{id:[0-9]+}/view", s.viewVideo).Methods(http.MethodPost)
	api.HandleFunc("/categories", s.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id:[0-9]+}", s.getCategory).Methods(http.MethodGet)

	private := api.NewRoute().Subrouter()
	private.Use(s.jwtMiddleware)

	private.HandleFunc("/users/me", s.me).Methods(http.MethodGet)
	private.HandleFunc("/users/me", s.updateMe).Methods(http.MethodPut)

	private.HandleFunc("/videos", s.createVideo).Methods(http.MethodPost)
	private.HandleFunc("/videos/{id:[0-9]+}", s.updateVideo).Methods(http.MethodPut)
	private.HandleFunc("/videos/{id:[0-9]+}", s.deleteVideo).Methods(http.MethodDelete)
	private.HandleFunc("/categories", s.createCategory).Methods(http.MethodPost)
	private.HandleFunc("/categories/{id:[0-9]+}", s.updateCategory).Methods(http.MethodPut)
	private.HandleFunc("/categories/{id:[0-9]+}", s.deleteCategory).Methods(http.MethodDelete)

	private.HandleFunc("/videos/{id:[0-9]+}/quizzes", s.listQuizzes).Methods(http.MethodGet)
	private.HandleFunc("/videos/{id:[0-9]+}/quizzes", s.createQuiz).Methods(http.MethodPost)
	private.HandleFunc("/quizzes/{id:[0-9]+}", s.getQuiz).Methods(http.MethodGet)
	private.HandleFunc("/quizzes/{id:[0-9]+}", s.updateQuiz).Methods(http.MethodPut)
	private.HandleFunc("/quizzes/{id:[0-9]+}", s.deleteQuiz).Methods(http.MethodDelete)
	private.HandleFunc("/quizzes/{id:[0-9]+}/submit", s.submitQuiz).Methods(http.MethodPost)

	private.HandleFunc("/user-progress", s.allProgress).Methods(http.MethodGet)
	private.HandleFunc("/user-progress/completed", s.completedProgress).Methods(http.MethodGet)
	private.HandleFunc("/user-progress/in-progress", s.inProgress).Methods(http.MethodGet)
	private.HandleFunc("/user-progress/stats", s.stats).Methods(http.MethodGet)
	private.HandleFunc("/user-progress/video/{id:[0-9]+}", s.videoProgress).Methods(http.MethodGet)
	private.HandleFunc("/user-progress/video/{id:[0-9]+}/complete", s.complete).Methods(http.MethodPost)
	private.HandleFunc("/user-progress/video/{id:[0-9]+}/progress", s.watch).Methods(http.MethodPut)

	private.HandleFunc("/gamification/streak", s.streak).Methods(http.MethodGet)
	private.HandleFunc("/gamification/points", s.getPoints).Methods(http.MethodGet)
	private.HandleFunc("/gamification/points/add", s.addPoints).Methods(http.MethodPost)
	private.HandleFunc("/gamification/badges", s.listBadges).Methods(http.MethodGet)
	private.HandleFunc("/gamification/user-badges", s.listUserBadges).Methods(http.MethodGet)
	private.HandleFunc("/gamification/leaderboard", s.leaderboard).Methods(http.MethodGet)

	return router
}

// record counts requests and applies forced failures before routing.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests[key]++
		s.lastAuthHeader = r.Header.Get("Authorization")
		s.lastRequestIDHdr = r.Header.Get("X-Request-ID")
		o, forced := s.overrides[key]
		s.mu.Unlock()

		if forced {
			writeError(w, o.status, o.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every method+path request (path includes /api) answer status
// with message until Restore is called. An empty message sends an empty body.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = override{status: status, message: message}
}

func (s *Server) Restore(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, method+" "+path)
}

// Requests is how many times method+path was hit.
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+path]
}

func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuthHeader
}

func (s *Server) LastRequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRequestIDHdr
}

// DisableGamification makes every gamification endpoint answer 404, the way
// a backend without that feature does.
func (s *Server) DisableGamification() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gamification = false
}

// EncodeOptionsAsString makes quiz payloads carry options as a JSON string.
func (s *Server) EncodeOptionsAsString() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.optionsAsString = true
}

func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func stamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, map[string]string{"message": message})
}

func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Validation failed", "errors": fields})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func notFound(w http.ResponseWriter, what string, id int64) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found with id: %d", what, id))
}
