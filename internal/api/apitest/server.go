// Package apitest runs an in-process implementation of the scheduling REST
// API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"schedly/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookie = "schedly_session"

// Request records one call received by the server.
type Request struct {
	Method string
	Path   string
}

type account struct {
	user models.User
	hash []byte
}

// Server is a fake backend. It filters collections to the session owner
// the way the real backend does.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	accounts     map[string]*account // by email
	sessions     map[string]string   // token -> user id
	services     map[string]*models.Service
	appointments map[string]*models.Appointment
	seq          int
	requests     []Request
	failStatus   int
	failCount    int
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts:     make(map[string]*account),
		sessions:     make(map[string]string),
		services:     make(map[string]*models.Service),
		appointments: make(map[string]*models.Appointment),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)
	mux.HandleFunc("PUT /api/auth/profile", s.handleProfile)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	mux.HandleFunc("GET /api/services", s.handleListServices)
	mux.HandleFunc("POST /api/services", s.handleCreateService)
	mux.HandleFunc("GET /api/services/{id}", s.handleGetService)
	mux.HandleFunc("PUT /api/services/{id}", s.handleUpdateService)
	mux.HandleFunc("DELETE /api/services/{id}", s.handleDeleteService)

	mux.HandleFunc("GET /api/appointments", s.handleListAppointments)
	mux.HandleFunc("POST /api/appointments", s.handleCreateAppointment)
	mux.HandleFunc("GET /api/appointments/{id}", s.handleGetAppointment)
	mux.HandleFunc("PUT /api/appointments/{id}", s.handleUpdateAppointment)
	mux.HandleFunc("DELETE /api/appointments/{id}", s.handleDeleteAppointment)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// FailNext makes the next n requests answer with status.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCount = n
	s.failStatus = status
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent call.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// AddService stores a service directly, bypassing authentication.
func (s *Server) AddService(svc models.Service) *models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == "" {
		svc.ID = s.nextID("svc")
	}
	s.services[svc.ID] = &svc
	return &svc
}

// Appointment returns the stored appointment, if any.
func (s *Server) Appointment(id string) (models.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return models.Appointment{}, false
	}
	return *a, true
}

// PasswordHash exposes the stored hash for a user.
func (s *Server) PasswordHash(email string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[email]; ok {
		return acc.hash
	}
	return nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path})
		fail := 0
		if s.failCount > 0 {
			s.failCount--
			fail = s.failStatus
		}
		s.mu.Unlock()

		if fail != 0 {
			writeJSON(w, fail, map[string]string{"error": http.StatusText(fail)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *Server) currentUserID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return s.sessions[c.Value]
}

func (s *Server) startSession(w http.ResponseWriter, userID string) {
	token := uuid.NewString()
	s.sessions[token] = userID
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email and password are required"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Email already registered"})
		return
	}
	acc := &account{user: models.User{ID: s.nextID("user"), Email: in.Email}, hash: hash}
	s.accounts[in.Email] = acc
	s.startSession(w, acc.user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"user": acc.user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[in.Email]
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(in.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Invalid email or password"})
		return
	}
	s.startSession(w, acc.user.ID)
	writeJSON(w, http.StatusOK, map[string]any{"user": acc.user})
}

func (s *Server) accountByID(id string) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByID(s.currentUserID(r))
	if acc == nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": acc.user})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PayPalHandle *string `json:"paypal_handle"`
		Password     string  `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByID(s.currentUserID(r))
	if acc == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}
	if in.PayPalHandle != nil {
		acc.user.PayPalHandle = strings.TrimSpace(*in.PayPalHandle)
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{})
			return
		}
		acc.hash = hash
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": acc.user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, err := r.Cookie(sessionCookie); err == nil {
		delete(s.sessions, c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner := s.currentUserID(r)
	if owner == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}
	out := make([]*models.Service, 0)
	for _, svc := range s.services {
		if svc.UserID == owner {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt || (out[i].CreatedAt == out[j].CreatedAt && out[i].ID < out[j].ID) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Service not found"})
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var svc models.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	owner := s.currentUserID(r)
	if owner == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}
	svc.ID = s.nextID("svc")
	svc.UserID = owner
	s.services[svc.ID] = &svc
	writeJSON(w, http.StatusCreated, svc)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	var svc models.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	existing, ok := s.services[id]
	if !ok || existing.UserID != s.currentUserID(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Service not found"})
		return
	}
	svc.ID = id
	svc.UserID = existing.UserID
	s.services[id] = &svc
	writeJSON(w, http.StatusOK, svc)
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	existing, ok := s.services[id]
	if !ok || existing.UserID != s.currentUserID(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Service not found"})
		return
	}
	delete(s.services, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner := s.currentUserID(r)
	if owner == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}
	out := make([]*models.Appointment, 0)
	for _, a := range s.appointments {
		if a.UserID == owner {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Appointment not found"})
		return
	}
	out := *a
	if acc := s.accountByID(a.UserID); acc != nil {
		out.PayPalHandle = acc.user.PayPalHandle
	}
	writeJSON(w, http.StatusOK, out)
}

// Appointments may be created without a session: the public booking page
// posts them on behalf of the service owner.
func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var a models.Appointment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if owner := s.currentUserID(r); owner != "" {
		a.UserID = owner
	}
	if a.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}
	a.ID = s.nextID("appt")
	a.PayPalHandle = ""
	s.appointments[a.ID] = &a
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var a models.Appointment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	existing, ok := s.appointments[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Appointment not found"})
		return
	}
	a.ID = id
	a.UserID = existing.UserID
	a.PayPalHandle = ""
	s.appointments[id] = &a
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	existing, ok := s.appointments[id]
	if !ok || existing.UserID != s.currentUserID(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Appointment not found"})
		return
	}
	delete(s.appointments, id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
