package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vaultmind/accountd/internal/account/service"
	"github.com/vaultmind/accountd/pkg/httpx"
)

type registerRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type registerResponse struct {
	QRCode     *string   `json:"qrCode"`
	Secret     *string   `json:"secret"`
	ExpireTime string    `json:"expireTime"`
	ExpireDate time.Time `json:"expireDate"`
}

type loginRequest struct {
	AuthCode string `json:"authCode,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	State     string `json:"state"`
}

type removeResponse struct {
	Message string `json:"message"`
	State   string `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (rt *Router) registerAccount() {
	rt.handle("POST /account/register", http.HandlerFunc(rt.handleRegister))
	rt.handle("POST /account/login", http.HandlerFunc(rt.handleLogin))
	rt.handleAuthed("DELETE /account/remove", http.HandlerFunc(rt.handleRemove))
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := rt.AccountService.Register(r.Context(), service.RegisterRequest{
		Name:     req.Name,
		Surname:  req.Surname,
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		writeOutcome(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, registerResponse{
		QRCode:     res.QRCode,
		Secret:     res.Secret,
		ExpireTime: res.ExpireTime,
		ExpireDate: res.ExpireDate,
	})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := rt.AccountService.Login(r.Context(), req.Username, req.Password, req.AuthCode)
	if err != nil {
		writeOutcome(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Username:  res.Username,
		FirstName: res.FirstName,
		LastName:  res.LastName,
		Email:     res.Email,
		Token:     res.Token,
		State:     res.State,
	})
}

// handleRemove relies on AuthnMiddleware having verified the session token;
// the engine receives the decoded claims, never the raw token.
func (rt *Router) handleRemove(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "access token rejected"})
		return
	}

	res, err := rt.AccountService.Remove(r.Context(), claims.AccountID(), claims.Username)
	if err != nil {
		writeOutcome(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, removeResponse{Message: res.Message, State: res.State})
}

// writeOutcome renders a domain outcome using the engine's status mapping.
func writeOutcome(w http.ResponseWriter, err error) {
	code := service.StatusOf(err)
	if code == http.StatusInternalServerError {
		// Do not leak internals; the cause is already logged.
		httpx.WriteJSON(w, code, errorResponse{Error: service.ErrInternal.Error()})
		return
	}
	httpx.WriteJSON(w, code, errorResponse{Error: err.Error()})
}
