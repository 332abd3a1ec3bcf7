package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/streetlayer/storefront/internal/session"
)

// sessionView is the auth state payload.
type sessionView struct {
	Authenticated bool          `json:"authenticated"`
	Status        string        `json:"status"`
	User          *session.User `json:"user,omitempty"`
}

func (h *Handler) sessionViewNow() sessionView {
	return sessionView{
		Authenticated: h.session.IsAuthenticated(),
		Status:        h.session.Status().String(),
		User:          h.session.User(),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		badRequest(w, "email and password are required")
		return
	}

	if err := h.session.Login(r.Context(), req.Email, req.Password); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, h.sessionViewNow())
}

// logout clears the session and the cart together so a kiosk handover leaves
// nothing behind.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	if err := h.cart.Clear(r.Context()); err != nil {
		zctx.From(r.Context()).Error("Clearing cart on logout failed", zap.Error(err))
	}
	respond(w, http.StatusOK, h.sessionViewNow())
}

func (h *Handler) me(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, h.sessionViewNow())
}

// updateProfile pushes the patch to the backend first, then merges it into
// the local session. The local merge is the authoritative result.
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch session.Patch
	if err := decodeBody(r, &patch); err != nil {
		badRequest(w, "invalid body")
		return
	}

	token := h.session.Token()
	if token == "" {
		respondError(r.Context(), w, session.ErrNotAuthenticated)
		return
	}

	if h.profile != nil {
		if _, err := h.profile.UpdateProfile(r.Context(), token, patch); err != nil {
			respondError(r.Context(), w, err)
			return
		}
	}

	if err := h.session.UpdateUser(r.Context(), patch); err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, h.sessionViewNow())
}
