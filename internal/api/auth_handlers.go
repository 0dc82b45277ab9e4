package api

import "net/http"

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := rt.decode(w, r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	res, err := rt.Auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := rt.decode(w, r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	res, err := rt.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
