package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// GetProfile returns the authenticated caller's account details.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing API key")
		return
	}

	acc, err := h.accounts.GetByUsername(r.Context(), p.Username)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("username", func(e *jx.Encoder) { e.Str(acc.Username) })
			e.Field("fullName", func(e *jx.Encoder) { e.Str(acc.FullName) })
			e.Field("email", func(e *jx.Encoder) { e.Str(acc.Email) })
			e.Field("phone", func(e *jx.Encoder) { e.Str(acc.Phone) })
			e.Field("address", func(e *jx.Encoder) { e.Str(acc.Address) })
			e.Field("admin", func(e *jx.Encoder) { e.Bool(acc.Admin) })
		})
	})
}
