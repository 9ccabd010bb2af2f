package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/starford/socialgram/internal/notify"
)

const flashCookie = "socialgram_flash"

// setFlash stores n for the next page render.
func setFlash(w http.ResponseWriter, n notify.Notification) {
	raw, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns and clears the pending notification, if any.
func popFlash(w http.ResponseWriter, r *http.Request) *notify.Notification {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var n notify.Notification
	if err := json.Unmarshal(raw, &n); err != nil || n.Title == "" {
		return nil
	}
	return &n
}
