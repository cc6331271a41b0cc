// Package web provides the HTTP surface of the service: the login pages, the
// OAuth callback and the ACME challenge responder.
package web

import (
	"log/slog"
	"net/http"

	"github.com/confidant-sh/confidant/acme"
	"github.com/confidant-sh/confidant/attest"
	"github.com/confidant-sh/confidant/challenge"
	"github.com/confidant-sh/confidant/identity"
	"github.com/confidant-sh/confidant/oauth"
)

// Handlers bundles the collaborators the HTTP surface needs. All shared state
// (the staging store and the seen-identity set) is handed in once at
// construction; there is no ambient global state.
type Handlers struct {
	Domain    string
	OAuth     *oauth.Provider
	Seen      *identity.SeenSet
	Attestor  attest.Provider
	Challenge *challenge.Store
	Log       *slog.Logger
}

// Router mounts all routes on a fresh mux.
func (h *Handlers) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.index)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/callback", h.callback)
	mux.HandleFunc(acme.CHALLENGE_PATH_PREFIX, challenge.Handler(h.Challenge, h.Log))
	return mux
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := struct {
		Domain string
	}{
		Domain: h.Domain,
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		h.Log.Error("rendering index", "error", err)
	}
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.OAuth.LoginURL(), http.StatusTemporaryRedirect)
}

func (h *Handlers) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.renderError(w, "Authentication Error", errParam)
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := h.OAuth.ExchangeCode(ctx, code)
	if err != nil {
		h.Log.Error("token exchange failed", "error", err)
		h.renderError(w, "Token Exchange Failed", err.Error())
		return
	}

	info, err := h.OAuth.Userinfo(ctx, token.AccessToken)
	if err != nil {
		h.Log.Error("userinfo lookup failed", "error", err)
		h.renderError(w, "Failed to Get User Info", err.Error())
		return
	}

	// Each identity may authenticate once per VM session; membership lives
	// only in RAM.
	if !h.Seen.MarkUsed(info.UserID) {
		h.renderError(w, "Already Used",
			"This account has already been used with this service during this VM session.")
		return
	}
	h.Log.Info("new identity authenticated", "user_id", info.UserID)

	reportData := attest.ReportData(h.OAuth.ClientID, info.UserID)
	report, err := h.Attestor.Report(ctx, reportData)
	if err != nil {
		h.Log.Error("attestation failed", "error", err)
		report = "Attestation generation failed: " + err.Error()
	}

	data := struct {
		UserID          string
		Name            string
		Email           string
		EmailVerified   bool
		AttestationKind string
		Attestation     string
	}{
		UserID:          info.UserID,
		Name:            orNA(info.Name),
		Email:           orNA(info.Email),
		EmailVerified:   info.EmailVerified,
		AttestationKind: h.Attestor.Name(),
		Attestation:     report,
	}
	if err := successTmpl.Execute(w, data); err != nil {
		h.Log.Error("rendering callback", "error", err)
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, title, detail string) {
	data := struct {
		Title  string
		Detail string
	}{
		Title:  title,
		Detail: detail,
	}
	if err := errorTmpl.Execute(w, data); err != nil {
		h.Log.Error("rendering error page", "error", err)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
