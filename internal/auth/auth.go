// Package auth performs the browser-based GitHub sign-in handoff.
//
// The backend owns the OAuth exchange; this package only opens the login
// page and runs a short-lived loopback server that catches the redirect
// carrying the issued token and the serialized user.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/browser"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/domain"
)

// EnvToken is the environment variable consulted before any browser flow.
const EnvToken = "STAX_TOKEN"

// ErrLoginTimeout is returned when the browser flow does not complete in time.
var ErrLoginTimeout = errors.New("timed out waiting for browser sign-in")

// loginWindow bounds how long the loopback server waits for the callback.
const loginWindow = 3 * time.Minute

// Result is a completed sign-in: the bearer token plus the user the
// backend resolved during the OAuth exchange.
type Result struct {
	Token string
	User  domain.User
}

// TokenFromEnv returns the token from STAX_TOKEN, if set. CI and scripts
// use this to skip the browser flow entirely.
func TokenFromEnv() (string, bool) {
	tok := os.Getenv(EnvToken)
	return tok, tok != ""
}

// Login opens the backend's GitHub login page in the user's browser and
// blocks until the OAuth redirect lands on a loopback callback server,
// the context is cancelled, or the login window elapses.
func Login(ctx context.Context, client *api.Client) (Result, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return Result{}, fmt.Errorf("starting callback listener: %w", err)
	}

	redirect := fmt.Sprintf("http://%s/auth/callback", ln.Addr().String())

	results := make(chan Result, 1)
	errs := make(chan error, 1)

	r := chi.NewRouter()
	r.Get("/auth/callback", func(w http.ResponseWriter, req *http.Request) {
		res, err := parseCallback(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			errs <- err
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, callbackPage)
		results <- res
	})

	srv := &http.Server{Handler: r}
	go srv.Serve(ln)
	defer srv.Close()

	if err := browser.OpenURL(client.LoginURL(redirect)); err != nil {
		return Result{}, fmt.Errorf("opening login page: %w", err)
	}

	select {
	case res := <-results:
		return res, nil
	case err := <-errs:
		return Result{}, err
	case <-time.After(loginWindow):
		return Result{}, ErrLoginTimeout
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// parseCallback extracts the token and the base64-encoded user JSON the
// backend appends to the redirect.
func parseCallback(req *http.Request) (Result, error) {
	q := req.URL.Query()

	token := q.Get("token")
	if token == "" {
		return Result{}, errors.New("callback missing token")
	}

	encoded := q.Get("user")
	if encoded == "" {
		return Result{}, errors.New("callback missing user")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Some URL encoders swap to the URL-safe alphabet.
		raw, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return Result{}, fmt.Errorf("decoding callback user: %w", err)
		}
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return Result{}, fmt.Errorf("parsing callback user: %w", err)
	}

	return Result{Token: token, User: user}, nil
}

const callbackPage = `<!doctype html>
<html>
<head><title>stax</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh;">
<h2>Signed in</h2>
<p>You can close this tab and return to your terminal.</p>
</body>
</html>`
