// Package auth obtains Google OAuth tokens for the agenda mirror.
//
// Credentials (credentials.json, downloaded from the Google Cloud console)
// and the cached token (token.json) live in the taskboard config dir.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	ClientSecretsFile = "credentials.json"
	TokenFile         = "token.json"

	// LocalhostAuthPort receives the OAuth redirect. It must match the
	// redirect URI registered for the client.
	LocalhostAuthPort = "6789"

	authTimeout = 5 * time.Minute
)

// Scopes are what the agenda mirror needs: read the calendar list and
// write events.
var Scopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// Flow runs the installed-app OAuth flow against files in Dir.
type Flow struct {
	Dir string
	// Out receives the URL the user has to open.
	Out io.Writer
	Log *logger.Logger
}

func (f Flow) log() *logger.Logger {
	if f.Log == nil {
		return logger.Discard()
	}
	return f.Log
}

func (f Flow) tokenPath() string {
	return filepath.Join(f.Dir, TokenFile)
}

// Config creates an oauth2.Config from the client secrets file, forcing the
// redirect onto the local callback port.
func (f Flow) Config(scopes []string) (*oauth2.Config, error) {
	clientSecretsFile := filepath.Join(f.Dir, ClientSecretsFile)
	b, err := os.ReadFile(clientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", clientSecretsFile, err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	config.RedirectURL = redirectURL(config.RedirectURL)
	return config, nil
}

// redirectURL pins localhost and out-of-band redirects to LocalhostAuthPort.
// Other redirects are returned unchanged.
func redirectURL(configured string) string {
	if configured == "" || configured == "urn:ietf:wg:oauth:2.0:oob" {
		return fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	}
	parsed, err := url.Parse(configured)
	if err != nil {
		return configured
	}
	if parsed.Hostname() == "localhost" || parsed.Hostname() == "127.0.0.1" {
		parsed.Host = net.JoinHostPort(parsed.Hostname(), LocalhostAuthPort)
		return parsed.String()
	}
	return configured
}

// Reset removes the cached token so the next Client call starts a new flow.
func (f Flow) Reset() error {
	err := os.Remove(f.tokenPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete token file %s: %w", f.tokenPath(), err)
	}
	return nil
}

// Client retrieves an authenticated *http.Client, reusing the cached
// token or running the browser flow when there is none.
func (f Flow) Client(ctx context.Context, scopes []string) (*http.Client, error) {
	config, err := f.Config(scopes)
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(f.tokenPath())
	if err != nil {
		f.log().Info("no cached token, starting web authorization", "path", f.tokenPath())
		tok, err = f.tokenFromWeb(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(f.tokenPath(), tok); err != nil {
			return nil, err
		}
	}

	// keep a rotated refresh token
	src := config.TokenSource(ctx, tok)
	if current, err := src.Token(); err == nil && current.AccessToken != tok.AccessToken {
		if err := saveToken(f.tokenPath(), current); err != nil {
			f.log().Warn("could not save refreshed token", "error", err)
		}
		tok = current
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// CalendarService creates an authenticated Google Calendar service.
func (f Flow) CalendarService(ctx context.Context) (*calendar.Service, error) {
	client, err := f.Client(ctx, Scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client for Calendar API: %w", err)
	}
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google Calendar service: %w", err)
	}
	return srv, nil
}

// tokenFromWeb runs the authorization code flow, capturing the redirect on
// a local listener.
func (f Flow) tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", "localhost:"+LocalhostAuthPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}

	state := newState()
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("state") != state {
				http.Error(w, "State mismatch", http.StatusBadRequest)
				return
			}
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- errors.New("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprintf(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	defer server.Close()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	out := f.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Open the following URL in your browser to authorize taskboard:\n%s\n", authURL)

	select {
	case code := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exchangeCtx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, errors.New("authorization timed out, please try again")
	}
}

// newState returns an unguessable value for the OAuth state parameter.
func newState() string {
	return oauth2.GenerateVerifier()
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken writes token to path, readable by the owner only.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
