package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Authorize runs the installed-app consent flow on a loopback redirect:
// present is handed the consent URL, the browser redirects back with a
// code, and the exchanged token is written to tokenPath.
func Authorize(ctx context.Context, cfg *oauth2.Config, tokenPath string, present func(authURL string)) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen for redirect: %w", err)
	}
	defer func() { _ = ln.Close() }()

	c := *cfg
	c.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())
	state := uuid.NewString()

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	deliver := func(r result) {
		select {
		case done <- r:
		default:
		}
	}
	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			switch {
			case q.Get("state") != state:
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			case q.Get("error") != "":
				_, _ = fmt.Fprintln(w, "Authorisation denied. You can close this window.")
				deliver(result{err: fmt.Errorf("authorisation denied: %s", q.Get("error"))})
			default:
				_, _ = fmt.Fprintln(w, "Authorisation complete. You can close this window.")
				deliver(result{code: q.Get("code")})
			}
		}),
	}
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Close() }()

	present(c.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.err != nil {
		return res.err
	}
	if res.code == "" {
		return errors.New("redirect carried no authorisation code")
	}

	tok, err := c.Exchange(ctx, res.code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	if err := SaveToken(tokenPath, tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}
