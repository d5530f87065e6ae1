package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matheus3301/nikki/internal/remote"
	"github.com/matheus3301/nikki/internal/snapshot"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// Scopes requested at authorisation. Full Drive access is needed to upload
// into an existing folder and to verify that the folder exists.
var Scopes = []string{
	sheets.SpreadsheetsScope,
	drive.DriveScope,
}

// tokenFile is the on-disk token. It also accepts the field names written
// by other google-auth clients ("token", "scopes").
type tokenFile struct {
	AccessToken  string   `json:"access_token,omitempty"`
	LegacyToken  string   `json:"token,omitempty"`
	TokenType    string   `json:"token_type,omitempty"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	Expiry       string   `json:"expiry,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
}

// OAuthConfig reads an installed-app client secret file.
func OAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", credentialsFile, err)
	}
	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return cfg, nil
}

// LoadToken reads the token at path. A missing or empty file maps to
// remote.ErrNoSession; a token without the required scopes is rejected.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(strings.TrimSpace(string(data))) == 0) {
		return nil, remote.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("%w: token file unreadable: %v", remote.ErrNoSession, err)
	}
	if len(tf.Scopes) > 0 {
		for _, s := range Scopes {
			if !slices.Contains(tf.Scopes, s) {
				return nil, fmt.Errorf("%w: token lacks scope %s, re-run authorisation", remote.ErrNoSession, s)
			}
		}
	}

	tok := &oauth2.Token{
		AccessToken:  tf.AccessToken,
		TokenType:    tf.TokenType,
		RefreshToken: tf.RefreshToken,
	}
	if tok.AccessToken == "" {
		tok.AccessToken = tf.LegacyToken
	}
	if tf.Expiry != "" {
		if exp, err := time.Parse(time.RFC3339Nano, tf.Expiry); err == nil {
			tok.Expiry = exp
		} else if exp, err := time.Parse("2006-01-02T15:04:05.999999", tf.Expiry); err == nil {
			tok.Expiry = exp.UTC()
		}
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token file has no credentials", remote.ErrNoSession)
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token expired and cannot be refreshed", remote.ErrNoSession)
	}
	return tok, nil
}

// SaveToken writes tok to path with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	tf := tokenFile{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Scopes:       Scopes,
	}
	if !tok.Expiry.IsZero() {
		tf.Expiry = tok.Expiry.UTC().Format(time.RFC3339Nano)
	}
	return snapshot.Write(path, tf)
}

// savingTokenSource writes refreshed tokens back to disk so the next start
// does not need to refresh again.
type savingTokenSource struct {
	mu    sync.Mutex
	base  oauth2.TokenSource
	path  string
	last  string
	onErr func(error)
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil && s.onErr != nil {
			s.onErr(err)
		}
	}
	return tok, nil
}
