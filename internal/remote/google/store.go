package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matheus3301/nikki/internal/remote"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Options identifies the spreadsheet, the credentials and the upload folder.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	TokenFile       string
	DriveFolderID   string
}

// Bounds on remote calls made without a caller deadline. Uploads are only
// bounded by the caller's ctx.
var (
	connectTimeout = 30 * time.Second
	appendTimeout  = 20 * time.Second
)

var errConnectBusy = errors.New("another connect is in progress")

// Store talks to one spreadsheet. Network calls run outside mu, which only
// guards publishing the session; connMu keeps a single Connect in flight.
type Store struct {
	opts   Options
	logger *zap.Logger

	connMu    sync.Mutex
	mu        sync.RWMutex
	sheets    *sheets.Service
	drive     *drive.Service
	wantTitle string
	title     string
}

var _ remote.Store = (*Store)(nil)

// New creates an unconnected store.
func New(opts Options, logger *zap.Logger) *Store {
	return &Store{
		opts:      opts,
		logger:    logger,
		wantTitle: opts.SheetName,
	}
}

// Connect loads the token, builds the API clients and resolves the target
// tab, falling back to the first tab when the configured one is missing.
// While one Connect is running others fail at once, so submissions queue
// instead of waiting on a stalled network.
func (s *Store) Connect(ctx context.Context) error {
	if !s.connMu.TryLock() {
		return remote.Wrap(remote.KindConnect, "open spreadsheet", errConnectBusy)
	}
	defer s.connMu.Unlock()
	if s.Connected() {
		return nil
	}

	if s.opts.SpreadsheetID == "" {
		return remote.Wrap(remote.KindConnect, "open spreadsheet", remote.ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := s.httpClient(ctx)
	if err != nil {
		return remote.Wrap(remote.KindConnect, "authenticate", err)
	}
	sheetsSvc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return remote.Wrap(remote.KindConnect, "sheets client", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return remote.Wrap(remote.KindConnect, "drive client", err)
	}

	titles, err := listTitles(ctx, sheetsSvc, s.opts.SpreadsheetID)
	if err != nil {
		return remote.Wrap(remote.KindConnect, "open spreadsheet", err)
	}
	if len(titles) == 0 {
		return remote.Wrap(remote.KindConnect, "open spreadsheet", fmt.Errorf("%w: spreadsheet has no tabs", remote.ErrNotFound))
	}

	s.mu.Lock()
	title := titles[0]
	if s.wantTitle != "" {
		if contains(titles, s.wantTitle) {
			title = s.wantTitle
		} else {
			s.logger.Warn("sheet not found, falling back to first sheet",
				zap.String("wanted", s.wantTitle), zap.String("using", title))
		}
	}
	s.sheets = sheetsSvc
	s.drive = driveSvc
	s.title = title
	s.mu.Unlock()

	s.logger.Info("connected to spreadsheet", zap.String("spreadsheet_id", s.opts.SpreadsheetID), zap.String("sheet", title))
	return nil
}

// Connected reports whether Connect has succeeded since the last failure.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sheets != nil && s.title != ""
}

// Collection returns the selected tab, or the configured one before the
// first connect.
func (s *Store) Collection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.title != "" {
		return s.title
	}
	return s.wantTitle
}

// AppendRow appends [timestamp, text] below the last row of the tab. A
// failure drops the session so the next Connect revalidates the tab, unless
// the caller gave up first.
func (s *Store) AppendRow(ctx context.Context, timestamp, text string) error {
	s.mu.RLock()
	svc, title := s.sheets, s.title
	s.mu.RUnlock()
	if svc == nil {
		return remote.Wrap(remote.KindSend, "append row", fmt.Errorf("not connected"))
	}

	callCtx, cancel := context.WithTimeout(ctx, appendTimeout)
	defer cancel()
	vr := &sheets.ValueRange{Values: [][]interface{}{{timestamp, text}}}
	_, err := svc.Spreadsheets.Values.Append(s.opts.SpreadsheetID, sheetRange(title), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(callCtx).
		Do()
	if err != nil {
		if ctx.Err() == nil {
			s.invalidate()
		}
		return remote.Wrap(remote.KindSend, "append row", err)
	}
	return nil
}

// ListCollections returns the tab titles in spreadsheet order.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	svc := s.sheets
	s.mu.RUnlock()

	titles, err := listTitles(ctx, svc, s.opts.SpreadsheetID)
	if err != nil {
		return nil, remote.Wrap(remote.KindCollection, "list sheets", err)
	}
	return titles, nil
}

// SelectCollection switches the target tab. The tab must exist.
func (s *Store) SelectCollection(ctx context.Context, name string) error {
	if name == "" {
		return remote.Wrap(remote.KindCollection, "select sheet", fmt.Errorf("empty sheet name"))
	}
	titles, err := s.ListCollections(ctx)
	if err != nil {
		return err
	}
	if !contains(titles, name) {
		return remote.Wrap(remote.KindCollection, "select sheet", fmt.Errorf("%w: sheet %q", remote.ErrNotFound, name))
	}

	s.mu.Lock()
	s.wantTitle = name
	s.title = name
	s.mu.Unlock()
	s.logger.Info("sheet selected", zap.String("sheet", name))
	return nil
}

// Upload stores the file in the configured Drive folder (or My Drive) and
// returns its view link. Sharing settings are left untouched.
func (s *Store) Upload(ctx context.Context, path string) (string, error) {
	if err := s.Connect(ctx); err != nil {
		return "", &remote.Error{Kind: remote.KindUpload, Op: "connect", Err: err}
	}
	s.mu.RLock()
	svc := s.drive
	s.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return "", remote.Wrap(remote.KindUpload, "open file", err)
	}
	defer func() { _ = f.Close() }()

	meta := &drive.File{Name: filepath.Base(path)}
	if folder := NormalizeFolderID(s.opts.DriveFolderID); folder != "" {
		if _, err := svc.Files.Get(folder).Fields("id").SupportsAllDrives(true).Context(ctx).Do(); err != nil {
			return "", remote.Wrap(remote.KindUpload, "check folder",
				fmt.Errorf("upload folder %s is missing or not accessible: %w", folder, err))
		}
		meta.Parents = []string{folder}
	}

	created, err := svc.Files.Create(meta).
		Media(f).
		Fields("id, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", remote.Wrap(remote.KindUpload, "create file", err)
	}
	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}
	return FileURL(created.Id), nil
}

func (s *Store) invalidate() {
	s.mu.Lock()
	s.sheets = nil
	s.drive = nil
	s.title = ""
	s.mu.Unlock()
}

// httpClient builds an authorised client. The client outlives ctx, so the
// token source is bound to the background context with its own timeout.
func (s *Store) httpClient(ctx context.Context) (*http.Client, error) {
	cfg, err := OAuthConfig(s.opts.CredentialsFile)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(s.opts.TokenFile)
	if err != nil {
		return nil, err
	}
	ts := &savingTokenSource{
		base: cfg.TokenSource(refreshContext(), tok),
		path: s.opts.TokenFile,
		last: tok.AccessToken,
	}
	ts.onErr = func(err error) {
		s.logger.Warn("persist refreshed token failed", zap.Error(err))
	}
	if _, err := ts.Token(); err != nil {
		return nil, refreshError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return oauth2.NewClient(context.Background(), ts), nil
}

func refreshContext() context.Context {
	return context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: connectTimeout})
}

// refreshError maps a refresh failure. Only a token endpoint that answered
// and refused (invalid_grant, revoked client) means the session is gone;
// transport failures are plain connectivity errors.
func refreshError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < http.StatusInternalServerError {
		return fmt.Errorf("%w: token refresh rejected: %v", remote.ErrNoSession, err)
	}
	return fmt.Errorf("token refresh: %w", err)
}

func listTitles(ctx context.Context, svc *sheets.Service, spreadsheetID string) ([]string, error) {
	ss, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
