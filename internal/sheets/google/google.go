package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

const (
	defaultSheetName     = "Transactions"
	defaultCacheDuration = 2 * time.Minute
)

// Config selects the spreadsheet and the service account credentials.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger

	mu                 sync.Mutex
	cachedIDs          map[int64]struct{}
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// Ensure interface conformance
var _ ports.Mirror = (*Client)(nil)

// New creates a Sheets client. Extra options replace the service account
// credentials, which tests use to point the client at a local server.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	if logger == nil {
		logger = log.Default(log.ComponentSheets)
	}
	logger = logger.WithComponent(log.ComponentSheets)

	if len(opts) == 0 {
		creds, err := credentials(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
			goption.WithHTTPClient(newHTTPClientWithPooling()),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "sheet", sheetName)

	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheetName:          sheetName,
		logger:             logger,
		cacheValidDuration: defaultCacheDuration,
	}, nil
}

// credentials loads the service account key from inline JSON, a file or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func credentials(ctx context.Context, cfg Config, logger *log.Logger) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		logger.DebugContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// EnsureHeader writes the header row when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:F1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	vr := &gsheet.ValueRange{Values: [][]any{header}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header to %s: %w", c.sheetName, err)
	}
	c.logger.InfoContext(ctx, "Header row written", "sheet", c.sheetName)
	return nil
}

// AppendTransaction appends one row after the last used row.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{ports.Row(t)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	c.mu.Lock()
	if c.cachedIDs != nil {
		c.cachedIDs[t.ID] = struct{}{}
	}
	c.mu.Unlock()

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// MirroredIDs reads the ID column. Results are cached for a short while
// and kept current by AppendTransaction.
func (c *Client) MirroredIDs(ctx context.Context) (map[int64]struct{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	if c.cachedIDs != nil && time.Now().Before(c.cacheExpiresAt) {
		out := copyIDs(c.cachedIDs)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	ids := parseIDColumn(resp.Values)

	c.mu.Lock()
	c.cachedIDs = ids
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	out := copyIDs(ids)
	c.mu.Unlock()

	return out, nil
}

// InvalidateIDCache forces the next MirroredIDs call to read the sheet.
func (c *Client) InvalidateIDCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cachedIDs = nil
	c.cacheExpiresAt = time.Time{}
}

func copyIDs(in map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{}, len(in))
	for id := range in {
		out[id] = struct{}{}
	}
	return out
}
