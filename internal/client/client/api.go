package client

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
)

// Backend bounds for list sizes.
const (
	MaxTailLimit = 1000
	MaxStatsTop  = 200
)

// LoginResult is a successful login or bootstrap response.
type LoginResult struct {
	Token       string
	Username    string
	ExpiresUnix *int64
}

// Download is an export body streamed from the backend. Filename is the
// Content-Disposition hint, empty when absent. The caller closes Body.
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	ExpiresUnix *int64 `json:"expires_unix"`
	User        *struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type adminDTO struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	CreatedUnix *int64 `json:"created_unix"`
	Disabled    bool   `json:"disabled"`
}

func (d adminDTO) model() models.AdminAccount {
	a := models.AdminAccount{ID: d.ID, Username: d.Username, Disabled: d.Disabled}
	if d.CreatedUnix != nil {
		t := time.Unix(*d.CreatedUnix, 0).UTC()
		a.CreatedAt = &t
	}
	return a
}

// AuthStatus asks whether any enabled administrator exists. The endpoint is
// public.
func (c *HTTPClient) AuthStatus(ctx context.Context) (bool, error) {
	var resp struct {
		HasAdmins bool `json:"has_admins"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/status", nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.HasAdmins, nil
}

// Login exchanges credentials for a session token.
func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) (LoginResult, error) {
	return c.authenticate(ctx, "/api/auth/login", username, password)
}

// Bootstrap creates the first administrator and logs in as it.
func (c *HTTPClient) Bootstrap(ctx context.Context, username string, password []byte) (LoginResult, error) {
	return c.authenticate(ctx, "/api/auth/bootstrap", username, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, username string, password []byte) (LoginResult, error) {
	var resp loginResponse
	in := credentialsRequest{Username: username, Password: string(password)}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, in, &resp); err != nil {
		return LoginResult{}, err
	}
	res := LoginResult{Token: resp.Token, ExpiresUnix: resp.ExpiresUnix}
	if resp.User != nil {
		res.Username = resp.User.Username
	}
	return res, nil
}

// ExportLogs streams log rows in r as jsonl or csv.
func (c *HTTPClient) ExportLogs(ctx context.Context, r models.TimeRange, format models.ExportFormat, scope models.Scope) (*Download, error) {
	q := (&query{}).
		add("from", r.FromISO()).
		add("to", r.ToISO()).
		add("format", string(format))
	addScope(q, scope)

	req, err := c.newRequest(ctx, http.MethodGet, "/api/logs/export", q, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Download{
		Body:        resp.Body,
		Filename:    DispositionFilename(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// DispositionFilename extracts a safe base file name from a
// Content-Disposition header value, or "" when there is none.
func DispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(filepath.Clean("/" + params["filename"]))
	if name == "/" || name == "." || name == "" {
		return ""
	}
	return name
}

type statsResponse struct {
	From           string           `json:"from"`
	To             string           `json:"to"`
	Highlight      map[string]int64 `json:"highlight"`
	CommandsReader []struct {
		ClaIns string `json:"cla_ins"`
		Count  int64  `json:"count"`
	} `json:"commands_reader"`
	CommandsReaderHeader4 []struct {
		Header4 string `json:"header4"`
		Count   int64  `json:"count"`
	} `json:"commands_reader_header4"`
	ResponsesCardSW []struct {
		SW    string `json:"sw"`
		Count int64  `json:"count"`
	} `json:"responses_card_sw"`
	ParsedAPDU          int64  `json:"parsed_apdu"`
	ParseErrors         int64  `json:"parse_errors"`
	TotalLogRowsScanned *int64 `json:"total_log_rows_scanned"`
}

// APDUStats fetches aggregated APDU counts over r, at most top entries per list.
func (c *HTTPClient) APDUStats(ctx context.Context, r models.TimeRange, top int, scope models.Scope) (*models.APDUStats, error) {
	q := (&query{}).
		add("from", r.FromISO()).
		add("to", r.ToISO()).
		add("top", strconv.Itoa(clamp(top, 1, MaxStatsTop)))
	addScope(q, scope)

	var resp statsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/apdu/stats", q, nil, &resp); err != nil {
		return nil, err
	}

	out := &models.APDUStats{
		From:                resp.From,
		To:                  resp.To,
		Highlight:           resp.Highlight,
		ParsedAPDU:          resp.ParsedAPDU,
		ParseErrors:         resp.ParseErrors,
		TotalLogRowsScanned: resp.TotalLogRowsScanned,
	}
	for _, v := range resp.CommandsReader {
		out.CommandsReader = append(out.CommandsReader, models.CommandCount{ClaIns: v.ClaIns, Count: v.Count})
	}
	for _, v := range resp.CommandsReaderHeader4 {
		out.CommandsReaderHeader = append(out.CommandsReaderHeader, models.HeaderCount{Header4: v.Header4, Count: v.Count})
	}
	for _, v := range resp.ResponsesCardSW {
		out.ResponsesCardSW = append(out.ResponsesCardSW, models.StatusWordCount{SW: v.SW, Count: v.Count})
	}
	return out, nil
}

// TailLogs fetches the newest limit rows matching scope.
func (c *HTTPClient) TailLogs(ctx context.Context, limit int, scope models.Scope) ([]models.TailRow, error) {
	q := (&query{}).add("limit", strconv.Itoa(clamp(limit, 1, MaxTailLimit)))
	addScope(q, scope)

	var resp struct {
		Rows []struct {
			TS      string          `json:"ts"`
			Tag     string          `json:"tag"`
			Origin  string          `json:"origin"`
			Session *int64          `json:"session"`
			Args    json.RawMessage `json:"args"`
		} `json:"rows"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/logs/tail", q, nil, &resp); err != nil {
		return nil, err
	}

	rows := make([]models.TailRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		rows = append(rows, models.TailRow{TS: r.TS, Tag: r.Tag, Origin: r.Origin, Session: r.Session, Args: r.Args})
	}
	return rows, nil
}

type healthResponse struct {
	Status           string `json:"status"`
	Server           string `json:"server"`
	DBConfigured     bool   `json:"db_configured"`
	ProtobufIndexing bool   `json:"protobuf_indexing"`
	StartedUnix      *int64 `json:"started_unix"`
	UptimeSeconds    *int64 `json:"uptime_seconds"`
	LogBytesMode     string `json:"log_bytes_mode"`
	DBFileBytes      *int64 `json:"db_file_bytes"`
	Counts           *struct {
		Logs       int64  `json:"logs"`
		APDUEvents int64  `json:"apdu_events"`
		Payloads   *int64 `json:"payloads"`
	} `json:"counts"`
	Latest *struct {
		LogTSUnix  *int64 `json:"log_ts_unix"`
		APDUTSUnix *int64 `json:"apdu_ts_unix"`
	} `json:"latest"`
	Retention *struct {
		DBDays       int64 `json:"db_days"`
		JSONLDays    int64 `json:"jsonl_days"`
		SweepSeconds int64 `json:"sweep_seconds"`
	} `json:"retention"`
}

// Health fetches the public liveness snapshot.
func (c *HTTPClient) Health(ctx context.Context) (*models.Health, error) {
	var resp healthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, nil, &resp); err != nil {
		return nil, err
	}

	h := &models.Health{
		Status:           resp.Status,
		Server:           resp.Server,
		DBConfigured:     resp.DBConfigured,
		ProtobufIndexing: resp.ProtobufIndexing,
		StartedUnix:      resp.StartedUnix,
		UptimeSeconds:    resp.UptimeSeconds,
		LogBytesMode:     resp.LogBytesMode,
		DBFileBytes:      resp.DBFileBytes,
	}
	if resp.Counts != nil {
		h.Counts = &models.HealthCounts{Logs: resp.Counts.Logs, APDUEvents: resp.Counts.APDUEvents, Payloads: resp.Counts.Payloads}
	}
	if resp.Latest != nil {
		h.Latest = &models.HealthLatest{LogTSUnix: resp.Latest.LogTSUnix, APDUTSUnix: resp.Latest.APDUTSUnix}
	}
	if resp.Retention != nil {
		h.Retention = &models.Retention{DBDays: resp.Retention.DBDays, JSONLDays: resp.Retention.JSONLDays, SweepSeconds: resp.Retention.SweepSeconds}
	}
	return h, nil
}

// ListAdmins returns every administrator ordered by id.
func (c *HTTPClient) ListAdmins(ctx context.Context) ([]models.AdminAccount, error) {
	var resp struct {
		Users []adminDTO `json:"users"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/users", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.AdminAccount, 0, len(resp.Users))
	for _, u := range resp.Users {
		out = append(out, u.model())
	}
	return out, nil
}

// CreateAdmin adds an administrator.
func (c *HTTPClient) CreateAdmin(ctx context.Context, username string, password []byte) (*models.AdminAccount, error) {
	var resp struct {
		Created *adminDTO `json:"created"`
	}
	in := credentialsRequest{Username: username, Password: string(password)}
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/users", nil, in, &resp); err != nil {
		return nil, err
	}
	if resp.Created == nil {
		return nil, nil
	}
	a := resp.Created.model()
	return &a, nil
}

// UpdateAdmin changes the password and/or disabled flag of id. Nil arguments
// are left out of the request.
func (c *HTTPClient) UpdateAdmin(ctx context.Context, id int64, password []byte, disabled *bool) (*models.AdminAccount, error) {
	in := struct {
		Password *string `json:"password,omitempty"`
		Disabled *bool   `json:"disabled,omitempty"`
	}{Disabled: disabled}
	if password != nil {
		pw := string(password)
		in.Password = &pw
	}

	var resp struct {
		Updated *adminDTO `json:"updated"`
	}
	if err := c.doJSON(ctx, http.MethodPatch, adminPath(id), nil, in, &resp); err != nil {
		return nil, err
	}
	if resp.Updated == nil {
		return nil, nil
	}
	a := resp.Updated.model()
	return &a, nil
}

// DeleteAdmin removes id.
func (c *HTTPClient) DeleteAdmin(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, adminPath(id), nil, nil, nil)
}

func adminPath(id int64) string {
	return "/api/admin/users/" + strconv.FormatInt(id, 10)
}

func addScope(q *query, s models.Scope) {
	q.addOptional("tag", s.Tag).
		addOptional("origin", s.Origin).
		addOptional("session", s.Session)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
