// Package googlesheets implements the service.Sheet interface using the
// Google Sheets API.
package googlesheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"taskbot/internal/config"
	"taskbot/internal/service"
)

const (
	// DefaultTimeout is used when the config leaves the API timeout unset.
	DefaultTimeout = 10 * time.Second

	// lastColumn is the A1 letter of the last schema column.
	lastColumn = "E"

	// Values are stored exactly as typed so dates stay plain text.
	valueInputOption = "RAW"
)

// Client implements service.Sheet for one worksheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	timeout       time.Duration
}

// New creates a client authenticated with a service-account key file.
// The spreadsheet must be shared with the service account's email.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	keyJSON, err := os.ReadFile(cfg.Sheets.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(keyJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials file: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return open(ctx, svc, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, cfg.Sheets.Timeout)
}

// NewWithHTTPClient creates a client against a custom endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint, spreadsheetID, sheetName string) (*Client, error) {
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	return open(ctx, svc, spreadsheetID, sheetName, DefaultTimeout)
}

// open resolves the worksheet title. An empty sheetName selects the first
// worksheet of the spreadsheet.
func open(ctx context.Context, svc *sheets.Service, spreadsheetID, sheetName string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		timeout:       timeout,
	}
	if sheetName != "" {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	doc, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, wrapError("open spreadsheet", err)
	}
	if len(doc.Sheets) == 0 || doc.Sheets[0].Properties == nil {
		return nil, &service.StoreError{Op: "open spreadsheet", Reason: service.ReasonNotFound, Err: errors.New("spreadsheet has no worksheets")}
	}
	c.sheetName = doc.Sheets[0].Properties.Title
	return c, nil
}

// SheetName returns the resolved worksheet title.
func (c *Client) SheetName() string {
	return c.sheetName
}

// Header implements service.Sheet.
func (c *Client) Header(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.a1("1:1")).Context(ctx).Do()
	if err != nil {
		return nil, wrapError("read header", err)
	}
	if len(resp.Values) == 0 {
		return []string{}, nil
	}
	return toStrings(resp.Values[0], 0), nil
}

// Clear implements service.Sheet.
func (c *Client) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoteSheet(c.sheetName), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return wrapError("clear sheet", err)
	}
	return nil
}

// AppendRow implements service.Sheet.
func (c *Client) AppendRow(ctx context.Context, values []string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.a1("A1"), &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return wrapError("append row", err)
	}
	return nil
}

// Rows implements service.Sheet.
func (c *Client) Rows(ctx context.Context) ([]service.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rng := fmt.Sprintf("A%d:%s", service.FirstTaskRow, lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.a1(rng)).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError("read rows", err)
	}

	result := make([]service.Row, 0, len(resp.Values))
	for i, values := range resp.Values {
		result = append(result, service.Row{
			Number: service.FirstTaskRow + i,
			Values: toStrings(values, service.NumColumns),
		})
	}
	return result, nil
}

// UpdateCell implements service.Sheet.
func (c *Client) UpdateCell(ctx context.Context, row, col int, value string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.a1(CellRef(row, col)), &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return wrapError("update cell", err)
	}
	return nil
}

// a1 prefixes a range with the quoted worksheet title.
func (c *Client) a1(rng string) string {
	return quoteSheet(c.sheetName) + "!" + rng
}

// quoteSheet quotes a worksheet title for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// CellRef returns the A1 reference of a 1-based cell, e.g. (2, 5) -> "E2".
func CellRef(row, col int) string {
	return ColumnName(col) + fmt.Sprint(row)
}

// ColumnName returns the letters of a 1-based column: 1 -> A, 27 -> AA.
func ColumnName(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// toStrings converts API cell values, padding to width when width > 0.
func toStrings(values []interface{}, width int) []string {
	n := len(values)
	if width > n {
		n = width
	}
	out := make([]string, n)
	for i, v := range values {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// wrapError classifies API errors as service.StoreError.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	reason := service.ReasonAPI

	var apiErr *googleapi.Error
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = service.ReasonTimeout
	case errors.As(err, &apiErr):
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			reason = service.ReasonAuth
		case http.StatusTooManyRequests:
			reason = service.ReasonQuota
		case http.StatusNotFound:
			reason = service.ReasonNotFound
		}
	case errors.As(err, &netErr):
		reason = service.ReasonNetwork
		if netErr.Timeout() {
			reason = service.ReasonTimeout
		}
	}

	return &service.StoreError{Op: op, Reason: reason, Err: err}
}
