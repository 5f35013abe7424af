package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
)

// Config selects the spreadsheet and credentials used by the exporter.
type Config struct {
	SpreadsheetID      string
	SheetName          string // base name, the event year is prefixed
	ServiceAccountJSON string
	ServiceAccountFile string
}

// Exporter appends expense events as rows of a yearly sheet.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

// New creates an Exporter backed by a service account.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newExporter(svc, cfg), nil
}

func newExporter(svc *gsheet.Service, cfg Config) *Exporter {
	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = "Expenses"
	}
	return &Exporter{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetBase: base}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over the file path.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		data, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendExpense writes one row for the event into "<year> <sheet>".
func (e *Exporter) AppendExpense(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error {
	if msg == nil {
		return errors.New("nil expense event")
	}
	sheet := yearPrefixedName(e.sheetBase, msg.Timestamp.Year())
	rng := fmt.Sprintf("%s!A:F", quoteSheet(sheet))
	vr := &gsheet.ValueRange{Values: [][]interface{}{rowFor(msg)}}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

// rowFor lays out the columns: date, user, description, amount, category, photo.
func rowFor(msg *amqp.ExpenseCreatedMessage) []interface{} {
	category := msg.CategoryName
	if category == "" {
		category = core.UnknownCategoryName
	}
	return []interface{}{
		msg.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		msg.UserEmail,
		msg.Description,
		msg.Amount.StringFixed(2),
		category,
		msg.PhotoURL,
	}
}

// quoteSheet wraps names containing spaces, as A1 notation requires.
func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
