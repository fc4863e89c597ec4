package sheetsync

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/expofuse/expofuse/pkg/errors"
)

// GoogleSheets is the Store implementation backed by the Google Sheets v4
// API. One instance addresses a single worksheet of a single spreadsheet.
type GoogleSheets struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewGoogleSheets builds a client for the given spreadsheet and worksheet
// using a service-account credentials file.
func NewGoogleSheets(ctx context.Context, spreadsheetID, sheetName, credentialsFile string) (*GoogleSheets, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &GoogleSheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Header implements Store.
func (g *GoogleSheets) Header(ctx context.Context) ([]string, error) {
	resp, err := g.svc.Spreadsheets.Values.
		Get(g.spreadsheetID, g.rng("1:1")).
		Context(ctx).Do()
	if err != nil {
		return nil, classify("read header", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	header := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		header = append(header, fmt.Sprint(cell))
	}
	return header, nil
}

// RowCount implements Store. It probes the first column's full extent and
// subtracts the header row.
func (g *GoogleSheets) RowCount(ctx context.Context) (int, error) {
	resp, err := g.svc.Spreadsheets.Values.
		Get(g.spreadsheetID, g.rng("A:A")).
		Context(ctx).Do()
	if err != nil {
		return 0, classify("row count", err)
	}
	if len(resp.Values) <= 1 {
		return 0, nil
	}
	return len(resp.Values) - 1, nil
}

// WriteHeader implements Store.
func (g *GoogleSheets) WriteHeader(ctx context.Context, columns []string) error {
	_, err := g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, g.rng("A1"), valueRange([][]string{columns})).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return classify("write header", err)
}

// WriteRange implements Store.
func (g *GoogleSheets) WriteRange(ctx context.Context, a1Range string, values [][]string) error {
	_, err := g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, g.rng(a1Range), valueRange(values)).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return classify("backfill", err)
}

// Append implements Store. INSERT_ROWS guarantees the append-only,
// no-overwrite write the synchronizer's contract requires.
func (g *GoogleSheets) Append(ctx context.Context, values [][]string) error {
	_, err := g.svc.Spreadsheets.Values.
		Append(g.spreadsheetID, g.rng("A1"), valueRange(values)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return classify("append", err)
}

// rng qualifies an A1 range with the worksheet name.
func (g *GoogleSheets) rng(a1 string) string {
	if g.sheetName == "" {
		return a1
	}
	return fmt.Sprintf("'%s'!%s", g.sheetName, a1)
}

func valueRange(values [][]string) *sheets.ValueRange {
	out := make([][]interface{}, len(values))
	for i, row := range values {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return &sheets.ValueRange{Values: out}
}

// classify maps a Google API failure onto the remote error taxonomy:
// 429 and API-level rate limits → quota, 403 → permission, the cell-limit
// rejection → capacity, anything else → unknown. Never retried here.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		switch {
		case apiErr.Code == 429:
			return errors.NewRemoteError(errors.RemoteQuota, operation, apiErr.Code, msg, err)
		case apiErr.Code == 403:
			return errors.NewRemoteError(errors.RemotePermission, operation, apiErr.Code, msg, err)
		case isCellLimit(msg):
			return errors.NewRemoteError(errors.RemoteCapacity, operation, apiErr.Code, msg, err)
		default:
			return errors.NewRemoteError(errors.RemoteUnknown, operation, apiErr.Code, msg, err)
		}
	}

	return errors.NewRemoteError(errors.RemoteUnknown, operation, 0, err.Error(), err)
}

// isCellLimit matches the service's "above the limit of N cells" rejection.
func isCellLimit(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "cells") && strings.Contains(m, "limit")
}
