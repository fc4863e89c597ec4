package sheetsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/expofuse/expofuse/pkg/logging"
	"github.com/expofuse/expofuse/pkg/normalize"
	"github.com/expofuse/expofuse/pkg/table"
)

// Report summarizes one synchronization call.
type Report struct {
	Appended     int      `json:"appended"`
	TotalRows    int      `json:"total_rows"`
	TotalColumns int      `json:"total_columns"`
	TotalCells   int      `json:"total_cells"`
	NewColumns   []string `json:"new_columns,omitempty"`
}

// Synchronizer pushes fused tables into a remote sheet.
type Synchronizer struct {
	store Store
}

// New creates a Synchronizer over the given store.
func New(store Store) *Synchronizer {
	return &Synchronizer{store: store}
}

// Sync reconciles the table's schema against the remote header and appends
// the table's rows. Steps, in order: read header, diff and widen, backfill
// historical rows for new columns, reindex the local table, sanitize
// outgoing cells, append. There is no rollback across steps; reruns after a
// mid-call failure are safe because the header diff and backfill are
// idempotent and appends are monotonic (a rerun appends duplicate rows
// rather than corrupting state).
func (s *Synchronizer) Sync(ctx context.Context, t *table.Table) (*Report, error) {
	log := logging.FromContext(ctx)

	remote, err := s.store.Header(ctx)
	if err != nil {
		return nil, err
	}

	local := t.Columns()
	var full []string
	var fresh []string

	if len(remote) == 0 {
		// Empty remote table: the local columns become the header verbatim.
		full = local
		if err := s.store.WriteHeader(ctx, full); err != nil {
			return nil, err
		}
		log.Info().Int("columns", len(full)).Msg("Initialized remote header")
	} else {
		full = trimAll(remote)
		fresh = diffColumns(local, remote)
		full = append(full, fresh...)
	}

	existing, err := s.store.RowCount(ctx)
	if err != nil {
		return nil, err
	}

	if len(fresh) > 0 {
		if err := s.store.WriteHeader(ctx, full); err != nil {
			return nil, err
		}
		log.Info().
			Strs("new_columns", fresh).
			Int("header_size", len(full)).
			Msg("Widened remote header")

		if existing > 0 {
			if err := s.backfill(ctx, len(full)-len(fresh), len(fresh), existing); err != nil {
				return nil, err
			}
			log.Info().Int("rows", existing).Int("columns", len(fresh)).Msg("Backfilled historical rows")
		}
	}

	t.Reindex(full)
	t.Transform(sanitize)

	values := t.Values()
	if err := s.store.Append(ctx, values); err != nil {
		return nil, err
	}

	report := &Report{
		Appended:     len(values),
		TotalRows:    existing + len(values),
		TotalColumns: len(full),
		TotalCells:   (existing + len(values)) * len(full),
		NewColumns:   fresh,
	}
	log.Info().
		Int("appended", report.Appended).
		Int("total_rows", report.TotalRows).
		Int("total_columns", report.TotalColumns).
		Msg("Appended rows to remote sheet")
	return report, nil
}

// backfill writes empty strings into the pre-existing rows of the newly
// introduced columns, one bounded range: data rows start at sheet row 2.
func (s *Synchronizer) backfill(ctx context.Context, firstCol, cols, rows int) error {
	a1 := fmt.Sprintf("%s2:%s%d",
		ColumnLetter(firstCol),
		ColumnLetter(firstCol+cols-1),
		rows+1)

	values := make([][]string, rows)
	for i := range values {
		values[i] = make([]string, cols)
	}
	return s.store.WriteRange(ctx, a1, values)
}

// sanitize is the final defensive pass over outgoing cells: null-like
// sentinels and propagated spreadsheet errors are blanked even when the
// value was synthesized after the normalization stage.
func sanitize(v string) string {
	if strings.HasPrefix(strings.TrimSpace(v), "#") {
		return ""
	}
	return normalize.Clean(v)
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
