package reconcile_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofuse/expofuse/pkg/reconcile"
	"github.com/expofuse/expofuse/pkg/table"
)

func TestMergeRowsFoldsSameEntity(t *testing.T) {
	tbl := table.New("CompanyID", "file_name", "Email", "Address")
	tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "file_name": "a.jpg", "Email": "info@acme.ir"})
	tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "file_name": "b.jpg", "Email": "sales@acme.ir", "Address": "Tehran"})

	out := reconcile.NewMerger(nil).MergeRows(tbl, "CompanyID")
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "WEB_acme.ir", out.Get(0, "CompanyID"))
	assert.Equal(t, "a.jpg | b.jpg", out.Get(0, "file_name"))
	assert.Equal(t, "info@acme.ir | sales@acme.ir", out.Get(0, "Email"))
	assert.Equal(t, "Tehran", out.Get(0, "Address"))
}

func TestMergeRowsKeepsDistinctEntitiesApart(t *testing.T) {
	tbl := table.New("CompanyID", "Email")
	tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "Email": "a@acme.ir"})
	tbl.Append(table.Row{"CompanyID": "WEB_other.ir", "Email": "b@other.ir"})
	tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "Email": "a@acme.ir"})

	out := reconcile.NewMerger(nil).MergeRows(tbl, "CompanyID")
	require.Equal(t, 2, out.Len())
	// Groups keep first-seen order.
	assert.Equal(t, "WEB_acme.ir", out.Get(0, "CompanyID"))
	assert.Equal(t, "WEB_other.ir", out.Get(1, "CompanyID"))
	// Identical values do not duplicate in the joined cell.
	assert.Equal(t, "a@acme.ir", out.Get(0, "Email"))
}

func TestMergeRowsResolvesMissingIDs(t *testing.T) {
	tbl := table.New("CompanyID", "Website", "Email")
	tbl.Append(table.Row{"Website": "https://www.acme.ir", "Email": "a@acme.ir"})
	tbl.Append(table.Row{"Website": "acme.ir", "Email": "b@acme.ir"})

	out := reconcile.NewMerger(nil).MergeRows(tbl, "CompanyID")
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "WEB_acme.ir", out.Get(0, "CompanyID"))
	assert.Equal(t, "a@acme.ir | b@acme.ir", out.Get(0, "Email"))
}

func TestMergeRowsNoDataLoss(t *testing.T) {
	// Every distinct non-empty input value must reach the merged row.
	tbl := table.New("CompanyID", "Notes")
	inputs := []string{"first note", "second note", "third note"}
	for _, n := range inputs {
		tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "Notes": n})
	}

	out := reconcile.NewMerger(nil).MergeRows(tbl, "CompanyID")
	require.Equal(t, 1, out.Len())
	merged := out.Get(0, "Notes")
	for _, n := range inputs {
		assert.Contains(t, merged, n)
	}
	assert.Equal(t, strings.Join(inputs, reconcile.Separator), merged)
}

func TestMergeRowsCleansCellsWhileFolding(t *testing.T) {
	tbl := table.New("CompanyID", "Phone1")
	tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "Phone1": "۰۲۱۸۸۷۷"})
	tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "Phone1": "nan"})

	out := reconcile.NewMerger(nil).MergeRows(tbl, "CompanyID")
	assert.Equal(t, "0218877", out.Get(0, "Phone1"))
}

func TestMergeRowsScrubsCrossColumnRepeats(t *testing.T) {
	// One extracted value copied into three or more semantically different
	// columns keeps only its first occurrence.
	tbl := table.New("CompanyID", "Phone1", "Fax", "Mobile", "Email")
	tbl.Append(table.Row{
		"CompanyID": "WEB_acme.ir",
		"Phone1":    "02188776655",
		"Fax":       "02188776655",
		"Mobile":    "02188776655",
		"Email":     "info@acme.ir",
	})
	tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "Email": "info@acme.ir"})

	out := reconcile.NewMerger(nil).MergeRows(tbl, "CompanyID")
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "02188776655", out.Get(0, "Phone1"))
	assert.Equal(t, "", out.Get(0, "Fax"))
	assert.Equal(t, "", out.Get(0, "Mobile"))
	assert.Equal(t, "info@acme.ir", out.Get(0, "Email"))
}

func TestMergeRowsRepeatScrubExemptsIDAndFile(t *testing.T) {
	tbl := table.New("CompanyID", "file_name", "A", "B", "C")
	tbl.Append(table.Row{
		"CompanyID": "x", "file_name": "x",
		"A": "x", "B": "x", "C": "x",
	})

	out := reconcile.NewMerger(nil).MergeRows(tbl, "CompanyID")
	assert.Equal(t, "x", out.Get(0, "CompanyID"))
	assert.Equal(t, "x", out.Get(0, "file_name"))
	assert.Equal(t, "x", out.Get(0, "A"))
	assert.Equal(t, "", out.Get(0, "B"))
	assert.Equal(t, "", out.Get(0, "C"))
}

func TestMergeRowsBelowThresholdKeepsRepeats(t *testing.T) {
	tbl := table.New("CompanyID", "Phone1", "Fax")
	tbl.Append(table.Row{"CompanyID": "x", "Phone1": "021", "Fax": "021"})

	out := reconcile.NewMerger(nil).MergeRows(tbl, "CompanyID")
	assert.Equal(t, "021", out.Get(0, "Phone1"))
	assert.Equal(t, "021", out.Get(0, "Fax"))
}

func TestMergeRowsIsIdempotent(t *testing.T) {
	tbl := table.New("CompanyID", "file_name", "Email", "Notes")
	tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "file_name": "a.jpg", "Email": "a@acme.ir", "Notes": "one"})
	tbl.Append(table.Row{"CompanyID": "WEB_acme.ir", "file_name": "b.jpg", "Email": "b@acme.ir", "Notes": "two"})
	tbl.Append(table.Row{"CompanyID": "WEB_other.ir", "Email": "c@other.ir"})

	m := reconcile.NewMerger(nil)
	once := m.MergeRows(tbl, "CompanyID")
	twice := m.MergeRows(once.Clone(), "CompanyID")

	assert.Equal(t, once.Columns(), twice.Columns())
	assert.Equal(t, once.Values(), twice.Values())
}

func TestMergeRowsEmptyTable(t *testing.T) {
	tbl := table.New("CompanyID")
	out := reconcile.NewMerger(nil).MergeRows(tbl, "CompanyID")
	assert.Equal(t, 0, out.Len())
	assert.True(t, out.HasColumn("CompanyID"))
}
