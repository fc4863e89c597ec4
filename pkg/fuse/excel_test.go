package fuse_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofuse/expofuse/pkg/errors"
	"github.com/expofuse/expofuse/pkg/fuse"
	"github.com/expofuse/expofuse/pkg/table"
)

func writeWorkbook(t *testing.T, path string, tbl *table.Table) {
	t.Helper()
	require.NoError(t, table.WriteXLSX(tbl, path))
}

func TestDiscoverExcel(t *testing.T) {
	dir := t.TempDir()
	empty := table.New("A")

	writeWorkbook(t, filepath.Join(dir, "cards.xlsx"), empty)
	writeWorkbook(t, filepath.Join(dir, "archive.xlsx"), empty)
	writeWorkbook(t, filepath.Join(dir, "output_enriched_20250101.xlsx"), empty)

	path, err := fuse.DiscoverExcel(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "archive.xlsx"), path)
}

func TestDiscoverExcelSkipsOnlyOutputs(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "output_enriched_1.xlsx"), table.New("A"))

	_, err := fuse.DiscoverExcel(dir)
	assert.True(t, errors.IsSourceMissing(err))
}

func TestDiscoverExcelEmptyDir(t *testing.T) {
	_, err := fuse.DiscoverExcel(t.TempDir())
	assert.True(t, errors.IsSourceMissing(err))
}

func TestLoadExcel(t *testing.T) {
	dir := t.TempDir()
	src := table.New("CompanyName", "Website")
	src.Append(table.Row{"CompanyName": "Acme", "Website": "acme.ir"})
	path := filepath.Join(dir, "cards.xlsx")
	writeWorkbook(t, path, src)

	tbl, err := fuse.LoadExcel(path)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Acme", tbl.Get(0, "CompanyName"))

	_ = os.Remove(path)
	_, err = fuse.LoadExcel(path)
	assert.Error(t, err)
}
