package fuse

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/expofuse/expofuse/pkg/errors"
	"github.com/expofuse/expofuse/pkg/table"
)

// outputPrefix marks workbooks this system produced; input discovery must
// not pick them back up.
const outputPrefix = "output_enriched"

// LoadExcel reads an operator-supplied or enrichment workbook.
func LoadExcel(path string) (*table.Table, error) {
	return table.ReadXLSX(path)
}

// DiscoverExcel finds the input workbook in a session directory when none
// was configured explicitly: the alphabetically first *.xlsx that is not a
// previous output.
func DiscoverExcel(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return "", errors.WrapIO("read", dir, err)
	}
	sort.Strings(matches)
	for _, path := range matches {
		if !strings.HasPrefix(filepath.Base(path), outputPrefix) {
			return path, nil
		}
	}
	return "", errors.NewMissingSourceError("excel", dir)
}
