package fuse

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"

	"github.com/expofuse/expofuse/pkg/errors"
	"github.com/expofuse/expofuse/pkg/normalize"
	"github.com/expofuse/expofuse/pkg/table"
)

// FileColumn is the back-reference column linking a row to the scanned
// document it came from.
const FileColumn = "file_name"

// ocrItem is one entry of the OCR+QR merge file. Result is either a single
// field-object or an array of per-page wrappers.
type ocrItem struct {
	FileID   string          `json:"file_id"`
	FileName string          `json:"file_name"`
	Result   json.RawMessage `json:"result"`
}

// ocrPage wraps one page of a multi-page document.
type ocrPage struct {
	Page   int                    `json:"page"`
	Result map[string]interface{} `json:"result"`
}

// skippedFields are raw-extraction artifacts that never become columns.
var skippedFields = map[string]struct{}{
	"ocr_text": {},
	"qr_links": {},
	"qr_link":  {},
}

// LoadOCRQR flattens the OCR+QR merge JSON into a table, one row per
// physical document page, each tagged with its file_name back-reference.
func LoadOCRQR(path string, mapping *Mapping) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var items []ocrItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}

	t := table.New(FileColumn)
	for _, item := range items {
		if item.FileName == "" || len(item.Result) == 0 {
			continue
		}
		for _, page := range itemPages(item) {
			row := flattenPage(page, mapping)
			if len(row) == 0 {
				continue
			}
			row[FileColumn] = item.FileName
			t.Append(row)
		}
	}
	return t, nil
}

// itemPages normalizes the two result shapes (single object, per-page
// array) into a list of field-objects.
func itemPages(item ocrItem) []map[string]interface{} {
	var single map[string]interface{}
	if err := json.Unmarshal(item.Result, &single); err == nil {
		return []map[string]interface{}{single}
	}

	var paged []ocrPage
	if err := json.Unmarshal(item.Result, &paged); err == nil {
		out := make([]map[string]interface{}, 0, len(paged))
		for _, p := range paged {
			if len(p.Result) > 0 {
				out = append(out, p.Result)
			}
		}
		return out
	}
	return nil
}

// flattenPage converts one page's field-object into a flat row. Array
// values become the base column plus numbered-suffix columns from index 2;
// nested objects become key_subkey columns; company names, addresses and
// contact persons get language-aware special handling.
func flattenPage(page map[string]interface{}, mapping *Mapping) table.Row {
	row := make(table.Row)

	for _, key := range sortedKeys(page) {
		if _, skip := skippedFields[key]; skip {
			continue
		}
		value := page[key]
		col := mapping.Column(key)

		switch v := value.(type) {
		case []interface{}:
			if len(v) == 0 {
				continue
			}
			if s := stringify(v[0]); s != "" {
				row[col] = s
			}
			for idx, item := range v[1:] {
				if s := stringify(item); s != "" {
					row[col+strconv.Itoa(idx+2)] = s
				}
			}
		case map[string]interface{}:
			for _, sub := range sortedKeys(v) {
				if s := stringify(v[sub]); s != "" {
					row[key+"_"+sub] = s
				}
			}
		default:
			if s := stringify(value); s != "" {
				row[col] = s
			}
		}
	}

	splitBilingualList(page, "company_names", row, "CompanyName")
	splitBilingualList(page, "addresses", row, "Address")
	expandPhones(page, row)
	expandPersons(page, row)

	return row
}

// splitBilingualList replaces the generic base column with language-split
// columns: the first Persian value and the first Latin value of the list.
func splitBilingualList(page map[string]interface{}, field string, row table.Row, base string) {
	values, ok := page[field].([]interface{})
	if !ok {
		return
	}
	var fa, en string
	for _, v := range values {
		s := stringify(v)
		if s == "" {
			continue
		}
		if normalize.IsPersian(s) {
			if fa == "" {
				fa = s
			}
		} else if en == "" {
			en = s
		}
	}
	if fa == "" && en == "" {
		return
	}
	if fa != "" {
		row[base+"FA"] = fa
	}
	if en != "" {
		row[base+"EN"] = en
	}
	delete(row, base)
}

// expandPhones spreads the phones list across Phone1..PhoneN.
func expandPhones(page map[string]interface{}, row table.Row) {
	phones, ok := page["phones"].([]interface{})
	if !ok {
		return
	}
	n := 0
	for _, v := range phones {
		s := stringify(v)
		if s == "" {
			continue
		}
		n++
		row["Phone"+strconv.Itoa(n)] = s
	}
}

// expandPersons spreads contact persons across ContactNameN plus a
// language-detected PositionENn/PositionFAn column each.
func expandPersons(page map[string]interface{}, row table.Row) {
	persons, ok := page["persons"].([]interface{})
	if !ok {
		return
	}
	idx := 0
	for _, v := range persons {
		person, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		idx++
		suffix := ""
		if idx > 1 {
			suffix = strconv.Itoa(idx)
		}
		if name := stringify(person["name"]); name != "" {
			row["ContactName"+suffix] = name
		}
		if position := stringify(person["position"]); position != "" {
			if normalize.IsPersian(position) {
				row["PositionFA"+suffix] = position
			} else {
				row["PositionEN"+suffix] = position
			}
		}
	}
}

// stringify renders a scalar JSON value. Whole numbers print without an
// exponent or trailing fraction.
func stringify(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
