package fuse

import (
	"encoding/json"
	"os"

	"github.com/expofuse/expofuse/pkg/errors"
	"github.com/expofuse/expofuse/pkg/table"
)

// scrapeStatusOK marks a successfully enriched record in the scrape output.
const scrapeStatusOK = "SUCCESS"

// scrapeMeta columns never carry company data.
var scrapeMeta = map[string]struct{}{
	"status": {},
	"error":  {},
}

// LoadScrape reads the web-scrape enrichment JSON, keeping only records
// whose extraction succeeded. The status and error bookkeeping fields are
// dropped; the url field survives for domain matching.
func LoadScrape(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}

	t := table.New("url")
	for _, record := range records {
		if stringify(record["status"]) != scrapeStatusOK {
			continue
		}
		row := make(table.Row, len(record))
		for _, key := range sortedKeys(record) {
			if _, meta := scrapeMeta[key]; meta {
				continue
			}
			if s := stringify(record[key]); s != "" {
				row[key] = s
			}
		}
		if row.NonEmpty() {
			t.Append(row)
		}
	}
	return t, nil
}
