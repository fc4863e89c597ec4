package fuse_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofuse/expofuse/pkg/fuse"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOCRQRSingleObjectResult(t *testing.T) {
	path := writeFile(t, "mix_ocr_qr.json", `[
	  {
	    "file_id": "1",
	    "file_name": "card_001.jpg",
	    "result": {
	      "company_names": ["Acme Trading", "بازرگانی اکمه"],
	      "phones": ["021 8877 6655", "0912 123 4567"],
	      "emails": ["info@acme.ir"],
	      "urls": ["https://www.acme.ir"],
	      "ocr_text": "raw text never becomes a column",
	      "persons": [
	        {"name": "Ali Rezaei", "position": "مدیر فروش"},
	        {"name": "Sara Ahmadi", "position": "CEO"}
	      ],
	      "social": {"telegram": "@acme", "instagram": "acme.ir"}
	    }
	  }
	]`)

	tbl, err := fuse.LoadOCRQR(path, fuse.DefaultMapping())
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())

	assert.Equal(t, "card_001.jpg", tbl.Get(0, "file_name"))
	assert.Equal(t, "Acme Trading", tbl.Get(0, "CompanyNameEN"))
	assert.Equal(t, "بازرگانی اکمه", tbl.Get(0, "CompanyNameFA"))
	assert.Equal(t, "021 8877 6655", tbl.Get(0, "Phone1"))
	assert.Equal(t, "0912 123 4567", tbl.Get(0, "Phone2"))
	assert.Equal(t, "info@acme.ir", tbl.Get(0, "Email"))
	assert.Equal(t, "https://www.acme.ir", tbl.Get(0, "Website"))
	assert.Equal(t, "Ali Rezaei", tbl.Get(0, "ContactName"))
	assert.Equal(t, "مدیر فروش", tbl.Get(0, "PositionFA"))
	assert.Equal(t, "Sara Ahmadi", tbl.Get(0, "ContactName2"))
	assert.Equal(t, "CEO", tbl.Get(0, "PositionEN2"))
	assert.Equal(t, "@acme", tbl.Get(0, "social_telegram"))
	assert.Equal(t, "acme.ir", tbl.Get(0, "social_instagram"))
	assert.False(t, tbl.HasColumn("ocr_text"))
}

func TestLoadOCRQRPagedResult(t *testing.T) {
	path := writeFile(t, "mix_ocr_qr.json", `[
	  {
	    "file_id": "2",
	    "file_name": "brochure.pdf",
	    "result": [
	      {"page": 1, "result": {"phones": ["02188776655"]}},
	      {"page": 2, "result": {"emails": ["sales@beta.ir"]}},
	      {"page": 3, "result": {}}
	    ]
	  }
	]`)

	tbl, err := fuse.LoadOCRQR(path, fuse.DefaultMapping())
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	assert.Equal(t, "brochure.pdf", tbl.Get(0, "file_name"))
	assert.Equal(t, "02188776655", tbl.Get(0, "Phone1"))
	assert.Equal(t, "brochure.pdf", tbl.Get(1, "file_name"))
	assert.Equal(t, "sales@beta.ir", tbl.Get(1, "Email"))
}

func TestLoadOCRQRSkipsUnusableEntries(t *testing.T) {
	path := writeFile(t, "mix_ocr_qr.json", `[
	  {"file_id": "1", "file_name": "", "result": {"emails": ["a@b.ir"]}},
	  {"file_id": "2", "file_name": "no_result.jpg"},
	  {"file_id": "3", "file_name": "ok.jpg", "result": {"emails": ["c@d.ir"]}}
	]`)

	tbl, err := fuse.LoadOCRQR(path, fuse.DefaultMapping())
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "ok.jpg", tbl.Get(0, "file_name"))
}

func TestLoadOCRQRNumericValues(t *testing.T) {
	path := writeFile(t, "mix_ocr_qr.json", `[
	  {"file_id": "1", "file_name": "a.jpg", "result": {"founded": 1998, "booth": 12.5}}
	]`)

	tbl, err := fuse.LoadOCRQR(path, fuse.DefaultMapping())
	require.NoError(t, err)
	assert.Equal(t, "1998", tbl.Get(0, "founded"))
	assert.Equal(t, "12.5", tbl.Get(0, "booth"))
}

func TestLoadOCRQRErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := fuse.LoadOCRQR(filepath.Join(t.TempDir(), "absent.json"), fuse.DefaultMapping())
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{not json`)
		_, err := fuse.LoadOCRQR(path, fuse.DefaultMapping())
		assert.Error(t, err)
	})

	t.Run("empty list", func(t *testing.T) {
		path := writeFile(t, "empty.json", `[]`)
		tbl, err := fuse.LoadOCRQR(path, fuse.DefaultMapping())
		require.NoError(t, err)
		assert.True(t, tbl.Empty())
	})
}
