// Package reconcile collapses the column and row variants that independent
// extractors emit for the same data: numbered suffixes (Phone1/Phone2),
// case-variant duplicates, English/Persian bilingual pairs and configured
// alias groups fold into single canonical columns, and rows resolving to
// the same entity fold into one merged record. All passes are idempotent.
package reconcile

import (
	"regexp"
	"sort"
	"strings"

	"github.com/expofuse/expofuse/pkg/table"
)

// Separator joins distinct values contributed by multiple sources into one
// cell. Readers split on it; it never appears inside extracted values.
const Separator = " | "

// BilingualPattern pairs an English column suffix with its Persian
// counterpart. An empty EN suffix matches the bare column name.
type BilingualPattern struct {
	EN string `yaml:"en"`
	FA string `yaml:"fa"`
}

// DefaultBilingualPatterns covers the suffix conventions the extractors use.
// Order matters: earlier patterns claim columns first.
func DefaultBilingualPatterns() []BilingualPattern {
	return []BilingualPattern{
		{EN: "EN", FA: "FA"},
		{EN: "_en", FA: "_fa"},
		{EN: "English", FA: "Persian"},
		{EN: "", FA: "FA"},
		{EN: "", FA: "_translated"},
	}
}

// AliasGroup folds differently named columns carrying the same attribute
// into the canonical column.
type AliasGroup struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// DefaultAliasGroups matches the column vocabulary of the OCR, QR and
// scrape extractors.
func DefaultAliasGroups() []AliasGroup {
	return []AliasGroup{
		{Canonical: "Website", Variants: []string{"urls", "url", "URL", "website"}},
		{Canonical: "Fax", Variants: []string{"faxes", "fax"}},
		{Canonical: "Email", Variants: []string{"emails", "email", "OtherEmails"}},
		{Canonical: "Phone1", Variants: []string{"phones", "phone", "Phone"}},
	}
}

// numberedSuffix strips a trailing "[n]" conflict marker or a trailing
// digit run (optionally underscore-separated) from a column name. The base
// must keep at least one character.
var numberedSuffix = regexp.MustCompile(`^(.+?)(?:\[\d+\]|_?\d+)$`)

// baseName returns the column name without its numbered suffix.
func baseName(column string) string {
	if m := numberedSuffix.FindStringSubmatch(column); m != nil {
		return m[1]
	}
	return column
}

// MergeNumbered folds columns that share a base name after stripping a
// trailing digit sequence (Phone1, Phone2, phones[2]) into the
// shortest-named column of the group, joining distinct non-empty values in
// column order with Separator, then drops the other columns.
func MergeNumbered(t *table.Table) {
	groups := make(map[string][]string)
	for _, col := range t.Columns() {
		base := strings.ToLower(baseName(col))
		groups[base] = append(groups[base], col)
	}

	bases := make([]string, 0, len(groups))
	for base, cols := range groups {
		if len(cols) > 1 {
			bases = append(bases, base)
		}
	}
	sort.Strings(bases)

	for _, base := range bases {
		cols := groups[base]
		sort.Slice(cols, func(i, j int) bool {
			if len(cols[i]) != len(cols[j]) {
				return len(cols[i]) < len(cols[j])
			}
			return cols[i] < cols[j]
		})
		foldColumns(t, cols[0], cols)
	}
}

// MergeCaseDuplicates folds columns whose lower-cased names coincide into
// the first-encountered spelling.
func MergeCaseDuplicates(t *table.Table) {
	byLower := make(map[string][]string)
	for _, col := range t.Columns() {
		l := strings.ToLower(col)
		byLower[l] = append(byLower[l], col)
	}

	for _, col := range t.Columns() {
		group := byLower[strings.ToLower(col)]
		if len(group) < 2 || group[0] != col {
			continue
		}
		foldColumns(t, group[0], group)
	}
}

// MergeBilingual detects English/Persian column pairs by suffix convention
// and folds each pair into the English-named column, English value first.
func MergeBilingual(t *table.Table, patterns []BilingualPattern) {
	if patterns == nil {
		patterns = DefaultBilingualPatterns()
	}

	processed := make(map[string]struct{})
	for _, col := range t.Columns() {
		if _, done := processed[col]; done {
			continue
		}
		for _, p := range patterns {
			var fa string
			switch {
			case p.EN != "" && strings.HasSuffix(col, p.EN):
				fa = strings.TrimSuffix(col, p.EN) + p.FA
			case p.EN == "":
				fa = col + p.FA
			default:
				continue
			}
			if fa == col || !t.HasColumn(fa) {
				continue
			}
			if _, done := processed[fa]; done {
				continue
			}
			foldColumns(t, col, []string{col, fa})
			processed[col] = struct{}{}
			processed[fa] = struct{}{}
			break
		}
	}
}

// MergeAliases folds configured alias groups (urls/url/Website and friends)
// into their canonical column. When only variants are present, the values
// fold into a fresh column carrying the configured canonical name.
func MergeAliases(t *table.Table, groups []AliasGroup) {
	if groups == nil {
		groups = DefaultAliasGroups()
	}

	for _, g := range groups {
		wanted := make(map[string]struct{}, len(g.Variants)+1)
		wanted[strings.ToLower(g.Canonical)] = struct{}{}
		for _, v := range g.Variants {
			wanted[strings.ToLower(v)] = struct{}{}
		}

		var present []string
		target := ""
		for _, col := range t.Columns() {
			if _, ok := wanted[strings.ToLower(col)]; !ok {
				continue
			}
			present = append(present, col)
			if strings.EqualFold(col, g.Canonical) && target == "" {
				target = col
			}
		}
		if len(present) < 2 {
			continue
		}
		if target == "" {
			target = g.Canonical
		}
		foldColumns(t, target, present)
	}
}

// Columns runs all reconciliation passes in order: numbered suffixes,
// case duplicates, bilingual pairs, alias groups. Running it twice over an
// already-reconciled table is a no-op.
func Columns(t *table.Table, patterns []BilingualPattern, aliases []AliasGroup) {
	MergeNumbered(t)
	MergeCaseDuplicates(t)
	MergeBilingual(t, patterns)
	MergeAliases(t, aliases)
}

// foldColumns joins the distinct non-empty values of the named columns into
// target for every row, then drops the source columns. The target column
// always survives, even when every cell ends up empty.
func foldColumns(t *table.Table, target string, columns []string) {
	for i := 0; i < t.Len(); i++ {
		values := make([]string, 0, len(columns))
		// Target first so its value keeps priority in the joined cell.
		values = append(values, t.Get(i, target))
		for _, col := range columns {
			if col != target {
				values = append(values, t.Get(i, col))
			}
		}
		t.Set(i, target, JoinDistinct(values))
	}
	var drop []string
	for _, col := range columns {
		if col != target {
			drop = append(drop, col)
		}
	}
	t.DropColumns(drop...)
}

// JoinDistinct trims the values, skips blanks, removes exact duplicates
// keeping first-seen order, and joins the rest with Separator.
func JoinDistinct(values []string) string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return strings.Join(out, Separator)
}
