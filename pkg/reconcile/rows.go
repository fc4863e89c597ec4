package reconcile

import (
	"strings"

	"github.com/expofuse/expofuse/pkg/identity"
	"github.com/expofuse/expofuse/pkg/normalize"
	"github.com/expofuse/expofuse/pkg/table"
)

// IDColumn is the canonical entity-key column, always first in output tables.
const IDColumn = "CompanyID"

// repeatThreshold is the occurrence count at which an identical value
// duplicated across different columns of one merged row gets scrubbed down
// to its first occurrence. Extractors sometimes copy one value into many
// semantically different fields.
const repeatThreshold = 3

// scrubExempt columns never lose values to the repeat scrub.
var scrubExempt = map[string]struct{}{
	IDColumn:    {},
	"file_name": {},
}

// Merger folds raw rows that resolve to the same entity into one merged
// record per entity.
type Merger struct {
	resolver *identity.Resolver
}

// NewMerger creates a Merger using the given identity resolver, or a
// default one when nil.
func NewMerger(resolver *identity.Resolver) *Merger {
	if resolver == nil {
		resolver = identity.NewResolver()
	}
	return &Merger{resolver: resolver}
}

// MergeRows groups rows by the value of idColumn, resolving an identity key
// for rows that do not carry one yet, and folds each multi-row group into a
// single merged row. For every column, distinct non-empty normalized values
// are collected in row order and joined with Separator; columns absent from
// some rows read as empty there. Groups keep first-seen order. A post-pass
// scrubs values repeated across too many columns of one merged row.
func (m *Merger) MergeRows(t *table.Table, idColumn string) *table.Table {
	if idColumn == "" {
		idColumn = IDColumn
	}

	var order []string
	groups := make(map[string][]table.Row)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		id := strings.TrimSpace(row[idColumn])
		if id == "" {
			id = m.resolver.Resolve(row).CompanyID()
			row[idColumn] = id
		}
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], row)
	}

	columns := t.Columns()
	out := table.New(columns...)
	out.AddColumn(idColumn)
	for _, id := range order {
		group := groups[id]
		var merged table.Row
		if len(group) == 1 {
			merged = group[0].Clone()
		} else {
			merged = foldGroup(group, columns, idColumn, id)
		}
		scrubRepeats(merged, out.Columns())
		out.Append(merged)
	}
	return out
}

// foldGroup builds one merged row from a multi-row entity group.
func foldGroup(group []table.Row, columns []string, idColumn, id string) table.Row {
	merged := make(table.Row, len(columns)+1)
	merged[idColumn] = id
	for _, col := range columns {
		if col == idColumn {
			continue
		}
		values := make([]string, 0, len(group))
		for _, row := range group {
			values = append(values, normalize.Clean(row[col]))
		}
		if v := JoinDistinct(values); v != "" {
			merged[col] = v
		}
	}
	return merged
}

// scrubRepeats blanks a value that appears in repeatThreshold or more
// different columns of the row, keeping the first occurrence in column
// order. ID and back-reference columns are exempt.
func scrubRepeats(row table.Row, columns []string) {
	counts := make(map[string]int, len(row))
	for _, col := range columns {
		if _, exempt := scrubExempt[col]; exempt {
			continue
		}
		if v := row[col]; v != "" {
			counts[v]++
		}
	}

	kept := make(map[string]struct{}, len(counts))
	for _, col := range columns {
		if _, exempt := scrubExempt[col]; exempt {
			continue
		}
		v := row[col]
		if v == "" || counts[v] < repeatThreshold {
			continue
		}
		if _, seen := kept[v]; seen {
			row[col] = ""
			continue
		}
		kept[v] = struct{}{}
	}
}
