package db

import (
	"strings"
)

// Tables and columns of the biodiversity dataset. The layout is fixed; only
// the sample columns of the abundance table are discovered when a store opens.
const (
	TableOTU             = "otu"
	TableSamples         = "samples"
	TableSamplesMetadata = "samples_metadata"

	ColumnOTUID      = "otu_id"
	ColumnOTULineage = "lowest_taxonomic_unit_found"
	ColumnSampleID   = "SAMPLEID"
	ColumnWFREQ      = "WFREQ"
	ColumnAge        = "AGE"
	ColumnBBType     = "BBTYPE"
	ColumnEthnicity  = "ETHNICITY"
	ColumnGender     = "GENDER"
	ColumnLocation   = "LOCATION"
)

// metadataColumns is the projection used for SampleMetadata, in JSON order.
var metadataColumns = []string{
	ColumnAge, ColumnBBType, ColumnEthnicity, ColumnGender, ColumnLocation, ColumnSampleID,
}

// Schema is the allow-list of sample columns in the abundance table, frozen
// at open time. It is safe for concurrent use.
type Schema struct {
	columns []string
	index   map[string]struct{}
}

// NewSchema builds a Schema from the abundance table's columns in table
// order. The OTU id column is dropped.
func NewSchema(tableColumns []string) *Schema {
	s := &Schema{
		columns: make([]string, 0, len(tableColumns)),
		index:   make(map[string]struct{}, len(tableColumns)),
	}
	for _, c := range tableColumns {
		if c == ColumnOTUID {
			continue
		}
		if _, dup := s.index[c]; dup {
			continue
		}
		s.columns = append(s.columns, c)
		s.index[c] = struct{}{}
	}
	return s
}

// Columns returns a copy of the sample column names in table order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

func (s *Schema) Len() int { return len(s.columns) }

// quoteIdent quotes an identifier for SQLite and PostgreSQL alike.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
