package db

import (
	"gopkg.in/guregu/null.v3"
)

type OTU struct {
	ID                       int64  `json:"otu_id" db:"otu_id" gorm:"column:otu_id;primaryKey;autoIncrement:false"`
	LowestTaxonomicUnitFound string `json:"lowest_taxonomic_unit_found" db:"lowest_taxonomic_unit_found" gorm:"column:lowest_taxonomic_unit_found"`
}

func (OTU) TableName() string { return TableOTU }

// SampleMetadata is the subset of a samples_metadata row served by /sample.
// Field order fixes the JSON key order.
type SampleMetadata struct {
	Age       null.Int    `json:"AGE" db:"AGE" gorm:"column:AGE"`
	BBType    null.String `json:"BBTYPE" db:"BBTYPE" gorm:"column:BBTYPE"`
	Ethnicity null.String `json:"ETHNICITY" db:"ETHNICITY" gorm:"column:ETHNICITY"`
	Gender    null.String `json:"GENDER" db:"GENDER" gorm:"column:GENDER"`
	Location  null.String `json:"LOCATION" db:"LOCATION" gorm:"column:LOCATION"`
	SampleID  int64       `json:"SAMPLEID" db:"SAMPLEID" gorm:"column:SAMPLEID"`
}

func (SampleMetadata) TableName() string { return TableSamplesMetadata }

type WashingFrequency struct {
	WFREQ null.Float `json:"WFREQ" db:"WFREQ" gorm:"column:WFREQ"`
}

func (WashingFrequency) TableName() string { return TableSamplesMetadata }

// SampleValues holds two parallel sequences ordered by descending abundance.
// A NULL cell stays null in sample_values.
type SampleValues struct {
	OTUIDs       []int64      `json:"otu_ids"`
	SampleValues []null.Float `json:"sample_values"`
}

type TableCounts struct {
	OTUs            int64 `json:"otu"`
	AbundanceRows   int64 `json:"samples"`
	MetadataRecords int64 `json:"samples_metadata"`
	SampleColumns   int   `json:"sample_columns"`
}
