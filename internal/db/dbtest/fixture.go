// Package dbtest builds small SQLite copies of the biodiversity dataset for
// tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"biodiversity/internal/db"
)

// OTUs are the fixture lineages in row order.
var OTUs = []db.OTU{
	{ID: 1, LowestTaxonomicUnitFound: "Archaea;Euryarchaeota;Halobacteria;Halobacteriales;Halobacteriaceae;Halococcus"},
	{ID: 2, LowestTaxonomicUnitFound: "Archaea;Euryarchaeota;Methanobacteria;Methanobacteriales;Methanobacteriaceae;Methanobrevibacter"},
	{ID: 3, LowestTaxonomicUnitFound: "Bacteria"},
	{ID: 4, LowestTaxonomicUnitFound: "Bacteria;Actinobacteria"},
	{ID: 5, LowestTaxonomicUnitFound: "Bacteria;Firmicutes"},
}

// SampleColumns are the fixture sample names in column order.
var SampleColumns = []string{"BB_940", "BB_941", "BB_943"}

var statements = []string{
	`CREATE TABLE samples (
        otu_id INTEGER PRIMARY KEY,
        BB_940 INTEGER,
        BB_941 INTEGER,
        BB_943 INTEGER
    )`,
	`INSERT INTO samples (otu_id, BB_940, BB_941, BB_943) VALUES
        (1, 0, 3, 10),
        (2, 163, 0, 10),
        (3, 126, 2, 0),
        (4, 126, 0, 7),
        (5, 5, 40, 10)`,
	`CREATE TABLE samples_metadata (
        SAMPLEID INTEGER PRIMARY KEY,
        EVENT TEXT,
        ETHNICITY TEXT,
        GENDER TEXT,
        AGE INTEGER,
        WFREQ REAL,
        BBTYPE TEXT,
        LOCATION TEXT
    )`,
	`INSERT INTO samples_metadata (SAMPLEID, EVENT, ETHNICITY, GENDER, AGE, WFREQ, BBTYPE, LOCATION) VALUES
        (940, 'BellyButtonsScienceOnline', 'Caucasian', 'F', 24, 2, 'I', 'Beaufort/NC'),
        (941, 'BellyButtonsScienceOnline', 'Caucasian', 'M', 34, 1, 'I', 'Chicago/IL'),
        (943, 'BellyButtonsScienceOnline', NULL, 'F', NULL, NULL, 'O', 'Omaha/NE')`,
}

// NewSQLite writes the fixture dataset to a file under t.TempDir and returns
// its path.
func NewSQLite(t testing.TB) string {
	t.Helper()
	return NewSQLiteWith(t, statements...)
}

// NewSQLiteWith writes the otu table followed by the given statements, for
// tests that need their own samples layout.
func NewSQLiteWith(t testing.TB, stmts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "belly_button_biodiversity.sqlite")
	orm, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	sqlDB, err := orm.DB()
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer sqlDB.Close()

	if err := orm.AutoMigrate(&db.OTU{}); err != nil {
		t.Fatalf("migrate otu: %v", err)
	}
	rows := append([]db.OTU(nil), OTUs...)
	if err := orm.Create(&rows).Error; err != nil {
		t.Fatalf("insert otu: %v", err)
	}
	for _, stmt := range stmts {
		if err := orm.Exec(stmt).Error; err != nil {
			t.Fatalf("fixture statement failed: %v\n%s", err, stmt)
		}
	}
	return path
}
