package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gopkg.in/guregu/null.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteStore serves the dataset from a SQLite file opened read-only. Typed
// lookups go through GORM; raw queries go through sqlx on the same handle.
type SQLiteStore struct {
	orm    *gorm.DB
	sqlDB  *sql.DB
	raw    *sqlx.DB
	schema *Schema
	logger *zap.Logger
}

// abundanceRow is one row of the per-sample abundance query.
type abundanceRow struct {
	Value null.Float `db:"sample_value"`
	OTUID int64      `db:"otu_id"`
}

// sqliteRowOrder breaks abundance ties by the order rows were stored in.
const sqliteRowOrder = "rowid"

func OpenSQLite(ctx context.Context, url string, logger *zap.Logger) (*SQLiteStore, error) {
	path, dsn := sqliteDSN(url)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}

	orm, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(logger), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}

	sqlDB, err := orm.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}

	raw := sqlx.NewDb(sqlDB, "sqlite3")

	var columns []string
	if err := raw.SelectContext(ctx, &columns,
		`SELECT name FROM pragma_table_info(?) ORDER BY cid`, TableSamples); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("read %s columns: %w", TableSamples, err)
	}
	if len(columns) == 0 {
		sqlDB.Close()
		return nil, fmt.Errorf("dataset %s has no %s table", path, TableSamples)
	}

	schema := NewSchema(columns)
	logger.Info("Opened SQLite dataset",
		zap.String("path", path),
		zap.Int("sample_columns", schema.Len()))

	return &SQLiteStore{
		orm:    orm,
		sqlDB:  sqlDB,
		raw:    raw,
		schema: schema,
		logger: logger,
	}, nil
}

// sqliteDSN turns a file path, file: URI or sqlite:/// URL into the path on
// disk and a read-only SQLite URI.
func sqliteDSN(url string) (path, dsn string) {
	path = strings.TrimPrefix(url, "sqlite:///")
	path = strings.TrimPrefix(path, "file:")

	params := "mode=ro"
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if q := path[i+1:]; q != "" {
			params = q + "&" + params
		}
		path = path[:i]
	}
	return path, "file:" + path + "?" + params
}

func (s *SQLiteStore) Schema() *Schema { return s.schema }

func (s *SQLiteStore) SampleNames(ctx context.Context) ([]string, error) {
	return s.schema.Columns(), nil
}

func (s *SQLiteStore) OTUDescriptions(ctx context.Context) ([]string, error) {
	var descriptions []string
	err := s.orm.WithContext(ctx).
		Model(&OTU{}).
		Pluck(ColumnOTULineage, &descriptions).Error
	if err != nil {
		return nil, fmt.Errorf("query otu descriptions: %w", err)
	}
	if descriptions == nil {
		descriptions = []string{}
	}
	return descriptions, nil
}

func (s *SQLiteStore) SampleMetadata(ctx context.Context, sampleID int64) (*SampleMetadata, error) {
	var rows []SampleMetadata
	err := s.orm.WithContext(ctx).
		Select(metadataColumns).
		Where(quoteIdent(ColumnSampleID)+" = ?", sampleID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query metadata for sample %d: %w", sampleID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("metadata for sample %d: %w", sampleID, ErrNotFound)
	}
	return &rows[0], nil
}

func (s *SQLiteStore) WashingFrequency(ctx context.Context, sampleID int64) (*WashingFrequency, error) {
	var rows []WashingFrequency
	err := s.orm.WithContext(ctx).
		Select(ColumnWFREQ).
		Where(quoteIdent(ColumnSampleID)+" = ?", sampleID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query wfreq for sample %d: %w", sampleID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("wfreq for sample %d: %w", sampleID, ErrNotFound)
	}
	return &rows[0], nil
}

func (s *SQLiteStore) SampleValues(ctx context.Context, sample string) (*SampleValues, error) {
	if !s.schema.Has(sample) {
		return nil, fmt.Errorf("%q: %w", sample, ErrUnknownSample)
	}

	var rows []abundanceRow
	if err := s.raw.SelectContext(ctx, &rows, abundanceQuery(sample, sqliteRowOrder)); err != nil {
		return nil, fmt.Errorf("query values for sample %s: %w", sample, err)
	}
	return collectSampleValues(rows), nil
}

func (s *SQLiteStore) Counts(ctx context.Context) (*TableCounts, error) {
	counts := &TableCounts{SampleColumns: s.schema.Len()}
	orm := s.orm.WithContext(ctx)

	if err := orm.Model(&OTU{}).Count(&counts.OTUs).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", TableOTU, err)
	}
	if err := orm.Table(TableSamples).Count(&counts.AbundanceRows).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", TableSamples, err)
	}
	if err := orm.Model(&SampleMetadata{}).Count(&counts.MetadataRecords).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", TableSamplesMetadata, err)
	}
	return counts, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.sqlDB.Close()
}

// abundanceQuery selects one allow-listed sample column with its OTU ids,
// highest abundance first and NULL cells last. Equal values are ordered by
// tieBreak ascending.
func abundanceQuery(sample, tieBreak string) string {
	col := quoteIdent(sample)
	return fmt.Sprintf(
		`SELECT %s AS sample_value, %s FROM %s ORDER BY %s DESC NULLS LAST, %s ASC`,
		col, ColumnOTUID, TableSamples, col, tieBreak,
	)
}

func collectSampleValues(rows []abundanceRow) *SampleValues {
	out := &SampleValues{
		OTUIDs:       make([]int64, 0, len(rows)),
		SampleValues: make([]null.Float, 0, len(rows)),
	}
	for _, r := range rows {
		out.OTUIDs = append(out.OTUIDs, r.OTUID)
		out.SampleValues = append(out.SampleValues, r.Value)
	}
	return out
}
