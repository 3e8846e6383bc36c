package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore serves a copy of the dataset loaded into PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema *Schema
	logger *zap.Logger
}

func OpenPostgres(ctx context.Context, opts Options, logger *zap.Logger) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	columns, err := postgresColumns(ctx, pool, TableSamples)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("read %s columns: %w", TableSamples, err)
	}
	if len(columns) == 0 {
		pool.Close()
		return nil, fmt.Errorf("database has no %s table", TableSamples)
	}

	schema := NewSchema(columns)
	logger.Info("Connected to PostgreSQL dataset",
		zap.String("database", config.ConnConfig.Database),
		zap.Int("sample_columns", schema.Len()))

	return &PostgresStore{pool: pool, schema: schema, logger: logger}, nil
}

func postgresColumns(ctx context.Context, pool *pgxpool.Pool, table string) ([]string, error) {
	rows, err := pool.Query(ctx, `
        SELECT column_name
        FROM information_schema.columns
        WHERE table_schema = current_schema() AND table_name = $1
        ORDER BY ordinal_position
    `, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

func (s *PostgresStore) Schema() *Schema { return s.schema }

func (s *PostgresStore) SampleNames(ctx context.Context) ([]string, error) {
	return s.schema.Columns(), nil
}

func (s *PostgresStore) OTUDescriptions(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s`, ColumnOTULineage, TableOTU))
	if err != nil {
		return nil, fmt.Errorf("query otu descriptions: %w", err)
	}
	defer rows.Close()

	descriptions := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan otu description: %w", err)
		}
		descriptions = append(descriptions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query otu descriptions: %w", err)
	}
	return descriptions, nil
}

func (s *PostgresStore) SampleMetadata(ctx context.Context, sampleID int64) (*SampleMetadata, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 LIMIT 1`,
		quoteIdents(metadataColumns), TableSamplesMetadata, quoteIdent(ColumnSampleID))

	var m SampleMetadata
	err := s.pool.QueryRow(ctx, query, sampleID).Scan(
		&m.Age, &m.BBType, &m.Ethnicity, &m.Gender, &m.Location, &m.SampleID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("metadata for sample %d: %w", sampleID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query metadata for sample %d: %w", sampleID, err)
	}
	return &m, nil
}

func (s *PostgresStore) WashingFrequency(ctx context.Context, sampleID int64) (*WashingFrequency, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 LIMIT 1`,
		quoteIdent(ColumnWFREQ), TableSamplesMetadata, quoteIdent(ColumnSampleID))

	var w WashingFrequency
	err := s.pool.QueryRow(ctx, query, sampleID).Scan(&w.WFREQ)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("wfreq for sample %d: %w", sampleID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query wfreq for sample %d: %w", sampleID, err)
	}
	return &w, nil
}

func (s *PostgresStore) SampleValues(ctx context.Context, sample string) (*SampleValues, error) {
	if !s.schema.Has(sample) {
		return nil, fmt.Errorf("%q: %w", sample, ErrUnknownSample)
	}

	// PostgreSQL has no stable physical row order, so ties fall back to the OTU id.
	rows, err := s.pool.Query(ctx, abundanceQuery(sample, ColumnOTUID))
	if err != nil {
		return nil, fmt.Errorf("query values for sample %s: %w", sample, err)
	}
	defer rows.Close()

	var values []abundanceRow
	for rows.Next() {
		var r abundanceRow
		if err := rows.Scan(&r.Value, &r.OTUID); err != nil {
			return nil, fmt.Errorf("scan values for sample %s: %w", sample, err)
		}
		values = append(values, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query values for sample %s: %w", sample, err)
	}
	return collectSampleValues(values), nil
}

func (s *PostgresStore) Counts(ctx context.Context) (*TableCounts, error) {
	counts := &TableCounts{SampleColumns: s.schema.Len()}
	targets := []struct {
		table string
		dest  *int64
	}{
		{TableOTU, &counts.OTUs},
		{TableSamples, &counts.AbundanceRows},
		{TableSamplesMetadata, &counts.MetadataRecords},
	}
	for _, t := range targets {
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+pgx.Identifier{t.table}.Sanitize()).Scan(t.dest); err != nil {
			return nil, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return counts, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return conn.Conn().Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
