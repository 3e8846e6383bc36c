package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a metadata lookup matches no rows.
	ErrNotFound = errors.New("not found")

	// ErrUnknownSample is returned for a sample column that is not in the
	// abundance table.
	ErrUnknownSample = errors.New("unknown sample")

	// ErrMalformedSampleName is returned when a sample name has no numeric
	// suffix after its last underscore.
	ErrMalformedSampleName = errors.New("malformed sample name")
)

// Store is the read-only view of the biodiversity dataset. Implementations
// are safe for concurrent use by many handlers.
type Store interface {
	SampleNames(ctx context.Context) ([]string, error)
	OTUDescriptions(ctx context.Context) ([]string, error)
	SampleMetadata(ctx context.Context, sampleID int64) (*SampleMetadata, error)
	WashingFrequency(ctx context.Context, sampleID int64) (*WashingFrequency, error)
	SampleValues(ctx context.Context, sample string) (*SampleValues, error)
	Counts(ctx context.Context) (*TableCounts, error)
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Open connects to the dataset named by opts.URL. PostgreSQL URLs open a
// pgx pool; anything else is treated as a SQLite file path.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if IsPostgresURL(opts.URL) {
		return OpenPostgres(ctx, opts, logger)
	}
	return OpenSQLite(ctx, opts.URL, logger)
}

func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// RedactURL hides the password of a PostgreSQL URL so it can be printed.
// SQLite paths are returned unchanged.
func RedactURL(raw string) string {
	if !IsPostgresURL(raw) {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw[:strings.Index(raw, "://")+3] + "<unparseable>"
	}
	return u.Redacted()
}

// ParseSampleID extracts the numeric id from a sample name such as BB_940.
func ParseSampleID(name string) (int64, error) {
	i := strings.LastIndex(name, "_")
	if i < 0 || i == len(name)-1 {
		return 0, fmt.Errorf("%q: %w", name, ErrMalformedSampleName)
	}
	id, err := strconv.ParseInt(name[i+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", name, ErrMalformedSampleName)
	}
	return id, nil
}
