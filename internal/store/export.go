package store

import (
	"context"
	"time"
)

// ExportKind selects the download filename pattern.
type ExportKind int

const (
	// ExportFiltered names an export of a filtered listing.
	ExportFiltered ExportKind = iota

	// ExportAll names an export of every stored record.
	ExportAll
)

// ExportFilename returns the suggested filename for a download made at now:
// crm_clients_YYYYmmdd_HHMMSS.csv for filtered exports and
// crm_all_clients_YYYYmmdd.csv for full exports.
func ExportFilename(kind ExportKind, now time.Time) string {
	if kind == ExportAll {
		return "crm_all_clients_" + now.Format("20060102") + ".csv"
	}

	return "crm_clients_" + now.Format("20060102_150405") + ".csv"
}

// Export loads the backing file and serializes every record.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	table, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	return Export(table)
}
