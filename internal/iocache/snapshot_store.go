package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// Table names for snapshot history.
const (
	snapshotsTable        = "skillpulse_snapshots"
	snapshotInsightsTable = "skillpulse_snapshot_insights"
)

// snapshotTables lists the snapshot tables in creation order.
var snapshotTables = []string{snapshotsTable, snapshotInsightsTable}

// SnapshotStoreImpl implements the SnapshotStore interface.
type SnapshotStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore creates a new SnapshotStore with the specified backend.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	if backend == schema.NoneBackend {
		return &SnapshotStoreImpl{backend: backend}, nil
	}

	driverName, err := driverFor(backend)
	if err != nil {
		return nil, fmt.Errorf("unsupported snapshot backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	dsn := connStr
	if backend == schema.SQLiteBackend && dsn == "" {
		dsn = GetSnapshotDBFilePath()
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	return newSnapshotStoreWithDB(db, backend)
}

// newSnapshotStoreWithDB creates the snapshot tables on an open connection.
func newSnapshotStoreWithDB(db *sql.DB, backend schema.DatabaseBackend) (*SnapshotStoreImpl, error) {
	queries := []string{getCreateSnapshotsQuery(backend), getCreateSnapshotInsightsQuery(backend)}
	for i, query := range queries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", snapshotTables[i], err)
		}
	}
	return &SnapshotStoreImpl{db: db, backend: backend}, nil
}

// getCreateSnapshotsQuery returns the CREATE TABLE query for skillpulse_snapshots.
func getCreateSnapshotsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(snapshotsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_learners INT NOT NULL DEFAULT 0,
				certified_users INT NOT NULL DEFAULT 0,
				cert_rate DOUBLE NOT NULL DEFAULT 0,
				pass_rate DOUBLE NOT NULL DEFAULT 0,
				no_show_rate DOUBLE NOT NULL DEFAULT 0,
				roi_score INT NOT NULL DEFAULT 0,
				grade VARCHAR(4) NOT NULL DEFAULT '',
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_learners INT NOT NULL DEFAULT 0,
				certified_users INT NOT NULL DEFAULT 0,
				cert_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
				pass_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
				no_show_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
				roi_score INT NOT NULL DEFAULT 0,
				grade TEXT NOT NULL DEFAULT '',
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_learners INTEGER NOT NULL DEFAULT 0,
				certified_users INTEGER NOT NULL DEFAULT 0,
				cert_rate REAL NOT NULL DEFAULT 0,
				pass_rate REAL NOT NULL DEFAULT 0,
				no_show_rate REAL NOT NULL DEFAULT 0,
				roi_score INTEGER NOT NULL DEFAULT 0,
				grade TEXT NOT NULL DEFAULT '',
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateSnapshotInsightsQuery returns the CREATE TABLE query for skillpulse_snapshot_insights.
func getCreateSnapshotInsightsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(snapshotInsightsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				insight_id VARCHAR(64) NOT NULL,
				priority VARCHAR(16) NOT NULL,
				title VARCHAR(255) NOT NULL,
				metric VARCHAR(64) NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (snapshot_id, insight_id)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				insight_id TEXT NOT NULL,
				priority TEXT NOT NULL,
				title TEXT NOT NULL,
				metric TEXT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (snapshot_id, insight_id)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				snapshot_id INTEGER NOT NULL,
				insight_id TEXT NOT NULL,
				priority TEXT NOT NULL,
				title TEXT NOT NULL,
				metric TEXT NOT NULL,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (snapshot_id, insight_id)
			);
		`, quotedTableName)
	}
}

// BeginSnapshot creates a new snapshot row and returns its unique ID.
func (ss *SnapshotStoreImpl) BeginSnapshot(startTime time.Time, configParams map[string]any) (int64, error) {
	if ss.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(snapshotsTable, ss.backend)

	var snapshotID int64
	switch ss.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING snapshot_id`, quotedTableName)
		err = ss.db.QueryRow(query, startTime, string(configJSON)).Scan(&snapshotID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = ss.db.Exec(query, formatTime(startTime, ss.backend), string(configJSON))
		if err == nil {
			snapshotID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return snapshotID, nil
}

// EndSnapshot stores the headline results and the run duration of a snapshot.
func (ss *SnapshotStoreImpl) EndSnapshot(snapshotID int64, endTime time.Time, result schema.DashboardResult) error {
	if ss.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(snapshotsTable, ss.backend)
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE snapshot_id = %s`, quotedTableName, placeholder(ss.backend, 1))
	startTime, err := ss.scanTime(ss.db.QueryRow(selectQuery, snapshotID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for snapshot %d: %w", snapshotID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	m := result.Metrics

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_learners = %s, certified_users = %s,
		cert_rate = %s, pass_rate = %s, no_show_rate = %s, roi_score = %s, grade = %s WHERE snapshot_id = %s`,
		quotedTableName,
		placeholder(ss.backend, 1), placeholder(ss.backend, 2), placeholder(ss.backend, 3), placeholder(ss.backend, 4),
		placeholder(ss.backend, 5), placeholder(ss.backend, 6), placeholder(ss.backend, 7), placeholder(ss.backend, 8),
		placeholder(ss.backend, 9), placeholder(ss.backend, 10))

	_, err = ss.db.Exec(updateQuery,
		formatTime(endTime, ss.backend), durationMs, m.TotalLearners, m.CertifiedUsers,
		m.CertRate, m.PassRate, m.NoShowRate, result.ROI.Score, string(result.ROI.Grade), snapshotID)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	return nil
}

// RecordInsights stores the insights emitted for a snapshot in one transaction.
func (ss *SnapshotStoreImpl) RecordInsights(snapshotID int64, recordedAt time.Time, insights []schema.InsightRecord) error {
	if ss.db == nil || len(insights) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (snapshot_id, insight_id, priority, title, metric, recorded_at) VALUES (%s, %s, %s, %s, %s, %s)`,
		quoteTableName(snapshotInsightsTable, ss.backend),
		placeholder(ss.backend, 1), placeholder(ss.backend, 2), placeholder(ss.backend, 3),
		placeholder(ss.backend, 4), placeholder(ss.backend, 5), placeholder(ss.backend, 6))

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin insight transaction: %w", err)
	}
	at := formatTime(recordedAt, ss.backend)
	for _, in := range insights {
		if _, err := tx.Exec(query, snapshotID, in.ID, string(in.Priority), in.Title, in.Metric, at); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert insight %s: %w", in.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insights: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (ss *SnapshotStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (ss *SnapshotStoreImpl) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:    string(ss.backend),
		Connected:  ss.db != nil,
		TableSizes: make(map[string]int64),
	}
	if ss.db == nil {
		return status, nil
	}

	quotedSnapshots := quoteTableName(snapshotsTable, ss.backend)
	if err := ss.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedSnapshots)).Scan(&status.TotalSnapshots); err != nil {
		return status, fmt.Errorf("failed to get total snapshots: %w", err)
	}

	if status.TotalSnapshots > 0 {
		lastQuery := fmt.Sprintf("SELECT snapshot_id, start_time FROM %s ORDER BY snapshot_id DESC LIMIT 1", quotedSnapshots)
		row := ss.db.QueryRow(lastQuery)
		var startRaw any
		if err := row.Scan(&status.LastSnapshotID, &startRaw); err != nil {
			return status, fmt.Errorf("failed to get last snapshot: %w", err)
		}
		last, err := ss.asTime(startRaw)
		if err != nil {
			return status, fmt.Errorf("failed to parse last snapshot time: %w", err)
		}
		status.LastSnapshotTime = last

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY snapshot_id ASC LIMIT 1", quotedSnapshots)
		oldest, err := ss.scanTime(ss.db.QueryRow(oldestQuery))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest snapshot time: %w", err)
		}
		status.OldestSnapshotTime = oldest
	}

	for _, table := range snapshotTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, ss.backend))
		if err := ss.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalInsights = int(status.TableSizes[snapshotInsightsTable])

	return status, nil
}

// GetAllSnapshots retrieves all snapshots ordered by ID.
func (ss *SnapshotStoreImpl) GetAllSnapshots() ([]schema.SnapshotRecord, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT snapshot_id, start_time, end_time, run_duration_ms, total_learners, certified_users,
		cert_rate, pass_rate, no_show_rate, roi_score, grade, config_params FROM %s ORDER BY snapshot_id`,
		quoteTableName(snapshotsTable, ss.backend))

	rows, err := ss.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotRecord
	for rows.Next() {
		var record schema.SnapshotRecord
		var startRaw, endRaw any
		if err := rows.Scan(&record.SnapshotID, &startRaw, &endRaw, &record.RunDurationMs, &record.TotalLearners,
			&record.CertifiedUsers, &record.CertRate, &record.PassRate, &record.NoShowRate, &record.ROIScore,
			&record.Grade, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if record.StartTime, err = ss.asTime(startRaw); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if endRaw != nil {
			end, err := ss.asTime(endRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &end
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return results, nil
}

// GetAllSnapshotInsights retrieves all insight rows ordered by snapshot.
func (ss *SnapshotStoreImpl) GetAllSnapshotInsights() ([]schema.SnapshotInsightRecord, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT snapshot_id, insight_id, priority, title, metric, recorded_at FROM %s ORDER BY snapshot_id, insight_id`,
		quoteTableName(snapshotInsightsTable, ss.backend))

	rows, err := ss.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot insights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotInsightRecord
	for rows.Next() {
		var record schema.SnapshotInsightRecord
		var recordedRaw any
		if err := rows.Scan(&record.SnapshotID, &record.InsightID, &record.Priority, &record.Title, &record.Metric, &recordedRaw); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot insight: %w", err)
		}
		if record.RecordedAt, err = ss.asTime(recordedRaw); err != nil {
			return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot insights: %w", err)
	}
	return results, nil
}

// scanTime scans a single time column from a row.
func (ss *SnapshotStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	var raw any
	if err := row.Scan(&raw); err != nil {
		return time.Time{}, err
	}
	return ss.asTime(raw)
}

// asTime converts a scanned time column. SQLite stores RFC 3339 text,
// the server backends return native timestamps.
func (ss *SnapshotStoreImpl) asTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", raw)
	}
}
