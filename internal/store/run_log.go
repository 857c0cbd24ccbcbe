package store

import (
	"database/sql"
	"fmt"
	"time"
)

// 运行状态
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunRecord 一次对账运行的记录
type RunRecord struct {
	ID                  string     `json:"id"`
	Bank1File           string     `json:"bank1_file"`
	Bank2File           string     `json:"bank2_file"`
	Status              string     `json:"status"`
	Degraded            bool       `json:"degraded"`
	TotalSchemasBank1   int        `json:"total_schemas_bank1"`
	TotalSchemasBank2   int        `json:"total_schemas_bank2"`
	MatchedCount        int        `json:"matched_count"`
	UnmatchedBank1Count int        `json:"unmatched_bank1_count"`
	UnmatchedBank2Count int        `json:"unmatched_bank2_count"`
	CustomerRows        int        `json:"customer_rows"`
	ColumnCount         int        `json:"column_count"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

// CreateRun 创建运行记录，状态为 running
func (s *Store) CreateRun(id, bank1File, bank2File string) error {
	_, err := s.db.Exec(`
		INSERT INTO reconciliation_runs (id, bank1_file, bank2_file, status)
		VALUES (?, ?, ?, ?)
	`, id, bank1File, bank2File, RunStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to create run record: %w", err)
	}
	return nil
}

// RunSummary 运行完成时写回的统计信息
type RunSummary struct {
	Degraded            bool
	TotalSchemasBank1   int
	TotalSchemasBank2   int
	MatchedCount        int
	UnmatchedBank1Count int
	UnmatchedBank2Count int
	CustomerRows        int
	ColumnCount         int
}

// CompleteRun 标记运行完成并写回统计
func (s *Store) CompleteRun(id string, summary RunSummary) error {
	degraded := 0
	if summary.Degraded {
		degraded = 1
	}
	_, err := s.db.Exec(`
		UPDATE reconciliation_runs SET
			status = ?,
			degraded = ?,
			total_schemas_bank1 = ?,
			total_schemas_bank2 = ?,
			matched_count = ?,
			unmatched_bank1_count = ?,
			unmatched_bank2_count = ?,
			customer_rows = ?,
			column_count = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, RunStatusCompleted, degraded,
		summary.TotalSchemasBank1, summary.TotalSchemasBank2,
		summary.MatchedCount, summary.UnmatchedBank1Count, summary.UnmatchedBank2Count,
		summary.CustomerRows, summary.ColumnCount, id)
	if err != nil {
		return fmt.Errorf("failed to complete run record: %w", err)
	}
	return nil
}

// FailRun 标记运行失败
func (s *Store) FailRun(id, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE reconciliation_runs SET
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, RunStatusFailed, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

// GetRun 按 id 查询运行记录
func (s *Store) GetRun(id string) (*RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, bank1_file, bank2_file, status, degraded,
			total_schemas_bank1, total_schemas_bank2,
			matched_count, unmatched_bank1_count, unmatched_bank2_count,
			customer_rows, column_count, error_message,
			created_at, completed_at
		FROM reconciliation_runs WHERE id = ?
	`, id)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run record: %w", err)
	}
	return record, nil
}

// ListRuns 按时间倒序列出最近的运行记录
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, bank1_file, bank2_file, status, degraded,
			total_schemas_bank1, total_schemas_bank2,
			matched_count, unmatched_bank1_count, unmatched_bank2_count,
			customer_rows, column_count, error_message,
			created_at, completed_at
		FROM reconciliation_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// CountRuns 运行记录总数
func (s *Store) CountRuns() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reconciliation_runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count run records: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var record RunRecord
	var degraded int
	var completedAt sql.NullTime
	err := row.Scan(
		&record.ID, &record.Bank1File, &record.Bank2File, &record.Status, &degraded,
		&record.TotalSchemasBank1, &record.TotalSchemasBank2,
		&record.MatchedCount, &record.UnmatchedBank1Count, &record.UnmatchedBank2Count,
		&record.CustomerRows, &record.ColumnCount, &record.ErrorMessage,
		&record.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Degraded = degraded != 0
	if completedAt.Valid {
		record.CompletedAt = &completedAt.Time
	}
	return &record, nil
}
