package runstore

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

type SourceCounts struct {
	Source   string
	Assigned int64
	Missing  int64
}

type Run struct {
	Time       time.Time
	ErrorCount int64
	Sources    []SourceCounts
}

func (s Store) Push(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		"INSERT INTO run (time, error_count) VALUES (?, ?)",
		run.Time.Unix(), run.ErrorCount,
	)
	if err != nil {
		return err
	}
	runId, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, src := range run.Sources {
		_, err = tx.ExecContext(
			ctx,
			"INSERT INTO run_source (run_id, source, assigned_count, missing_count) VALUES (?, ?, ?, ?)",
			runId, src.Source, src.Assigned, src.Missing,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Pull returns the most recent runs, newest first.
func (s Store) Pull(ctx context.Context, limit int64) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"SELECT id, time, error_count FROM run ORDER BY time DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	var runIds []int64
	for rows.Next() {
		var id, unix, errCount int64
		err = rows.Scan(&id, &unix, &errCount)
		if err != nil {
			return nil, err
		}
		runs = append(runs, Run{
			Time:       time.Unix(unix, 0),
			ErrorCount: errCount,
		})
		runIds = append(runIds, id)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}

	for i, id := range runIds {
		sources, err := s.pullSources(ctx, id)
		if err != nil {
			return nil, err
		}
		runs[i].Sources = sources
	}

	return runs, nil
}

func (s Store) pullSources(ctx context.Context, runId int64) ([]SourceCounts, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"SELECT source, assigned_count, missing_count FROM run_source WHERE run_id = ?",
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []SourceCounts
	for rows.Next() {
		var src SourceCounts
		err = rows.Scan(&src.Source, &src.Assigned, &src.Missing)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}
