/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rstoredb

import (
	"os"

	"rstoredb/internal/config"
	"rstoredb/internal/errors"
	"rstoredb/internal/logging"
	"rstoredb/internal/sql"
	"rstoredb/internal/storage"
)

var log = logging.NewLogger("rstoredb")

// memoryPathPrefix marks the family of temp files Open(":memory:")
// creates. The source opens ":memory:" as an ordinary on-disk file; we
// instead honour the SQLite convention (§6.5 open question) by
// unlinking the backing file right after it is mapped, leaving an
// anonymous, unnamed inode that disappears with the process — no
// caller ever observes a file named ":memory:" on disk.
const memoryPathPrefix = "rstoredb-memory-"

// DB is a handle to one general-engine database: a paged mmap file, a
// catalog scoped to this handle (§3.8's open question — the source
// shares one catalog across every handle in the process; here each DB
// owns its own), and the SQL front end bound to both.
//
// DB is not safe for concurrent use (§5); every operation on a handle
// must be serialised by the caller.
type DB struct {
	path      string
	cfg       *config.Config
	pager     *storage.Pager
	catalog   *storage.Catalog
	executor  *sql.Executor
	closed    bool
	ephemeral string // set when this handle backs a ":memory:" open
}

// Open opens or creates the database file at path using the default
// configuration. Passing ":memory:" opens an anonymous, process-local
// database backed by an unlinked temp file.
func Open(path string) (*DB, error) {
	return OpenWithConfig(path, config.DefaultConfig())
}

// OpenWithConfig opens or creates the database file at path, honoring
// cfg's collation and locale. cfg is validated before use; the page
// size and mapped-page budget are always storage.PageSize and
// storage.MaxMappedPages, whatever cfg says.
func OpenWithConfig(path string, cfg *config.Config) (*DB, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	realPath := path
	var ephemeral string
	if path == ":memory:" {
		f, err := os.CreateTemp("", memoryPathPrefix+"*.db")
		if err != nil {
			return nil, errors.IOError("creating anonymous database file", err)
		}
		realPath = f.Name()
		f.Close()
		ephemeral = realPath
	}

	pager, err := storage.OpenPager(realPath)
	if err != nil {
		if ephemeral != "" {
			os.Remove(ephemeral)
		}
		return nil, err
	}

	if ephemeral != "" {
		// Unlink now: the fd inside pager keeps the inode alive for the
		// lifetime of the mapping, but no directory entry survives to
		// name it, matching an anonymous mapping's visibility.
		os.Remove(ephemeral)
	}

	collator := storage.GetCollator(collationFromName(cfg.CollationName()), cfg.Locale)
	catalog := storage.NewCatalog()
	executor := sql.NewExecutor(catalog, pager, collator)

	log.Debug("database opened", "path", path)
	return &DB{
		path: path, cfg: cfg,
		pager: pager, catalog: catalog, executor: executor,
		ephemeral: ephemeral,
	}, nil
}

func collationFromName(name string) storage.Collation {
	switch name {
	case "nocase":
		return storage.CollationCaseInsensitive
	case "unicode":
		return storage.CollationUnicode
	default:
		return storage.CollationBinary
	}
}

// Close releases the database's mapping and file descriptor. Close is
// idempotent.
func (db *DB) Close() error {
	if db.closed {
		return nil
	}
	db.closed = true
	log.Debug("database closed", "path", db.path)
	return db.pager.Close()
}

func (db *DB) ensureOpen() error {
	if db.closed {
		return errors.NewStorageError("database handle is closed")
	}
	return nil
}

// Exec runs a non-SELECT statement: CREATE TABLE or INSERT. Use Query
// for SELECT, SHOW TABLES, DESCRIBE and SHOW CREATE TABLE.
func (db *DB) Exec(sqlText string) error {
	if err := db.ensureOpen(); err != nil {
		return err
	}
	stmt, err := sql.Parse(sqlText)
	if err != nil {
		return err
	}
	switch stmt.(type) {
	case *sql.CreateTableStmt, *sql.InsertStmt:
	default:
		return errors.NewExecutionError("Exec only runs CREATE TABLE and INSERT statements; use Query for SELECT-family statements")
	}

	plan, err := sql.PlanStatement(stmt, db.catalog)
	if err != nil {
		return err
	}
	log.Debug("exec", "plan", planKindName(plan.Kind))
	return db.executor.Execute(plan, nil)
}

// RowSink receives one result row per call, paired with the result's
// column names (§6.3's row_sink signature). The slices passed to sink
// are only valid for the duration of the call.
type RowSink func(names []string, values []Value) error

// Query runs a SELECT-family statement (SELECT, SHOW TABLES, DESCRIBE,
// SHOW CREATE TABLE), invoking sink once per result row. sink is never
// invoked if the statement fails to parse, plan or execute.
func (db *DB) Query(sqlText string, sink RowSink) error {
	if err := db.ensureOpen(); err != nil {
		return err
	}
	stmt, err := sql.Parse(sqlText)
	if err != nil {
		return err
	}

	plan, err := sql.PlanStatement(stmt, db.catalog)
	if err != nil {
		return err
	}
	switch plan.Kind {
	case sql.PlanCreateTable, sql.PlanInsert:
		return errors.NewExecutionError("Query only runs SELECT-family statements; use Exec for CREATE TABLE and INSERT")
	}
	log.Debug("query", "plan", planKindName(plan.Kind))

	names := columnNames(plan)
	return db.executor.Execute(plan, func(values []Value) error {
		return sink(names, values)
	})
}

// columnNames derives the result set's column names for plan, matching
// what the executor actually materialises for each plan kind.
func columnNames(plan *sql.Plan) []string {
	switch plan.Kind {
	case sql.PlanTableScan, sql.PlanIndexScan, sql.PlanVectorFilter:
		if plan.ProjectAll {
			names := make([]string, len(plan.Table.Columns))
			for i, c := range plan.Table.Columns {
				names[i] = c.Name
			}
			return names
		}
		names := make([]string, len(plan.ProjectColumns))
		for i, idx := range plan.ProjectColumns {
			names[i] = plan.Table.Columns[idx].Name
		}
		return names
	case sql.PlanShowTables:
		return []string{"Tables"}
	case sql.PlanDescribe:
		return []string{"Field", "Type", "Null", "Key", "Default", "Extra"}
	case sql.PlanShowCreateTable:
		return []string{"Table", "Create Table"}
	default:
		return nil
	}
}

func planKindName(k sql.PlanKind) string {
	switch k {
	case sql.PlanCreateTable:
		return "create_table"
	case sql.PlanInsert:
		return "insert"
	case sql.PlanTableScan:
		return "table_scan"
	case sql.PlanIndexScan:
		return "index_scan"
	case sql.PlanVectorFilter:
		return "vector_filter"
	case sql.PlanShowTables:
		return "show_tables"
	case sql.PlanDescribe:
		return "describe"
	case sql.PlanShowCreateTable:
		return "show_create_table"
	default:
		return "unknown"
	}
}

// Path returns the file path the handle was opened with, including the
// ":memory:" sentinel if that is what the caller passed to Open.
func (db *DB) Path() string { return db.path }
