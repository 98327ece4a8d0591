package converters

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/darianmavgo/admitdb/converters/common"
)

// Import error kinds. An *ImportError matches its kind with errors.Is.
var (
	ErrFileNotFound  = errors.New("file not found")
	ErrEmptyFile     = errors.New("empty file")
	ErrReadFailure   = errors.New("read failure")
	ErrWriteFailure  = errors.New("write failure")
	ErrInvalidColumn = errors.New("invalid column name")
)

const (
	// DefaultBatchSize is the number of rows buffered before a multi-row insert is executed.
	DefaultBatchSize = 500
	// DefaultMaxParams is the bind parameter limit of SQLite, the smallest default among
	// the ? style dialects.
	DefaultMaxParams = 32766
)

// Logger is the logging surface the importer writes to. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

// ImportOptions defines configuration for the import process.
type ImportOptions struct {
	BatchSize   int                    // Rows per flush, DefaultBatchSize when <= 0
	Placeholder common.PlaceholderFunc // Bind marker style, ? when nil
	MaxParams   int                    // Bind parameter limit per statement, DefaultMaxParams when <= 0
	MaxRows     int                    // Row tuples allowed in one insert, unlimited when <= 0

	// StrictIdentifiers rejects header names that are not plain identifiers
	// before the transaction starts.
	StrictIdentifiers bool
	// Quote, when set, is applied to the table and column names in the generated insert.
	Quote func(string) string

	Verbose bool           // If true, enables detailed logging.
	Logger  Logger         // Defaults to the standard logger
	OnFlush func(rows int) // Called after each batch is executed, with the batch size

	Config *common.ConversionConfig // Passed to the row provider
}

func (o *ImportOptions) batchSize() int {
	if o == nil || o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

func (o *ImportOptions) maxParams() int {
	if o == nil || o.MaxParams <= 0 {
		return DefaultMaxParams
	}
	return o.MaxParams
}

func (o *ImportOptions) logf(format string, v ...interface{}) {
	if o == nil || !o.Verbose {
		return
	}
	var logger Logger = log.Default()
	if o.Logger != nil {
		logger = o.Logger
	}
	logger.Printf("[ADMITDB] "+format, v...)
}

// ImportError describes why an import failed. Kind is one of the Err* values above;
// Err is the underlying cause and may be nil.
type ImportError struct {
	Kind  error
	File  string
	Table string
	Err   error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Result is the outcome of importing one file into one table.
type Result struct {
	OK      bool
	File    string // Base name of the source file
	Table   string
	Rows    int64 // Rows committed; zero when the import failed
	Batches int   // Batches executed before commit or failure
	Err     error // *ImportError when OK is false
}

// Summary returns a one line message suitable for showing to a user.
func (r Result) Summary() string {
	if r.OK {
		return fmt.Sprintf("Imported %d rows from %s into table %s", r.Rows, r.File, r.Table)
	}
	return fmt.Sprintf("Failed to import %s into table %s: %v", r.File, r.Table, r.Err)
}

// Job names one file to import and its destination table.
type Job struct {
	File  string
	Table string
}

// ImportFile imports the delimited file at path into table using one transaction on db.
// The file's first line names the destination columns. The handle is borrowed: the
// transaction is always committed or rolled back before ImportFile returns, and db is
// not retained. Failures are reported in the Result, never panicked.
func ImportFile(ctx context.Context, db common.Beginner, path, table string, opts *ImportOptions) Result {
	res := Result{File: filepath.Base(path), Table: table}
	fail := func(kind, err error) Result {
		res.Err = &ImportError{Kind: kind, File: res.File, Table: table, Err: err}
		opts.logf("Import of %s into %s failed: %v", res.File, table, res.Err)
		return res
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail(ErrFileNotFound, err)
	}
	if info.IsDir() {
		return fail(ErrFileNotFound, fmt.Errorf("%s is a directory", path))
	}

	driverName, err := DriverForPath(path)
	if err != nil {
		driverName = "csv" // any other extension is read as plain delimited text
	}

	inputFile, err := os.Open(path)
	if err != nil {
		return fail(ErrFileNotFound, err)
	}
	defer inputFile.Close()

	var config *common.ConversionConfig
	if opts != nil {
		config = opts.Config
	}
	provider, err := Open(driverName, inputFile, config)
	if err != nil {
		if errors.Is(err, common.ErrNoHeader) {
			return fail(ErrEmptyFile, err)
		}
		return fail(ErrReadFailure, err)
	}
	defer provider.Close()

	res = ImportTable(ctx, db, provider, table, opts)
	res.File = filepath.Base(path)
	var ie *ImportError
	if errors.As(res.Err, &ie) {
		ie.File = res.File
	}
	return res
}

// ImportAsync runs ImportFile on its own goroutine and delivers the Result on the
// returned channel, which is closed afterwards.
func ImportAsync(ctx context.Context, db common.Beginner, path, table string, opts *ImportOptions) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- ImportFile(ctx, db, path, table, opts)
	}()
	return ch
}

// ImportAll imports each job in order, each in its own transaction.
// A failed job does not stop the ones after it.
func ImportAll(ctx context.Context, db common.Beginner, jobs []Job, opts *ImportOptions) []Result {
	results := make([]Result, 0, len(jobs))
	for _, job := range jobs {
		res := ImportFile(ctx, db, job.File, job.Table, opts)
		opts.logf("%s", res.Summary())
		results = append(results, res)
	}
	return results
}

// flushError marks an error returned by a batch execution so it can be told apart
// from provider errors after ScanRows returns.
type flushError struct{ err error }

func (e *flushError) Error() string { return e.err.Error() }
func (e *flushError) Unwrap() error { return e.err }

// ImportTable streams the provider's rows into table inside a single transaction.
// Rows are buffered and written BatchSize at a time with a multi-row insert; any
// provider or write error rolls back every batch written so far.
func ImportTable(ctx context.Context, db common.Beginner, provider common.RowProvider, table string, opts *ImportOptions) Result {
	res := Result{Table: table}
	fail := func(kind, err error) Result {
		res.Rows = 0
		res.Err = &ImportError{Kind: kind, Table: table, Err: err}
		return res
	}

	headers := provider.Headers()
	if len(headers) == 0 {
		return fail(ErrEmptyFile, common.ErrNoHeader)
	}
	if opts != nil && opts.StrictIdentifiers {
		if err := common.ValidateIdentifiers(headers); err != nil {
			return fail(ErrInvalidColumn, err)
		}
	}

	columns, target := headers, table
	if opts != nil && opts.Quote != nil {
		columns = common.QuoteIdentifiers(headers, opts.Quote)
		target = opts.Quote(table)
	}

	width := len(columns)
	maxRows := opts.maxParams() / width
	if maxRows < 1 {
		return fail(ErrWriteFailure, fmt.Errorf("%d columns exceed the limit of %d bind parameters", width, opts.maxParams()))
	}
	if opts != nil && opts.MaxRows > 0 && maxRows > opts.MaxRows {
		maxRows = opts.MaxRows
	}
	var placeholder common.PlaceholderFunc
	if opts != nil {
		placeholder = opts.Placeholder
	}

	// Statements are cached by row count; nearly every flush uses the full batch size.
	stmts := make(map[int]string)
	stmtFor := func(rows int) (string, error) {
		if s, ok := stmts[rows]; ok {
			return s, nil
		}
		s, err := common.GenBatchInsertStmt(target, columns, rows, placeholder)
		if err != nil {
			return "", err
		}
		stmts[rows] = s
		return s, nil
	}
	if _, err := stmtFor(1); err != nil {
		return fail(ErrWriteFailure, fmt.Errorf("failed to generate insert statement for table %s: %w", table, err))
	}

	opts.logf("Importing into %s with columns %v", table, headers)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fail(ErrWriteFailure, fmt.Errorf("failed to begin transaction: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				opts.logf("Rollback for table %s returned: %v", table, rbErr)
			}
		}
	}()

	batchSize := opts.batchSize()
	batch := make([]interface{}, 0, batchSize*width)
	pending := 0
	var rowCount int64

	flush := func() error {
		if pending == 0 {
			return nil
		}
		args := batch
		for remaining := pending; remaining > 0; {
			n := remaining
			if n > maxRows {
				n = maxRows
			}
			stmt, err := stmtFor(n)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, stmt, args[:n*width]...); err != nil {
				return fmt.Errorf("failed to insert batch %d into table %s: %w", res.Batches+1, table, err)
			}
			args = args[n*width:]
			remaining -= n
		}

		rowCount += int64(pending)
		res.Batches++
		if opts != nil && opts.OnFlush != nil {
			opts.OnFlush(pending)
		}
		opts.logf("Flushed batch %d (%d rows) into %s", res.Batches, pending, table)

		clear(batch)
		batch = batch[:0]
		pending = 0
		return nil
	}

	err = provider.ScanRows(ctx, func(row []interface{}) error {
		batch = append(batch, row...)
		pending++
		if pending >= batchSize {
			if err := flush(); err != nil {
				return &flushError{err: err}
			}
		}
		return nil
	})
	if err != nil {
		var fe *flushError
		if errors.As(err, &fe) {
			return fail(ErrWriteFailure, fe.err)
		}
		return fail(ErrReadFailure, err)
	}

	if err := flush(); err != nil {
		return fail(ErrWriteFailure, err)
	}

	if err := tx.Commit(); err != nil {
		return fail(ErrWriteFailure, fmt.Errorf("failed to commit transaction for table %s: %w", table, err))
	}
	committed = true

	res.OK = true
	res.Rows = rowCount
	opts.logf("Finished table %s, total rows: %d", table, rowCount)
	return res
}
