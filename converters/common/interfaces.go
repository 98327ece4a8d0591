package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
)

// RowProvider defines the interface for providing rows to be inserted into a table
type RowProvider interface {
	// Headers returns the column names parsed from the source header.
	Headers() []string
	// ScanRows iterates over data rows in source order.
	// It calls the yield function for each row; values are string or nil.
	// If yield returns an error, iteration stops and that error is returned.
	ScanRows(ctx context.Context, yield func([]interface{}) error) error
	io.Closer
}

// Driver defines the interface that must be implemented by a converter package.
type Driver interface {
	// Open returns a new RowProvider for the given input.
	Open(io.Reader, *ConversionConfig) (RowProvider, error)
}

// Beginner is the part of a database handle the importer borrows.
// Both *sql.DB and *sql.Conn satisfy it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ErrNoHeader is returned by a driver whose source has no header row.
var ErrNoHeader = errors.New("no header row")

// ReadError marks a failure reading the source after the header was parsed.
type ReadError struct {
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read failed near line %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
