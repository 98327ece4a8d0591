package csv

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/darianmavgo/admitdb/converters"
	"github.com/darianmavgo/admitdb/converters/common"
)

func init() {
	converters.Register("csv", &csvDriver{})
}

type csvDriver struct{}

func (d *csvDriver) Open(source io.Reader, config *common.ConversionConfig) (common.RowProvider, error) {
	return NewCSVConverterWithConfig(source, config)
}

// CSVConverter streams a comma separated file line by line.
// Fields are split on the delimiter with no quote handling; a quoted value
// containing the delimiter is split like any other text.
type CSVConverter struct {
	headers []string
	reader  *bufio.Reader
	line    int
	comma   rune
}

// Ensure CSVConverter implements RowProvider
var _ common.RowProvider = (*CSVConverter)(nil)

// NewCSVConverter creates a new CSVConverter from an io.Reader.
// ScanRows can only be called once.
func NewCSVConverter(r io.Reader) (*CSVConverter, error) {
	return NewCSVConverterWithConfig(r, nil)
}

// NewCSVConverterWithConfig creates a new CSVConverter from an io.Reader with optional config.
// The header line is read immediately; common.ErrNoHeader is returned if there is none.
func NewCSVConverterWithConfig(r io.Reader, config *common.ConversionConfig) (*CSVConverter, error) {
	c := &CSVConverter{
		reader: bufio.NewReaderSize(r, 65536),
		comma:  config.Comma(),
	}

	header, err := c.readLine()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("CSV file is empty: %w", common.ErrNoHeader)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	c.headers = common.ParseHeader(header, c.comma)
	if len(c.headers) == 0 {
		return nil, fmt.Errorf("CSV header line has no column names: %w", common.ErrNoHeader)
	}
	return c, nil
}

// Headers implements RowProvider
func (c *CSVConverter) Headers() []string {
	return c.headers
}

// ScanRows implements RowProvider. Every line after the header is a row; a
// blank line stores an empty first column and NULL in the rest.
// The slice passed to yield is reused between calls.
func (c *CSVConverter) ScanRows(ctx context.Context, yield func([]interface{}) error) error {
	if c.reader == nil {
		return fmt.Errorf("CSV reader is not initialized")
	}

	row := make([]interface{}, len(c.headers))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.readLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return &common.ReadError{Line: c.line, Err: err}
		}
		row = common.AlignRow(common.SplitLine(line, c.comma), len(c.headers), row)
		if err := yield(row); err != nil {
			return err
		}
	}
}

// Close implements RowProvider. The source reader belongs to the caller.
func (c *CSVConverter) Close() error {
	return nil
}

// readLine returns the next line without its terminator.
// A final line without a trailing newline is still returned.
func (c *CSVConverter) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			err = nil
		} else {
			return "", err
		}
	}
	c.line++
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
