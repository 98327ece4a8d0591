package excel

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/darianmavgo/admitdb/converters"
	"github.com/darianmavgo/admitdb/converters/common"

	"github.com/xuri/excelize/v2"
)

func init() {
	converters.Register("excel", &excelDriver{})
}

type excelDriver struct{}

func (d *excelDriver) Open(source io.Reader, config *common.ConversionConfig) (common.RowProvider, error) {
	return NewExcelConverter(source)
}

// ExcelConverter reads the first worksheet of a workbook.
// The first row is the header; cells are read as their formatted text and
// follow the same NULL and padding rules as CSV fields.
type ExcelConverter struct {
	headers []string
	sheet   string
	file    *excelize.File
}

// Ensure ExcelConverter implements RowProvider
var _ common.RowProvider = (*ExcelConverter)(nil)

// NewExcelConverter creates a new ExcelConverter from an io.Reader
func NewExcelConverter(r io.Reader) (*ExcelConverter, error) {
	// Open Excel stream
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel stream: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("no sheets found in Excel file: %w", common.ErrNoHeader)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get rows iterator for sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var headers []string
	if rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to read header row for sheet %s: %w", sheet, err)
		}
		headers = trimHeaders(cols)
	}
	if len(headers) == 0 {
		f.Close()
		return nil, fmt.Errorf("sheet %s has no header row: %w", sheet, common.ErrNoHeader)
	}

	return &ExcelConverter{
		headers: headers,
		sheet:   sheet,
		file:    f,
	}, nil
}

// trimHeaders trims each name and drops trailing empty cells.
func trimHeaders(cols []string) []string {
	end := len(cols)
	for end > 0 && strings.TrimSpace(cols[end-1]) == "" {
		end--
	}
	headers := make([]string, end)
	for i := 0; i < end; i++ {
		headers[i] = strings.TrimSpace(cols[i])
	}
	if end == 0 {
		return nil
	}
	return headers
}

// Headers implements RowProvider
func (e *ExcelConverter) Headers() []string {
	return e.headers
}

// blankRow is what an empty text line splits into.
var blankRow = []string{""}

// ScanRows implements RowProvider. An empty row between data rows is kept
// like a blank CSV line: empty first column, NULL in the rest.
func (e *ExcelConverter) ScanRows(ctx context.Context, yield func([]interface{}) error) error {
	rows, err := e.file.Rows(e.sheet)
	if err != nil {
		return fmt.Errorf("failed to get rows iterator for sheet %s: %w", e.sheet, err)
	}
	defer rows.Close()

	// Skip the header row
	if rows.Next() {
		if _, err := rows.Columns(); err != nil {
			return &common.ReadError{Line: 1, Err: err}
		}
	}

	line := 1
	row := make([]interface{}, len(e.headers))
	for rows.Next() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		cols, err := rows.Columns()
		if err != nil {
			return &common.ReadError{Line: line, Err: err}
		}
		if len(cols) == 0 {
			cols = blankRow
		}

		row = common.AlignRow(cols, len(e.headers), row)
		if err := yield(row); err != nil {
			return err
		}
	}
	if err := rows.Error(); err != nil {
		return &common.ReadError{Line: line, Err: err}
	}
	return nil
}

// Close closes the underlying Excel file
func (e *ExcelConverter) Close() error {
	if e.file != nil {
		return e.file.Close()
	}
	return nil
}
