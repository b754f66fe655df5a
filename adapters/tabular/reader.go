package tabular

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"enefviz/domain/survey"
	"enefviz/internal/errors"
	"enefviz/ports"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Options controls how a file is turned into a table
type Options struct {
	// Delimiter separates CSV fields; zero means ','
	Delimiter rune
	// DropIndexColumn removes the first column, the unnamed row index
	// that dataframe exports leave behind
	DropIndexColumn bool
	// Sheet selects the XLSX sheet; empty means the first one
	Sheet string
}

// DataReader handles reading CSV and Excel files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	opts     Options
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, opts Options) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &DataReader{filePath: filePath, fileType: fileType, opts: opts}
}

// Opener builds readers sharing one delimiter
func Opener(delimiter rune) ports.TableOpener {
	return func(path string, dropIndex bool) ports.TableSource {
		return NewDataReader(path, Options{Delimiter: delimiter, DropIndexColumn: dropIndex})
	}
}

// Path returns the file the reader loads
func (r *DataReader) Path() string {
	return r.filePath
}

// ReadTable reads the whole file into a table of string cells
func (r *DataReader) ReadTable() (*survey.Table, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var (
		headers []string
		rows    [][]string
		err     error
	)
	switch r.fileType {
	case "csv":
		headers, rows, err = r.readCSVRecords()
	case "xlsx":
		headers, rows, err = r.readExcelRecords()
	default:
		return nil, errors.InvalidInput("unsupported file type: " + r.fileType)
	}
	if err != nil {
		return nil, err
	}

	return r.processRows(headers, rows)
}

// readCSVRecords loads the file as an all-string dataframe
func (r *DataReader) readCSVRecords() ([]string, [][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	readStart := time.Now()
	df, err := readFrame(file, r.opts.Delimiter)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, df.Nrow())

	records := df.Records()
	if len(records) < 2 {
		return nil, nil, errors.InvalidInput("CSV file must have at least a header row and one data row")
	}
	return records[0], records[1:], nil
}

func readFrame(in io.Reader, delimiter rune) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(in,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithDelimiter(delimiter),
	)
	if df.Err != nil {
		return df, errors.WithCode(errors.CodeDataFormat, errors.Wrap(df.Err, "failed to read CSV file"))
	}
	return df, nil
}

// readExcelRecords reads the configured sheet, or the first one
func (r *DataReader) readExcelRecords() ([]string, [][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, nil, errors.WithCode(errors.CodeDataFormat, errors.Wrap(err, "failed to open Excel file"))
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, errors.InvalidInput("Excel file has no sheets")
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, errors.WithCode(errors.CodeDataFormat, errors.Wrapf(err, "failed to read sheet %s", sheet))
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, nil, errors.InvalidInput("Excel file must have at least a header row and one data row")
	}
	return rows[0], rows[1:], nil
}

// processRows converts raw string rows into a table, dropping the index
// column when asked to
func (r *DataReader) processRows(headerRow []string, rows [][]string) (*survey.Table, error) {
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	cells := make([][]survey.Value, len(rows))
	for i, row := range rows {
		values := make([]survey.Value, len(row))
		for j, cell := range row {
			values[j] = survey.ParseCell(cell)
		}
		cells[i] = values
	}
	table := survey.NewTable(headers, cells)

	if r.opts.DropIndexColumn {
		if len(headers) < 2 {
			return nil, errors.InvalidInput("file has no columns besides the index column")
		}
		if !looksLikeIndexHeader(headers[0]) {
			log.Printf("[DataReader] Dropping first column %q as index column", headers[0])
		}
		var err error
		table, err = table.DropColumnAt(0)
		if err != nil {
			return nil, err
		}
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows, %d absent cells)",
		strings.ToUpper(r.fileType), len(table.Columns), table.Len(), table.CountAbsent())

	return table, nil
}

// looksLikeIndexHeader matches the header names dataframe libraries give an
// unnamed index column once re-read
func looksLikeIndexHeader(header string) bool {
	return header == "" || header == "X0" || strings.HasPrefix(header, "Unnamed")
}
