package records

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"tccretro/internal/services"
)

// Encodings accepted by LoadOptions.Encoding.
const (
	EncodingAuto     = "auto"
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// LoadOptions controls CSV decoding.
type LoadOptions struct {
	Encoding    string
	DateLayouts []string
}

// Dataset is the structured result of reading one export file.
type Dataset struct {
	Source  string
	Records []Record
	// SkippedRows counts blank rows dropped during ingestion.
	SkippedRows int
}

type column int

const (
	colDate column = iota
	colTask
	colProject
	colMode
	colRoutine
	colRoutineID
	colEstimated
	colActual
	colStart
	colEnd
)

var headerAliases = map[string]column{
	"タイムライン日付":   colDate,
	"日付":         colDate,
	"date":       colDate,
	"タスク名":       colTask,
	"task":       colTask,
	"task_name":  colTask,
	"プロジェクト名":    colProject,
	"project":    colProject,
	"モード名":       colMode,
	"mode":       colMode,
	"ルーチン名":      colRoutine,
	"routine":    colRoutine,
	"ルーチンid":     colRoutineID,
	"routine_id": colRoutineID,
	"見積時間":       colEstimated,
	"estimated":  colEstimated,
	"実績時間":       colActual,
	"actual":     colActual,
	"開始日時":       colStart,
	"start":      colStart,
	"終了日時":       colEnd,
	"end":        colEnd,
}

// LoadFile reads a TaskChute Cloud CSV export from path.
func LoadFile(path string, opts LoadOptions) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "open csv", path, err)
	}
	defer file.Close()

	ds, err := Load(file, opts)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	return ds, nil
}

// Load decodes a CSV export. Unknown columns are ignored; the timeline date and
// actual duration columns are required.
func Load(r io.Reader, opts LoadOptions) (*Dataset, error) {
	decoded, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	layouts := opts.DateLayouts
	if len(layouts) == 0 {
		layouts = []string{DateLayout, "2006/01/02", "2006/1/2"}
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, services.Wrap(services.ErrValidation, "ingest", "read header", "empty csv", nil)
		}
		return nil, services.Wrap(services.ErrValidation, "ingest", "read header", "", err)
	}
	index := mapHeader(header)
	for _, required := range []column{colDate, colActual} {
		if _, ok := index[required]; !ok {
			return nil, services.Wrap(services.ErrValidation, "ingest", "read header",
				fmt.Sprintf("missing required column %s", requiredName(required)), nil)
		}
	}

	ds := &Dataset{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "ingest", "read row", "", err)
		}
		if blankRow(row) {
			ds.SkippedRows++
			continue
		}
		line, _ := reader.FieldPos(0)
		rec, err := buildRecord(row, index, layouts)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "ingest", "parse row", fmt.Sprintf("line %d", line), err)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case EncodingShiftJIS:
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	case EncodingUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	case "", EncodingAuto:
	default:
		return nil, services.Wrap(services.ErrValidation, "ingest", "decode", fmt.Sprintf("unsupported encoding %q", encoding), nil)
	}

	// Exports saved through spreadsheet tools are often Shift_JIS; sniff the
	// head and fall back when it is not valid UTF-8.
	buffered := bufio.NewReaderSize(r, 64*1024)
	head, err := buffered.Peek(64 * 1024)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, services.Wrap(services.ErrValidation, "ingest", "decode", "", err)
	}
	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) || validUTF8Prefix(head) {
		return transform.NewReader(buffered, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}
	return transform.NewReader(buffered, japanese.ShiftJIS.NewDecoder()), nil
}

// validUTF8Prefix tolerates a multi-byte rune cut at the peek boundary.
func validUTF8Prefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

func mapHeader(header []string) map[column]int {
	index := make(map[column]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		col, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	return index
}

func requiredName(c column) string {
	switch c {
	case colDate:
		return "タイムライン日付"
	case colActual:
		return "実績時間"
	default:
		return fmt.Sprintf("#%d", c)
	}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func buildRecord(row []string, index map[column]int, layouts []string) (Record, error) {
	cell := func(c column) string {
		i, ok := index[c]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	rec := Record{
		TaskName:  cell(colTask),
		Project:   cell(colProject),
		Mode:      cell(colMode),
		Routine:   cell(colRoutine),
		RoutineID: cell(colRoutineID),
		Estimated: cell(colEstimated),
		Actual:    cell(colActual),
		Start:     cell(colStart),
		End:       cell(colEnd),
	}
	if raw := cell(colDate); raw != "" {
		date, err := ParseDate(raw, layouts)
		if err != nil {
			return Record{}, err
		}
		rec.Date = date
	}
	return rec, nil
}

// ParseDate parses a timeline date cell using the first matching layout. A
// trailing time component ("2025-11-03 09:00:00") is ignored.
func ParseDate(raw string, layouts []string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if i := strings.IndexAny(value, " T"); i > 0 {
		value = value[:i]
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return CivilDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
