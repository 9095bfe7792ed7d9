package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrInputNotFound は入力ファイルが存在しない
	ErrInputNotFound = errors.New("input file not found")
	// ErrInvalidFormat は入力ファイルのヘッダーが不正
	ErrInvalidFormat = errors.New("invalid input format")
	// ErrNotReady は入力がまだ採点可能な状態になっていない
	ErrNotReady = errors.New("input is not ready for grading")
	// ErrNoRecords は採点対象の行が 1 件もない
	ErrNoRecords = errors.New("no repository URLs found")
)

// ReadyStatus は採点可能な行の Status 列の値
const ReadyStatus = "ready"

const (
	columnID      = "ID"
	columnDate    = "Date"
	columnSubject = "Subject"
	columnURL     = "URL"
	columnStatus  = "Status"
)

// Record は入力ファイルの 1 行（提出 1 件）
type Record struct {
	ID      string `json:"id,omitempty"`
	Date    string `json:"date,omitempty"`
	Subject string `json:"subject,omitempty"`
	URL     string `json:"url"`
	// Row はヘッダーを 1 行目としたときの行番号
	Row int `json:"row"`
}

// ReadRecords は CSV ファイルから提出の一覧を読み込む
// URL 列は必須。Status 列がある場合はすべての行が ready でなければならない
func ReadRecords(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return readRecords(file)
}

func readRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidFormat)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	columns := indexColumns(header)
	urlCol, ok := columns[strings.ToLower(columnURL)]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q column", ErrInvalidFormat, columnURL)
	}
	statusCol, hasStatus := columns[strings.ToLower(columnStatus)]

	var records []Record
	row := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidFormat, row, err)
		}

		url := cell(fields, urlCol)
		if url == "" {
			continue
		}

		if hasStatus {
			if status := cell(fields, statusCol); !strings.EqualFold(status, ReadyStatus) {
				return nil, fmt.Errorf("%w: row %d has status %q", ErrNotReady, row, status)
			}
		}

		records = append(records, Record{
			ID:      cellByName(fields, columns, columnID),
			Date:    cellByName(fields, columns, columnDate),
			Subject: cellByName(fields, columns, columnSubject),
			URL:     url,
			Row:     row,
		})
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	return records, nil
}

// URLs はレコードの URL を入力順に返す
func URLs(records []Record) []string {
	urls := make([]string, len(records))
	for i, r := range records {
		urls[i] = r.URL
	}
	return urls
}

// indexColumns は小文字化した列名から列番号への対応を作る
func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	return columns
}

func cell(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func cellByName(fields []string, columns map[string]int, name string) string {
	i, ok := columns[strings.ToLower(name)]
	if !ok {
		return ""
	}
	return cell(fields, i)
}
