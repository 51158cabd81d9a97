package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/wordbot/pkg/models"
)

// WordStore is where imported words end up
type WordStore interface {
	ExistsByText(ctx context.Context, text string) (bool, error)
	Create(ctx context.Context, word *models.MasterWord) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath            string // Path to the Excel or CSV file
	WordColumn          string // Column with the word
	DefinitionColumn    string // Column with the definition
	PronunciationColumn string // Column with the pronunciation, optional
	SourceColumn        string // Column with the source, optional
	SheetName           string // Sheet to import, the first sheet when empty
	StartRow            int    // The row to start importing from (1-based index)
	Source              string // Source recorded when the row has none
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:          "A",
		DefinitionColumn:    "B",
		PronunciationColumn: "C",
		SourceColumn:        "D",
		StartRow:            2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

var errBlankRow = errors.New("blank row")

// ImportWords seeds the master list from an Excel or CSV file.
// Blank rows are ignored and words already in the list are skipped.
func ImportWords(ctx context.Context, store WordStore, config ImportConfig) (*ImportResult, error) {
	if config.StartRow < 1 {
		config.StartRow = 1
	}
	if config.Source == "" {
		config.Source = strings.TrimSuffix(filepath.Base(config.FilePath), filepath.Ext(config.FilePath))
	}

	var rows [][]string
	var err error
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		word, err := rowToWord(row, config)
		if errors.Is(err, errBlankRow) {
			continue
		}
		result.TotalProcessed++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}

		exists, err := store.ExistsByText(ctx, word.Text)
		if err != nil {
			return result, fmt.Errorf("failed to check existing word: %w", err)
		}
		if exists {
			result.Skipped++
			continue
		}
		if err := store.Create(ctx, word); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowToWord(row []string, config ImportConfig) (*models.MasterWord, error) {
	word := &models.MasterWord{
		Text:          cleanWord(cell(row, config.WordColumn)),
		Definition:    strings.TrimSpace(cell(row, config.DefinitionColumn)),
		Pronunciation: strings.TrimSpace(cell(row, config.PronunciationColumn)),
		Source:        strings.TrimSpace(cell(row, config.SourceColumn)),
	}
	if word.Text == "" && word.Definition == "" {
		return nil, errBlankRow
	}
	if word.Text == "" {
		return nil, fmt.Errorf("word cannot be empty")
	}
	if word.Definition == "" {
		return nil, fmt.Errorf("definition cannot be empty for %q", word.Text)
	}
	if word.Source == "" {
		word.Source = config.Source
	}
	return word, nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

// cleanWord drops trailing notes in parentheses, "go (went, gone)" becomes "go"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
