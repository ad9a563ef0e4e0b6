package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/monarchbot/internal/ledger"
	"github.com/example/monarchbot/internal/scanner"
	"github.com/example/monarchbot/pkg/models"
)

// Format of an uploaded goal list
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromName picks the format from a file name, defaulting to xlsx
func FormatFromName(name string) Format {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	TitleColumn       string // Column with the goal title
	CategoryColumn    string // Column with the category (optional, classified from the title when empty)
	DescriptionColumn string // Column with the description
	TargetDateColumn  string // Column with the target date, YYYY-MM-DD
	SheetName         string // Sheet to read; the first sheet when empty
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TitleColumn:       "A",
		CategoryColumn:    "B",
		DescriptionColumn: "C",
		TargetDateColumn:  "D",
		StartRow:          2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// GoalCreator persists imported goals
type GoalCreator interface {
	CreateGoal(ctx context.Context, userID string, draft models.GoalDraft) (*models.Goal, error)
}

// ImportGoals reads goal rows from r and creates the ones not already on the profile.
// Row level problems are reported in the result; only unreadable input is an error.
func ImportGoals(ctx context.Context, r io.Reader, format Format, cfg ImportConfig, p *models.UserProfile, store GoalCreator) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		rows, err = readXLSX(r, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(p.Goals))
	for _, g := range p.Goals {
		titles = append(titles, g.Title)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow || blank(row) {
			continue
		}
		result.TotalProcessed++

		draft, err := parseRow(row, cfg)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if _, dup := ledger.FindDuplicate(draft.Title, titles, ledger.GoalPrefixLen); dup {
			result.Skipped++
			continue
		}
		if _, err := store.CreateGoal(ctx, p.ID, draft); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		titles = append(titles, draft.Title)
		result.Created++
	}
	return result, nil
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

func parseRow(row []string, cfg ImportConfig) (models.GoalDraft, error) {
	d := models.GoalDraft{
		Title:       cell(row, cfg.TitleColumn),
		Description: cell(row, cfg.DescriptionColumn),
	}
	if d.Title == "" {
		return d, errors.New("title cannot be empty")
	}

	category := models.GoalCategory(strings.ToLower(cell(row, cfg.CategoryColumn)))
	if category == "" {
		category = scanner.Classify(d.Title, scanner.DefaultCategories)
	}
	if !category.IsValid() {
		return d, fmt.Errorf("unknown category %q", category)
	}
	d.Category = category

	if raw := cell(row, cfg.TargetDateColumn); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return d, fmt.Errorf("invalid target date %q", raw)
		}
		d.TargetDate = &t
	}
	return d, nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
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
