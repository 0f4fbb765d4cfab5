package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/rebeliceyang/lazybrowse/internal/format"
	"github.com/rebeliceyang/lazybrowse/internal/models"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteCSV writes a result grid as CSV. Columns and cells are the ones shown
// in the result table.
func WriteCSV(w io.Writer, result *models.QueryResult) error {
	columns, cells := format.Grid(result)
	if len(columns) == 0 {
		return fmt.Errorf("result has no rows to export")
	}

	writer := csv.NewWriter(w)

	// Write header
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range cells {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteJSON writes the result rows as an indented JSON array
func WriteJSON(w io.Writer, result *models.QueryResult) error {
	rows := []map[string]any{}
	if result != nil && result.Rows != nil {
		rows = result.Rows
	}

	// Marshal to JSON with pretty printing
	data, err := jsonAPI.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows to JSON: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// ExportToCSV exports a result to a CSV file
func ExportToCSV(result *models.QueryResult, path string) error {
	return exportToFile(path, func(w io.Writer) error { return WriteCSV(w, result) })
}

// ExportToJSON exports a result to a JSON file
func ExportToJSON(result *models.QueryResult, path string) error {
	return exportToFile(path, func(w io.Writer) error { return WriteJSON(w, result) })
}

func exportToFile(path string, write func(io.Writer) error) error {
	// Create the file
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := write(file); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	return file.Close()
}
