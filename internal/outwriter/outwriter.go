// Package outwriter renders engine results as tables, CSV, JSON, parquet or XLSX.
package outwriter

import (
	"fmt"
	"io"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// output describes how one result renders in every output mode.
// A nil parquet writer means the result has no parquet form.
type output struct {
	what    string
	text    func(io.Writer) error
	csv     func() sheet
	json    func() any
	parquet func(io.Writer) error
	xlsx    func() []sheet // defaults to the csv sheet
}

// writeOutput dispatches on the configured output mode.
func writeOutput(cfg *contract.Config, out output) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, out.json())
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVSheet(w, out.csv())
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if out.parquet == nil {
			return fmt.Errorf("parquet output is not supported for %s; use json, csv or xlsx", out.what)
		}
		if err := writeWithFile(cfg.OutputFile, out.parquet, "Wrote parquet"); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
	case schema.XLSXOut:
		sheets := []sheet{out.csv()}
		if out.xlsx != nil {
			sheets = out.xlsx()
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeXLSX(w, sheets)
		}, "Wrote XLSX"); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, out.text, "Wrote table")
	}
	return nil
}
