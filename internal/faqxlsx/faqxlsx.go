// Package faqxlsx converts FAQ rows to and from xlsx spreadsheets.
package faqxlsx

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/replydesk/replydesk/internal/bot"
)

const sheetName = "Sheet1"

var header = []any{"id", "question", "answer", "parent_id"}

// Row is one imported FAQ tuple. The id column is ignored on import.
type Row struct {
	Question string
	Answer   string
	ParentID *int64
}

// Export renders the FAQ set as an xlsx workbook. Top-level questions are
// written before sub-questions so a re-import can resolve parent references
// in row order.
func Export(faqs []bot.FAQ) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	ordered := make([]bot.FAQ, 0, len(faqs))
	for _, faq := range faqs {
		if faq.ParentID == nil {
			ordered = append(ordered, faq)
		}
	}
	for _, faq := range faqs {
		if faq.ParentID != nil {
			ordered = append(ordered, faq)
		}
	}
	for i, faq := range ordered {
		parent := ""
		if faq.ParentID != nil {
			parent = strconv.FormatInt(*faq.ParentID, 10)
		}
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{faq.ID, faq.Question, faq.Answer, parent}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Import parses an xlsx workbook produced by Export (or shaped like it) into
// FAQ tuples. Columns are located by header name; blank question rows are
// skipped.
func Import(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook is empty")
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var out []Row
	for i, raw := range rows[1:] {
		question := cell(raw, cols["question"])
		answer := cell(raw, cols["answer"])
		if question == "" {
			continue
		}
		row := Row{Question: question, Answer: answer}
		if parent := cell(raw, cols["parent_id"]); parent != "" {
			id, err := strconv.ParseInt(parent, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad parent_id %q", i+2, parent)
			}
			row.ParentID = &id
		}
		out = append(out, row)
	}
	return out, nil
}

func headerIndex(headerRow []string) (map[string]int, error) {
	cols := map[string]int{"parent_id": -1}
	for i, name := range headerRow {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"question", "answer"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
