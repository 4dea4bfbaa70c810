package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	rfqdomain "smartrfq/internal/rfq/domain"
	rfqdto "smartrfq/internal/rfq/dto"
	"smartrfq/pkg/apierr"
)

// csvColumns maps accepted header spellings to part fields.
var csvColumns = map[string]string{
	"name":           "name",
	"part name":      "name",
	"description":    "name",
	"part_number":    "part_number",
	"part number":    "part_number",
	"pn":             "part_number",
	"quantity":       "quantity",
	"qty":            "quantity",
	"unit":           "unit",
	"material":       "material",
	"surface_finish": "surface_finish",
	"surface finish": "surface_finish",
	"finish":         "surface_finish",
	"process":        "process",
	"delivery_time":  "delivery_time",
	"delivery time":  "delivery_time",
	"tolerance":      "tolerance",
	"drawing_number": "drawing_number",
	"drawing number": "drawing_number",
	"remarks":        "remarks",
	"notes":          "remarks",
}

type csvRow struct {
	line int
	part rfqdomain.Part
}

// parseCSV reads a parts list. The header row names the columns; name and
// quantity are required. Rows that fail to parse or validate are returned
// as row errors.
func parseCSV(r io.Reader) ([]csvRow, []rfqdto.RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: csv file is empty", apierr.ErrInvalid)
		}
		return nil, nil, fmt.Errorf("%w: %v", apierr.ErrInvalid, err)
	}

	index := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := csvColumns[key]; ok {
			if _, dup := index[field]; !dup {
				index[field] = i
			}
		}
	}
	for _, required := range []string{"name", "quantity"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("%w: csv header must include a %s column", apierr.ErrInvalid, required)
		}
	}

	var (
		rows    []csvRow
		rowErrs []rfqdto.RowError
	)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, rfqdto.RowError{Row: line, Error: err.Error()})
			continue
		}
		if blank(record) {
			continue
		}

		get := func(field string) string {
			i, ok := index[field]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		qty, err := strconv.Atoi(get("quantity"))
		if err != nil {
			rowErrs = append(rowErrs, rfqdto.RowError{Row: line, Error: fmt.Sprintf("invalid quantity %q", get("quantity"))})
			continue
		}
		part := rfqdomain.Part{
			Name:          get("name"),
			PartNumber:    get("part_number"),
			Quantity:      qty,
			Unit:          get("unit"),
			Material:      get("material"),
			SurfaceFinish: get("surface_finish"),
			Process:       get("process"),
			DeliveryTime:  get("delivery_time"),
			Tolerance:     get("tolerance"),
			DrawingNumber: get("drawing_number"),
			Remarks:       get("remarks"),
		}
		if part.Unit == "" {
			part.Unit = "pcs"
		}
		if err := part.Validate(); err != nil {
			rowErrs = append(rowErrs, rfqdto.RowError{Row: line, Error: err.Error()})
			continue
		}
		rows = append(rows, csvRow{line: line, part: part})
	}
	return rows, rowErrs, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
