package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/stock_backend/models"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"github.com/xuri/excelize/v2"
)

const maxImportRows = 5000

var purchaseImportColumns = []string{
	"supplier_id", "product_id", "variant_id", "batch_number",
	"quantity", "purchase_price", "warehouse_id", "shelf_id",
}

var requiredImportColumns = []string{"supplier_id", "product_id", "quantity", "purchase_price"}

func checkXlsxFilename(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return &models.ValidationError{Field: "file", Message: "invalid file type: only .xlsx files are allowed"}
	}
	return nil
}

// parsePurchaseSheet reads the first sheet of an xlsx upload. Row 1 holds the column
// names; blank rows are skipped.
func parsePurchaseSheet(r io.Reader) ([]*models.NewPurchase, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &models.ValidationError{Field: "file", Message: fmt.Sprintf("failed to open Excel file: %v", err)}
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, &models.ValidationError{Field: "file", Message: fmt.Sprintf("unable to read sheet: %v", err)}
	}
	if len(rows) < 2 {
		return nil, &models.ValidationError{Field: "file", Message: "the sheet has no purchase rows"}
	}
	if len(rows)-1 > maxImportRows {
		return nil, &models.ValidationError{Field: "file", Message: fmt.Sprintf("at most %d rows can be imported at once", maxImportRows)}
	}

	columns := make(map[string]int)
	for i, heading := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(heading))] = i
	}
	for _, name := range requiredImportColumns {
		if _, ok := columns[name]; !ok {
			return nil, &models.ValidationError{Field: "file", Message: fmt.Sprintf("missing column %q", name)}
		}
	}

	inputs := make([]*models.NewPurchase, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if isBlankRow(row) {
			continue
		}
		input, err := purchaseFromRow(cell)
		if err != nil {
			return nil, &models.ValidationError{Field: fmt.Sprintf("row %d", idx+2), Message: err.Error()}
		}
		inputs = append(inputs, input)
	}
	if len(inputs) == 0 {
		return nil, &models.ValidationError{Field: "file", Message: "the sheet has no purchase rows"}
	}
	return inputs, nil
}

func purchaseFromRow(cell func(string) string) (*models.NewPurchase, error) {
	var input models.NewPurchase
	var err error
	if input.SupplierId, err = requiredIntCell(cell, "supplier_id"); err != nil {
		return nil, err
	}
	if input.ProductId, err = requiredIntCell(cell, "product_id"); err != nil {
		return nil, err
	}
	if input.VariantId, err = optionalIntCell(cell, "variant_id"); err != nil {
		return nil, err
	}
	if input.WarehouseId, err = optionalIntCell(cell, "warehouse_id"); err != nil {
		return nil, err
	}
	if input.ShelfId, err = optionalIntCell(cell, "shelf_id"); err != nil {
		return nil, err
	}
	input.BatchNumber = cell("batch_number")

	qty, err := strconv.ParseInt(strings.ReplaceAll(cell("quantity"), ",", ""), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse quantity %q", cell("quantity"))
	}
	input.Quantity = qty

	price, err := utils.ParseDecimal(cell("purchase_price"))
	if err != nil {
		return nil, fmt.Errorf("could not parse purchase_price: %v", err)
	}
	input.PurchasePrice = price
	return &input, nil
}

func requiredIntCell(cell func(string) string, name string) (int, error) {
	v, err := strconv.Atoi(cell(name))
	if err != nil {
		return 0, fmt.Errorf("could not parse %s %q", name, cell(name))
	}
	return v, nil
}

func optionalIntCell(cell func(string) string, name string) (*int, error) {
	if cell(name) == "" {
		return nil, nil
	}
	v, err := requiredIntCell(cell, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
