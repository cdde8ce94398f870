package reports

import (
	"io"

	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName        = "Sheet1"
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ExcelExporter interface {
	GetCellValues() []interface{}
}

func (r StockSummaryReportResponse) GetCellValues() []interface{} {
	return []interface{}{r.ProductName, r.VariantInfo, r.QtyIn, r.QtyOut, r.Projected, r.CachedQuantity, r.Drift}
}

func (r StockMovementReportRow) GetCellValues() []interface{} {
	return []interface{}{
		r.ID,
		r.ProductName,
		r.VariantInfo,
		utils.DereferencePtr(r.WarehouseName, ""),
		utils.DereferencePtr(r.ShelfName, ""),
		string(r.MovementType),
		string(r.Reason),
		r.Quantity,
		r.MovementDate.Format("2006-01-02 15:04:05"),
	}
}

var (
	StockSummaryHeadings  = []string{"Product", "Variant", "Qty In", "Qty Out", "Projected", "Cached", "Drift"}
	StockMovementHeadings = []string{"ID", "Product", "Variant", "Warehouse", "Shelf", "Type", "Reason", "Quantity", "Date"}
)

// writeExcel renders one header row plus one row per record and streams the workbook to w.
func writeExcel(w io.Writer, headings []string, data []ExcelExporter) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	rowNo := 2
	for _, d := range data {
		for i, value := range d.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
		rowNo++
	}

	return f.Write(w)
}

func WriteStockSummaryExcel(w io.Writer, rows []*StockSummaryReportResponse) error {
	data := make([]ExcelExporter, 0, len(rows))
	for _, r := range rows {
		data = append(data, *r)
	}
	return writeExcel(w, StockSummaryHeadings, data)
}

func WriteStockMovementsExcel(w io.Writer, rows []*StockMovementReportRow) error {
	data := make([]ExcelExporter, 0, len(rows))
	for _, r := range rows {
		data = append(data, *r)
	}
	return writeExcel(w, StockMovementHeadings, data)
}
