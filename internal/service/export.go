package service

import (
	"context"
	"fmt"

	"pos-service/internal/sales"

	"github.com/xuri/excelize/v2"
)

const (
	salesSheet       = "Ventas"
	topProductsSheet = "Top Productos"
	exportTimeLayout = "2006-01-02 15:04"
)

// Export renders the filtered order history and product ranking as an XLSX workbook.
// Unlike Load, a failed read fails the export.
func (s *DashboardService) Export(ctx context.Context, filter sales.StoreFilter) ([]byte, error) {
	orders, err := s.orders.ListCompletedOrders(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.ListCompletedItems(ctx)
	if err != nil {
		return nil, err
	}
	summary := sales.Summarize(orders, items, filter)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSalesSheet(f, summary); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(topProductsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeTopProductsSheet(f, summary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSalesSheet(f *excelize.File, summary sales.Summary) error {
	rows := [][]any{{"Ticket", "Fecha", "Local", "Total", "Estado"}}
	for _, o := range summary.Orders {
		rows = append(rows, []any{
			o.ID,
			o.CreatedAt.Format(exportTimeLayout),
			o.StoreID.Name(),
			o.Total.InexactFloat64(),
			string(o.Status),
		})
	}
	rows = append(rows,
		[]any{},
		[]any{"Local", summary.Store},
		[]any{"Tickets", summary.TicketCount},
		[]any{"Ventas totales", summary.TotalRevenue.InexactFloat64()},
	)
	return writeRows(f, salesSheet, rows)
}

func writeTopProductsSheet(f *excelize.File, summary sales.Summary) error {
	rows := [][]any{{"Producto", "Cantidad"}}
	for _, p := range summary.TopProducts {
		rows = append(rows, []any{p.Name, p.Count})
	}
	return writeRows(f, topProductsSheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
