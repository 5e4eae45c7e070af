package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-pricing-service/internal/apperror"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pricing/dto"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var boardHeaders = []string{"Variant", "Sale unit", "Status", "Mode", "Normalized cost", "Margin", "Sale price", "Movement", "Delta", "Previous price", "Previous date"}

// ExportBoard renders the session's full price board, costs included, as an xlsx workbook.
func (uc *pricingUseCase) ExportBoard(ctx context.Context, sessionID string) ([]byte, error) {
	s, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	views, err := uc.ListDailyPrices(ctx, &dto.DailyPriceFilters{SessionID: sessionID, IncludeCosts: true})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Prices " + s.DateKey
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, apperror.Fatal(err, "prepare workbook")
	}

	for i, h := range boardHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for r, v := range views {
		row := []interface{}{
			v.VariantName,
			string(v.SaleUnit),
			string(v.Status),
			string(v.PricingMode),
			decimalCell(v.NormalizedCost),
			v.MarginPct.InexactFloat64(),
			decimalCell(v.SalePrice),
			movementCell(v.Movement),
			decimalCell(v.Delta),
			decimalCell(v.PreviousPrice),
			stringCell(v.PreviousDateKey),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, apperror.Fatal(err, fmt.Sprintf("write row %d", r+2))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperror.Fatal(err, "render workbook")
	}
	return buf.Bytes(), nil
}

func decimalCell(d *decimal.Decimal) interface{} {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}

func movementCell(m *model.Movement) string {
	if m == nil {
		return ""
	}
	return string(*m)
}

func stringCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
