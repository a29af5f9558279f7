package report

import (
	"fmt"

	"tenderbook-backend/internal/ledger"
	"tenderbook-backend/internal/money"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/reports/ledger-export/:kind/:id?tender_id=...
// Writes the materialized ledger of one scope to an .xlsx file.
func LedgerExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var kind ledger.ScopeKind
		switch c.Params("kind") {
		case "person":
			kind = ledger.ScopePerson
		case "user":
			kind = ledger.ScopeUser
		case "vendor":
			kind = ledger.ScopeVendor
		default:
			return fiber.NewError(fiber.StatusBadRequest, "kind must be person, user or vendor")
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid scope id")
		}

		scope := ledger.Scope{Kind: kind, TenderID: tenderID, ID: id}
		identity, err := ledger.FetchScopeIdentity(scope)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		advances, err := ledger.FetchAdvances(scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load advances")
		}
		expenses, err := ledger.FetchExpenses(scope)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load expenses")
		}
		charges, err := ledger.FetchMfsCharges(tenderID, identity.Name)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load MFS charges")
		}

		implied := ledger.FindImpliedCharges(advances, charges, identity.Name)
		led := ledger.MaterializeLedger(advances, expenses, charges, implied)

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)

		headers := []string{"Date", "Kind", "Description", "Amount", "Running Balance", "Payment Method", "Reference", "Implied"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		// oldest first reads better on paper
		row := 2
		for i := len(led.Transactions) - 1; i >= 0; i-- {
			tx := led.Transactions[i]
			impliedMark := ""
			if tx.IsImplied {
				impliedMark = "yes"
			}
			values := []any{
				tx.Date.Format("2006-01-02"),
				string(tx.Kind),
				tx.Description,
				money.Format(tx.Amount),
				money.Format(tx.RunningBalance),
				string(tx.PaymentMethod),
				tx.PaymentReference,
				impliedMark,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}

		row++
		totals := [][2]string{
			{"Total Advances", money.Format(led.Stats.TotalAdvances)},
			{"Total Expenses", money.Format(led.Stats.TotalExpenses)},
			{"Total MFS Charges", money.Format(led.Stats.TotalMfsCharges)},
			{"Balance", money.Format(led.Stats.Balance)},
			{"Actual Cost", money.Format(led.Stats.ActualCost)},
		}
		for _, t := range totals {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t[0])
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), t[1])
			row++
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build Excel file")
		}

		filename := fmt.Sprintf("ledger-%s-%d.xlsx", c.Params("kind"), id)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
		return c.Send(buf.Bytes())
	}
}
