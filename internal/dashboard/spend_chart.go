package dashboard

import (
	"fmt"
	"time"

	"tenderbook-backend/internal/auth"
	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"

	"github.com/gofiber/fiber/v2"
)

type SpendChartPoint struct {
	Label          string `json:"label"` // date / week start / month start
	Labor          string `json:"labor"`
	Material       string `json:"material"`
	Activity       string `json:"activity"`
	VendorPayments string `json:"vendor_payments"`
	MfsCharges     string `json:"mfs_charges"`
	Total          string `json:"total"`
}

type SpendChartGrandTotals struct {
	Labor          string `json:"labor"`
	Material       string `json:"material"`
	Activity       string `json:"activity"`
	VendorPayments string `json:"vendor_payments"`
	MfsCharges     string `json:"mfs_charges"`
	Total          string `json:"total"`
}

type SpendChartResponse struct {
	TenderID    uint                  `json:"tender_id"`
	Period      string                `json:"period"` // daily | weekly | monthly
	From        string                `json:"from"`
	To          string                `json:"to"`
	Points      []SpendChartPoint     `json:"points"`
	GrandTotals SpendChartGrandTotals `json:"grand_totals"`
}

// tender id from context (staff via JWT, admin via ?tender_id=1)
func getTenderIDFromContext(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Could not read role")
	}

	if role == models.RoleStaff {
		tenderIDVal := c.Locals(auth.CtxTenderIDKey)
		tenderIDPtr, ok := tenderIDVal.(*uint)
		if !ok || tenderIDPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "No tender assigned")
		}
		return *tenderIDPtr, nil
	}

	// admin
	tidStr := c.Query("tender_id")
	if tidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "tender_id is required")
	}
	var tid uint
	if _, err := fmt.Sscan(tidStr, &tid); err != nil || tid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "tender_id is invalid")
	}
	return tid, nil
}

// GET /api/dashboard/spend-chart?period=daily&count=7&tender_id=1
func SpendChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := getTenderIDFromContext(c)
		if err != nil {
			return err
		}

		period := c.Query("period", "daily") // daily | weekly | monthly
		countStr := c.Query("count", "")

		var count int
		if countStr == "" {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				period = "daily"
				count = 7
			}
		} else {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "count is invalid")
			}
		}

		now := time.Now()
		loc := now.Location()
		// today at 00:00
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		var start time.Time

		switch period {
		case "weekly":
			days := 7 * (count - 1)
			start = end.AddDate(0, 0, -days)
		case "monthly":
			end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			start = end.AddDate(0, -(count - 1), 0)
			end = start.AddDate(0, count, 0).AddDate(0, 0, -1)
		default:
			period = "daily"
			start = end.AddDate(0, 0, -(count - 1))
		}

		var trunc string
		switch period {
		case "weekly":
			trunc = "date_trunc('week', date)::date"
		case "monthly":
			trunc = "date_trunc('month', date)::date"
		default:
			trunc = "date::date"
		}

		// one UNION over every spend table, tagged by source
		sql := fmt.Sprintf(`
			SELECT bucket, source, SUM(total) AS total FROM (
				SELECT %[1]s AS bucket, 'labor' AS source, total_amount AS total
				FROM labor_entries
				WHERE tender_id = @tid AND date >= @from AND date <= @to
				UNION ALL
				SELECT %[1]s, 'material', total_amount
				FROM material_purchases
				WHERE tender_id = @tid AND date >= @from AND date <= @to
				UNION ALL
				SELECT %[1]s, CASE WHEN record_kind = 'mfs_charge' THEN 'mfs_charge' ELSE 'activity' END, amount
				FROM activity_expenses
				WHERE tender_id = @tid AND date >= @from AND date <= @to
				UNION ALL
				SELECT %[1]s, 'vendor_payment', amount
				FROM vendor_payments
				WHERE tender_id = @tid AND date >= @from AND date <= @to
			) spend
			GROUP BY bucket, source
			ORDER BY bucket ASC;
		`, trunc)

		type row struct {
			Bucket time.Time `gorm:"column:bucket"`
			Source string    `gorm:"column:source"`
			Total  int64     `gorm:"column:total"`
		}
		var rows []row

		if err := database.DB.Raw(sql,
			map[string]any{"tid": tenderID, "from": start, "to": end}).
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not aggregate spending")
		}

		type bucketAgg struct {
			Bucket        time.Time
			Labor         int64
			Material      int64
			Activity      int64
			VendorPayment int64
			MfsCharge     int64
		}

		buckets := make(map[time.Time]*bucketAgg)
		for _, r := range rows {
			agg, ok := buckets[r.Bucket]
			if !ok {
				agg = &bucketAgg{Bucket: r.Bucket}
				buckets[r.Bucket] = agg
			}

			switch r.Source {
			case "labor":
				agg.Labor += r.Total
			case "material":
				agg.Material += r.Total
			case "activity":
				agg.Activity += r.Total
			case "vendor_payment":
				agg.VendorPayment += r.Total
			case "mfs_charge":
				agg.MfsCharge += r.Total
			}
		}

		ordered := make([]bucketAgg, 0, len(buckets))
		for _, v := range buckets {
			ordered = append(ordered, *v)
		}
		for i := 0; i < len(ordered); i++ {
			for j := i + 1; j < len(ordered); j++ {
				if ordered[j].Bucket.Before(ordered[i].Bucket) {
					ordered[i], ordered[j] = ordered[j], ordered[i]
				}
			}
		}

		points := make([]SpendChartPoint, 0, len(ordered))
		var gLabor, gMaterial, gActivity, gVendor, gMfs int64

		for _, b := range ordered {
			total := b.Labor + b.Material + b.Activity + b.VendorPayment + b.MfsCharge
			points = append(points, SpendChartPoint{
				Label:          b.Bucket.Format("2006-01-02"),
				Labor:          money.Format(b.Labor),
				Material:       money.Format(b.Material),
				Activity:       money.Format(b.Activity),
				VendorPayments: money.Format(b.VendorPayment),
				MfsCharges:     money.Format(b.MfsCharge),
				Total:          money.Format(total),
			})

			gLabor += b.Labor
			gMaterial += b.Material
			gActivity += b.Activity
			gVendor += b.VendorPayment
			gMfs += b.MfsCharge
		}

		return c.JSON(SpendChartResponse{
			TenderID: tenderID,
			Period:   period,
			From:     start.Format("2006-01-02"),
			To:       end.Format("2006-01-02"),
			Points:   points,
			GrandTotals: SpendChartGrandTotals{
				Labor:          money.Format(gLabor),
				Material:       money.Format(gMaterial),
				Activity:       money.Format(gActivity),
				VendorPayments: money.Format(gVendor),
				MfsCharges:     money.Format(gMfs),
				Total:          money.Format(gLabor + gMaterial + gActivity + gVendor + gMfs),
			},
		})
	}
}
