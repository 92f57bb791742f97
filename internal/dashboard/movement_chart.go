package dashboard

import (
	"time"

	"laptop-inventory-backend/internal/inventory"
	"laptop-inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MovementChartPoint struct {
	Label   string `json:"label"` // day, week start or month start
	Entries int    `json:"entries"`
	Exits   int    `json:"exits"`
	Net     int    `json:"net"`
}

type MovementChartTotals struct {
	Entries int `json:"entries"`
	Exits   int `json:"exits"`
	Net     int `json:"net"`
}

type MovementChartResponse struct {
	ModelID     string               `json:"model_id,omitempty"`
	Period      string               `json:"period"` // daily | weekly | monthly
	From        string               `json:"from"`
	To          string               `json:"to"`
	Points      []MovementChartPoint `json:"points"`
	GrandTotals MovementChartTotals  `json:"grand_totals"`
}

// MovementSource lists ledger rows; *inventory.Service satisfies it.
type MovementSource interface {
	Movements(f inventory.MovementFilter) []models.StockMovement
}

func defaultCount(period string) (string, int) {
	switch period {
	case "weekly":
		return period, 8
	case "monthly":
		return period, 12
	default:
		return "daily", 7
	}
}

// bucketStart truncates t to the start of its day, ISO week (Monday) or month.
func bucketStart(period string, t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch period {
	case "weekly":
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case "monthly":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

func nextBucket(period string, t time.Time) time.Time {
	switch period {
	case "weekly":
		return t.AddDate(0, 0, 7)
	case "monthly":
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// BuildMovementChart counts entry and exit units per bucket for the last count
// buckets ending at now. Empty buckets are included.
func BuildMovementChart(movs []models.StockMovement, period string, count int, now time.Time) MovementChartResponse {
	end := bucketStart(period, now)
	start := end
	for i := 1; i < count; i++ {
		switch period {
		case "weekly":
			start = start.AddDate(0, 0, -7)
		case "monthly":
			start = start.AddDate(0, -1, 0)
		default:
			start = start.AddDate(0, 0, -1)
		}
	}
	limit := nextBucket(period, end)

	index := make(map[time.Time]int, count)
	points := make([]MovementChartPoint, 0, count)
	for b := start; b.Before(limit); b = nextBucket(period, b) {
		index[b] = len(points)
		points = append(points, MovementChartPoint{Label: b.Format("2006-01-02")})
	}

	grand := MovementChartTotals{}
	for _, m := range movs {
		d := m.Date.In(now.Location())
		if d.Before(start) || !d.Before(limit) {
			continue
		}
		i, ok := index[bucketStart(period, d)]
		if !ok {
			continue
		}
		switch m.Type {
		case models.MovementEntry:
			points[i].Entries += m.Quantity
			grand.Entries += m.Quantity
		case models.MovementExit:
			points[i].Exits += m.Quantity
			grand.Exits += m.Quantity
		}
	}
	for i := range points {
		points[i].Net = points[i].Entries - points[i].Exits
	}
	grand.Net = grand.Entries - grand.Exits

	return MovementChartResponse{
		Period:      period,
		From:        start.Format("2006-01-02"),
		To:          limit.AddDate(0, 0, -1).Format("2006-01-02"),
		Points:      points,
		GrandTotals: grand,
	}
}

// GET /api/stock/movements/chart?period=daily&count=7&model_id=lm-001
func MovementChartHandler(src MovementSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period, count := defaultCount(c.Query("period", "daily"))
		if c.Query("count") != "" {
			count = c.QueryInt("count", 0)
			if count <= 0 || count > 366 {
				return fiber.NewError(fiber.StatusBadRequest, "count must be between 1 and 366")
			}
		}

		modelID := c.Query("model_id")
		resp := BuildMovementChart(src.Movements(inventory.MovementFilter{ModelID: modelID}), period, count, time.Now())
		resp.ModelID = modelID
		return c.JSON(resp)
	}
}
