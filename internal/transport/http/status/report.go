package statushttp

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"tradepulse/internal/logger"
)

// handleReport renders the equity curve as a standalone HTML page.
func (s *Server) handleReport(c *gin.Context) {
	points, err := s.store.ListEquity(c.Request.Context(), defaultEquityLimit)
	if err != nil {
		c.String(http.StatusInternalServerError, "loading equity history failed: %v", err)
		return
	}

	xAxis := make([]string, 0, len(points))
	totals := make([]opts.LineData, 0, len(points))
	balances := make([]opts.LineData, 0, len(points))
	for _, pt := range points {
		xAxis = append(xAxis, pt.Timestamp.Format(time.DateTime))
		totals = append(totals, opts.LineData{Value: pt.TotalValue})
		balances = append(balances, opts.LineData{Value: pt.BalanceUSD})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "tradepulse equity",
			Width:     "1100px",
			Height:    "520px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Equity curve",
			Subtitle: "book value per cycle",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
	)
	line.SetXAxis(xAxis).
		AddSeries("total value", totals, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})).
		AddSeries("cash balance", balances, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := line.Render(c.Writer); err != nil {
		logger.Warnf("report: rendering equity chart failed: %v", err)
	}
}
