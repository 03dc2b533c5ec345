// Package panels builds the panels of the SHC Overview dashboard. Every panel
// is one of three shapes: a rate trend, a percentage trend colored by
// warning levels, or a single-value stat. The shapes fix the styling, so the
// per-row files carry only titles and PromQL.
package panels

import (
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/cog"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// Scrape job names.
const (
	ClientJob = "shc"
	MockJob   = "shc-mock-server"
)

// Grid sizes on the 24-column dashboard. Rows of three trends use ThirdWidth.
const (
	StatWidth  = 6
	StatHeight = 4

	TSWidth    = 12
	ThirdWidth = 8
	TSHeight   = 8

	FullWidth = 24
)

// DSRef points panels at the ${datasource} template variable.
func DSRef() dashboard.DataSourceRef {
	return dashboard.DataSourceRef{
		Type: cog.ToPtr("prometheus"),
		Uid:  cog.ToPtr("${datasource}"),
	}
}

// PromQuery builds one Prometheus target.
func PromQuery(expr, legendFormat, refID string) *prometheus.DataqueryBuilder {
	return prometheus.NewDataqueryBuilder().
		Expr(expr).
		LegendFormat(legendFormat).
		RefId(refID)
}

// Quantile builds a histogram_quantile expression over the _bucket series
// of histogram for job, grouped by the extra labels in by.
func Quantile(q float64, histogram, job string, by ...string) string {
	group := strings.Join(append([]string{"le"}, by...), ", ")
	return fmt.Sprintf(`histogram_quantile(%g, sum(rate(%s_bucket{job=%q}[5m])) by (%s))`, q, histogram, job, group)
}

// rateBy sums the 5m per-second rate of counter, grouped by labels.
func rateBy(counter, selector string, by ...string) string {
	expr := fmt.Sprintf("sum(rate(%s%s[5m]))", counter, selector)
	if len(by) > 0 {
		expr += " by (" + strings.Join(by, ", ") + ")"
	}
	return expr
}

func perMinute(expr string) string {
	return expr + " * 60"
}

// percentOf expresses the recording rule num as a share of den.
func percentOf(num, den string) string {
	return fmt.Sprintf("%s / %s * 100", num, den)
}

// query is one PromQL expression and its legend.
type query struct {
	expr   string
	legend string
}

// level is a threshold step: color applies at and above at.
type level struct {
	at    float64
	color string
}

// levels builds absolute thresholds starting at base.
func levels(base string, steps ...level) cog.Builder[dashboard.ThresholdsConfig] {
	ts := []dashboard.Threshold{{Color: base}}
	for _, s := range steps {
		ts = append(ts, dashboard.Threshold{Value: cog.ToPtr(s.at), Color: s.color})
	}
	return dashboard.NewThresholdsConfigBuilder().
		Mode(dashboard.ThresholdsModeAbsolute).
		Steps(ts)
}

// warnAt is green below warn, yellow from warn and red from crit.
func warnAt(warn, crit float64) cog.Builder[dashboard.ThresholdsConfig] {
	return levels("green", level{warn, "yellow"}, level{crit, "red"})
}

func byThreshold() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(dashboard.FieldColorModeIdThresholds)
}

func byPalette() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(dashboard.FieldColorModeIdPaletteClassic)
}

func refID(i int) string {
	return string(rune('A' + i))
}

func baseTrend(title, description string, width int, qs ...query) *timeseries.PanelBuilder {
	b := timeseries.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(width).
		FillOpacity(10).
		LineWidth(2).
		DrawStyle(common.GraphDrawStyleLine)
	for i, q := range qs {
		b.WithTarget(PromQuery(q.expr, q.legend, refID(i)))
	}
	return b
}

// trend is a multi-series rate panel with a table legend and a shared
// tooltip sorted high to low.
func trend(title, description string, width int, qs ...query) *timeseries.PanelBuilder {
	return baseTrend(title, description, width, qs...).
		Legend(common.NewVizLegendOptionsBuilder().
			DisplayMode(common.LegendDisplayModeTable).
			Placement(common.LegendPlacementBottom).
			Calcs([]string{"mean", "max"})).
		Tooltip(common.NewVizTooltipOptionsBuilder().
			Mode(common.TooltipDisplayModeMulti).
			Sort(common.SortOrderDescending)).
		Thresholds(levels("green")).
		ColorScheme(byPalette())
}

// percentTrend is a single-series percentage panel that turns yellow at
// warn and red at crit.
func percentTrend(title, description string, width int, q query, warn, crit float64) *timeseries.PanelBuilder {
	return baseTrend(title, description, width, q).
		Unit("percent").
		Thresholds(warnAt(warn, crit)).
		ColorScheme(byThreshold())
}

// single is a one-value stat panel with no sparkline.
func single(title, description string, width, height int, expr string) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(height).
		Span(width).
		WithTarget(PromQuery(expr, "", "A")).
		ColorScheme(byThreshold()).
		GraphMode(common.BigValueGraphModeNone)
}
