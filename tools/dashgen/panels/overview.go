package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// UpStat shows whether job is being scraped.
func UpStat(title, job string) *stat.PanelBuilder {
	return single(title,
		fmt.Sprintf("Scrape status of the %s job (1 = up, 0 = down)", job),
		StatWidth, StatHeight,
		fmt.Sprintf(`up{job=%q}`, job),
	).
		Thresholds(levels("red", level{1, "green"})).
		ColorMode(common.BigValueColorModeBackground).
		TextMode(common.BigValueTextModeValue)
}

// SessionLogins counts logins over the last day.
func SessionLogins() *stat.PanelBuilder {
	return single("Logins (24h)",
		"Session transitions into the authenticated state in the last 24 hours",
		StatWidth, StatHeight,
		`sum(increase(shc_session_transitions_total{state="authenticated"}[24h]))`,
	).
		Thresholds(levels("green")).
		GraphMode(common.BigValueGraphModeArea)
}

// UptimeStat shows how long the fake catalog server has been running.
func UptimeStat() *stat.PanelBuilder {
	return single("Mock Server Uptime", "Time since the fake catalog server started",
		StatWidth, StatHeight,
		fmt.Sprintf(`time() - process_start_time_seconds{job=%q}`, MockJob),
	).
		Unit("s").
		Thresholds(levels("green"))
}
