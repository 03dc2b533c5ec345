// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/secondhand-client/tools/dashgen/panels"
)

// BuildOverview constructs the SHC Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("SHC Overview").
		Uid("shc-overview").
		Tags([]string{"shc", "secondhand-client"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.UpStat("Client", panels.ClientJob)).
		WithPanel(panels.UpStat("Mock Server", panels.MockJob)).
		WithPanel(panels.SessionLogins()).
		WithPanel(panels.UptimeStat()))

	// Row 2: Catalog API.
	b.WithRow(dashboard.NewRowBuilder("Catalog API").
		WithPanel(panels.APIRequestRate()).
		WithPanel(panels.APILatency()).
		WithPanel(panels.APIFailureRate()))

	// Row 3: Listing pages.
	b.WithRow(dashboard.NewRowBuilder("Listing Pages").
		WithPanel(panels.FetchRate()).
		WithPanel(panels.SupersededRatio()).
		WithPanel(panels.FetchFailures()))

	// Row 4: Mutations.
	b.WithRow(dashboard.NewRowBuilder("Mutations").
		WithPanel(panels.MutationResults()).
		WithPanel(panels.MutationFailures()))

	// Row 5: Mock server.
	b.WithRow(dashboard.NewRowBuilder("Mock Server").
		WithPanel(panels.MockRequestRate()).
		WithPanel(panels.MockLatency()).
		WithPanel(panels.MockErrorRate()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
