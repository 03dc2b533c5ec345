package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, APIRequestDuration)
	assert.NotNil(t, APIRequestsTotal)
	assert.NotNil(t, FetchesTotal)
	assert.NotNil(t, FetchSupersededTotal)
	assert.NotNil(t, FetchFailuresTotal)
	assert.NotNil(t, MutationsTotal)
	assert.NotNil(t, SessionTransitionsTotal)
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
}

func TestMetricsGathered(t *testing.T) {
	t.Parallel()

	MutationsTotal.WithLabelValues("delete", "applied").Add(0)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["shc_mutations_total"])
}
