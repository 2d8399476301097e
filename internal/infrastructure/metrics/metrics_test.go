package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/iho/textileledger/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegisterer(registry)

	if m.MovementsRecorded == nil || m.HTTPRequests == nil || m.RateLimitHits == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.RateLimitHits.Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestLedgerMetrics(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.MovementRecorded(domain.ItemKindYarn, domain.Inbound, decimal.RequireFromString("12.5"))
	m.MovementRecorded(domain.ItemKindYarn, domain.Inbound, decimal.NewFromInt(3))
	m.MovementRejected(domain.ItemKindRaw, "insufficient_balance")
	m.BalanceReset(domain.ItemKindWarpBeam)
	m.EventPublished(domain.EventTypeTransactionRecorded)

	if got := testutil.ToFloat64(m.MovementsRecorded.WithLabelValues("yarn", "inbound")); got != 2 {
		t.Fatalf("expected 2 recorded movements, got %v", got)
	}
	if got := testutil.ToFloat64(m.MovementsRejected.WithLabelValues("raw", "insufficient_balance")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.BalanceResets.WithLabelValues("warp_beam")); got != 1 {
		t.Fatalf("expected 1 reset, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsPublished.WithLabelValues(domain.EventTypeTransactionRecorded)); got != 1 {
		t.Fatalf("expected 1 published event, got %v", got)
	}
}
