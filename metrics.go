package pubindex

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts loader and listing activity. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	loaded   prometheus.Counter
	skipped  *prometheus.CounterVec
	excluded *prometheus.CounterVec
	builds   prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		loaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubindex_documents_loaded_total",
			Help: "Documents successfully loaded from the content directory.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubindex_documents_skipped_total",
			Help: "Documents skipped while loading, by reason.",
		}, []string{"reason"}),
		excluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubindex_listing_excluded_total",
			Help: "Documents left out of a listing, by reason.",
		}, []string{"reason"}),
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubindex_listing_builds_total",
			Help: "Listings built.",
		}),
	}
	for _, c := range []prometheus.Collector{m.loaded, m.skipped, m.excluded, m.builds} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) documentLoaded() {
	if m == nil {
		return
	}
	m.loaded.Inc()
}

func (m *Metrics) documentSkipped(kind error) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason(kind)).Inc()
}

// ObserveListing records a built listing and its exclusions.
func (m *Metrics) ObserveListing(l *Listing) {
	if m == nil || l == nil {
		return
	}
	m.builds.Inc()
	for _, ex := range l.Excluded() {
		m.excluded.WithLabelValues(reason(ex.Reason)).Inc()
	}
}
