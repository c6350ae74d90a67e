// Package metrics exposes Prometheus collectors for the record store, photo
// decoding and backups. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vistoria"

type Metrics struct {
	registry *prometheus.Registry

	records        prometheus.Gauge
	storeWrites    *prometheus.CounterVec
	photosDecoded  *prometheus.CounterVec
	backupsTotal   *prometheus.CounterVec
	backupRecords  prometheus.Gauge
	pageViewsTotal *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		records: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Inspection records currently in the store.",
		}),
		storeWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Store writes by operation and result.",
		}, []string{"op", "result"}),
		photosDecoded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_decoded_total",
			Help:      "Selected photo files by outcome.",
		}, []string{"result"}),
		backupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Backup exports and imports by result.",
		}, []string{"op", "result"}),
		backupRecords: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backup_last_records",
			Help:      "Records in the most recent export or import.",
		}),
		pageViewsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_views_total",
			Help:      "Terminal UI page switches by page.",
		}, []string{"page"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// StoreLoaded implements store.Recorder.
func (m *Metrics) StoreLoaded(n int) {
	if m == nil {
		return
	}
	m.records.Set(float64(n))
}

// StoreWritten implements store.Recorder.
func (m *Metrics) StoreWritten(op string, n int, err error) {
	if m == nil {
		return
	}
	m.storeWrites.WithLabelValues(op, result(err)).Inc()
	if err == nil {
		m.records.Set(float64(n))
	}
}

// PhotoDecoded implements photo.Recorder.
func (m *Metrics) PhotoDecoded(accepted bool) {
	if m == nil {
		return
	}
	if accepted {
		m.photosDecoded.WithLabelValues("accepted").Inc()
	} else {
		m.photosDecoded.WithLabelValues("rejected").Inc()
	}
}

// BackupExported implements backup.Recorder.
func (m *Metrics) BackupExported(n int) {
	if m == nil {
		return
	}
	m.backupsTotal.WithLabelValues("export", "ok").Inc()
	m.backupRecords.Set(float64(n))
}

// BackupImported implements backup.Recorder.
func (m *Metrics) BackupImported(n int, err error) {
	if m == nil {
		return
	}
	m.backupsTotal.WithLabelValues("import", result(err)).Inc()
	if err == nil {
		m.backupRecords.Set(float64(n))
	}
}

// PageViewed counts a page switch in the terminal UI.
func (m *Metrics) PageViewed(page string) {
	if m == nil {
		return
	}
	m.pageViewsTotal.WithLabelValues(page).Inc()
}
