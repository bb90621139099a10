package runecache

import "github.com/prometheus/client_golang/prometheus"

// Collector exports the read statistics of a Cache to Prometheus.
type Collector struct {
	cache *Cache

	reads    *prometheus.Desc
	failures *prometheus.Desc
	sectors  *prometheus.Desc
	bytes    *prometheus.Desc
	indices  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for c. The cache directory is attached as
// a constant label so several caches can share a registry.
func NewCollector(c *Cache) *Collector {
	labels := prometheus.Labels{"dir": c.Dir()}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("runecache", "", name), help, nil, labels)
	}
	return &Collector{
		cache:    c,
		reads:    desc("reads_total", "Archive reads that completed successfully."),
		failures: desc("read_failures_total", "Archive reads that returned an error."),
		sectors:  desc("sectors_read_total", "Sectors read from the data store."),
		bytes:    desc("read_bytes_total", "Payload bytes returned by successful reads."),
		indices:  desc("indices", "Indices with a directory file on disk."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.reads
	ch <- c.failures
	ch <- c.sectors
	ch <- c.bytes
	ch <- c.indices
}

// Collect snapshots the cache counters at scrape time.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.cache.GetStats()
	ch <- prometheus.MustNewConstMetric(c.reads, prometheus.CounterValue, float64(st.Reads))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(st.Failures))
	ch <- prometheus.MustNewConstMetric(c.sectors, prometheus.CounterValue, float64(st.SectorsRead))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(st.BytesRead))
	ch <- prometheus.MustNewConstMetric(c.indices, prometheus.GaugeValue, float64(len(c.cache.Indices())))
}
