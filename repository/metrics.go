package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// droppedIDBatches counts single-id batches lost after exhausting the
// adaptive split. A non-zero rate means rows are silently missing from
// aggregations and the datastore deserves a look.
var droppedIDBatches = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "analytics_dropped_id_batches_total",
		Help: "Number of un-splittable single-id fetch batches dropped",
	},
)
