// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "host"

type metrics struct {
	txsExecuted      prometheus.Counter
	txsRejected      prometheus.Counter
	receiptsExecuted prometheus.Counter
	receiptsFailed   prometheus.Counter
	refunds          prometheus.Counter
	contractPanics   prometheus.Counter
	views            prometheus.Counter
	gasUsed          prometheus.Counter
	executeLatency   prometheus.Histogram
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		txsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_executed",
			Help:      "number of transactions executed",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_rejected",
			Help:      "number of transactions rejected before execution",
		}),
		receiptsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_executed",
			Help:      "number of receipts executed",
		}),
		receiptsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_failed",
			Help:      "number of receipts rolled back",
		}),
		refunds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds",
			Help:      "number of refund receipts issued for failed receipts",
		}),
		contractPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_panics",
			Help:      "number of contract invocations that panicked",
		}),
		views: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views",
			Help:      "number of view calls served",
		}),
		gasUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gas_used",
			Help:      "gas burned by receipts",
		}),
		executeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execute_seconds",
			Help:      "time spent executing a transaction and its receipts",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsExecuted),
		r.Register(m.txsRejected),
		r.Register(m.receiptsExecuted),
		r.Register(m.receiptsFailed),
		r.Register(m.refunds),
		r.Register(m.contractPanics),
		r.Register(m.views),
		r.Register(m.gasUsed),
		r.Register(m.executeLatency),
	)
	return m, errs.Err
}
