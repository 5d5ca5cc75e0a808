package dynkv

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

// Operation counters, labeled by operation and outcome. Exposed through the
// default metrics set; embedders can serve them via metrics.WritePrometheus.

// countOp records one completed store operation.
func countOp(op string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	metrics.GetOrCreateCounter(
		fmt.Sprintf(`dynkv_ops_total{op=%q,status=%q}`, op, status),
	).Inc()
}

// countChunkedWrite records one write that needed the chunked layout.
func countChunkedWrite(chunks int) {
	metrics.GetOrCreateCounter(`dynkv_chunked_writes_total`).Inc()
	metrics.GetOrCreateCounter(`dynkv_chunk_slots_written_total`).Add(chunks)
}
