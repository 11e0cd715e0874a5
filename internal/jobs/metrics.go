// SPDX-License-Identifier: MIT

package jobs

import (
	"time"

	"github.com/ManuGH/livegrab/internal/metrics"
)

// promRecorder forwards to the process-wide Prometheus collectors.
type promRecorder struct{}

func (promRecorder) RecordChannelsConfigured(n int)  { metrics.RecordChannelsConfigured(n) }
func (promRecorder) RecordChannelsResolved(n int)    { metrics.RecordChannelsResolved(n) }
func (promRecorder) IncSourceResolved()              { metrics.IncSourceResolved() }
func (promRecorder) IncSourceSkipped(reason string)  { metrics.IncSourceSkipped(reason) }
func (promRecorder) IncMetadataMissing(field string) { metrics.IncMetadataMissing(field) }
func (promRecorder) RecordProgrammes(n int)          { metrics.RecordProgrammes(n) }
func (promRecorder) IncRefreshFailure(stage string)  { metrics.IncRefreshFailure(stage) }
func (promRecorder) RecordRefresh(finished time.Time, took time.Duration) {
	metrics.RecordRefresh(finished, took)
}
