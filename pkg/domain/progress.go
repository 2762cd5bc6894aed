package domain

import "time"

// ProgressStage marks a step of a collection run
type ProgressStage string

// collection run stages
const (
	StageStarted     ProgressStage = "started"
	StageFetched     ProgressStage = "fetched"
	StageAggregating ProgressStage = "aggregating"
	StageSaved       ProgressStage = "saved"
	StageDone        ProgressStage = "done"
	StageFailed      ProgressStage = "failed"
)

// ProgressEvent is emitted by the collector as a run advances. Source is set
// only on per-source stages, Error only when the stage degraded or failed.
type ProgressEvent struct {
	RunID     string        `json:"run_id"`
	Stage     ProgressStage `json:"stage"`
	Source    Source        `json:"source,omitempty"`
	ItemCount int           `json:"item_count,omitempty"`
	Error     string        `json:"error,omitempty"`
	Time      time.Time     `json:"time"`
}
