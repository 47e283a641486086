package model

import "time"

// PipelineRun is the per-invocation audit record: how many recordings were
// discovered, how many completed all stages, and how many failed partway.
type PipelineRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Discovered int
	Processed  int
	Failed     int
	Skipped    int
}

func NewPipelineRun(id string) *PipelineRun {
	return &PipelineRun{ID: id, StartedAt: time.Now()}
}

func (r *PipelineRun) Finish() {
	r.FinishedAt = time.Now()
}
