package models

import "time"

// WarmRun records one pass of the catalog warmer.
type WarmRun struct {
	ID         string    `json:"id" badgerhold:"key" msgpack:"id"`
	StartedAt  time.Time `json:"started_at" badgerholdIndex:"StartedAt" msgpack:"s"`
	FinishedAt time.Time `json:"finished_at" msgpack:"f"`
	Fetched    int       `json:"fetched" msgpack:"ok"`
	Failed     int       `json:"failed" msgpack:"ko"`
}

// Duration is how long the run took.
func (r WarmRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
