// Package series holds the observation record shared by the macro
// time-series collectors and the store.
package series

import "time"

// Observation is one dated value of a named series. YoYChange is only set
// where the upstream data allows computing a year-over-year figure.
type Observation struct {
	SeriesID  string
	Date      time.Time
	Value     float64
	YoYChange *float64
	Source    string
}
