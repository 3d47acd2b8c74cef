package domain

import "time"

// DownloadState is the state of a single download attempt.
type DownloadState string

const (
	DownloadIdle       DownloadState = "idle"
	DownloadRequesting DownloadState = "requesting"
	DownloadSucceeded  DownloadState = "succeeded"
	DownloadFailed     DownloadState = "failed"
)

// DownloadResult describes a raster successfully written to disk.
type DownloadResult struct {
	Path     string        `json:"path"`
	Bytes    int           `json:"bytes"`
	Box      BoundingBox   `json:"box"`
	Duration time.Duration `json:"duration"`
}

// SizeKB returns the file size in kilobytes.
func (r DownloadResult) SizeKB() float64 {
	return float64(r.Bytes) / 1024
}

// DownloadEvent is published once per attempt when it reaches a terminal state.
type DownloadEvent struct {
	SessionID  string        `json:"session_id,omitempty"`
	State      DownloadState `json:"state"`
	Box        BoundingBox   `json:"box"`
	Path       string        `json:"path,omitempty"`
	Bytes      int           `json:"bytes,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	At         time.Time     `json:"at"`
}
