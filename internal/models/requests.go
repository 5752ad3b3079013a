package models

// OnRequest is the POST body for /api/on.
type OnRequest struct {
	DurationMs uint32 `json:"duration_ms"`
}

// AmplitudeRequest is the POST body for /api/amplitude. Amplitude is an int
// so out-of-range values can be reported instead of failing to decode.
type AmplitudeRequest struct {
	Amplitude int `json:"amplitude"`
}

// PerformRequest is the POST body for /api/perform.
type PerformRequest struct {
	Catalog  string `json:"catalog"` // "1.0", "1.1" or "1.2"; empty means the latest
	Effect   int    `json:"effect"`
	Strength string `json:"strength"` // "light", "medium" or "strong"
}

// PerformResponse reports how long a predefined effect will play.
type PerformResponse struct {
	DurationMs int64 `json:"duration_ms"`
}
