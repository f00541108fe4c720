package audio

// CaptureUnavailableError is returned when the input device cannot be
// acquired. No partial metrics are produced; the caller retries Start or
// aborts the stage attempt.
type CaptureUnavailableError struct {
	Reason string
}

func (e CaptureUnavailableError) Error() string {
	if e.Reason == "" {
		return "audio capture unavailable"
	}
	return "audio capture unavailable: " + e.Reason
}
