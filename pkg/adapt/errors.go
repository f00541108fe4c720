package adapt

// EnrichmentUnavailableError marks an enrichment attempt that failed, timed
// out, or returned an unusable payload. It never escapes the policy; the
// fallback table answers instead.
type EnrichmentUnavailableError struct {
	Reason string
	Err    error
}

func (e EnrichmentUnavailableError) Error() string {
	msg := "enrichment unavailable"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e EnrichmentUnavailableError) Unwrap() error { return e.Err }
