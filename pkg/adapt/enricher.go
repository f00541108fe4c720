package adapt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dhvanilabs/sadhana/pkg/fusion"
)

// Request is the payload handed to an enricher.
type Request struct {
	Snapshot fusion.Snapshot `json:"snapshot"`
	Observed Observed        `json:"observed"`
}

// Enricher produces a model-backed decision for a context snapshot. It is
// strictly optional: callers treat any error as a signal to use the rule
// tables instead.
type Enricher interface {
	Enrich(ctx context.Context, req Request) (Decision, error)
}

type enrichmentResponse struct {
	TempoBPM          *int     `json:"tempo_bpm"`
	GuidanceIntensity Guidance `json:"guidance_intensity"`
	KeyCenter         string   `json:"key_center"`
	Reason            string   `json:"reason"`
}

// HTTPEnricher calls an external reasoning service over JSON and validates
// the returned decision against the arrangement constraints before trusting
// it.
type HTTPEnricher struct {
	url    string
	model  string
	client *http.Client
}

func NewHTTPEnricher(url, model string) *HTTPEnricher {
	return &HTTPEnricher{url: url, model: model, client: &http.Client{}}
}

func (e *HTTPEnricher) Enrich(ctx context.Context, req Request) (Decision, error) {
	body, err := json.Marshal(struct {
		Model string `json:"model"`
		Request
	}{Model: e.model, Request: req})
	if err != nil {
		return Decision{}, EnrichmentUnavailableError{Reason: "encoding request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return Decision{}, EnrichmentUnavailableError{Reason: "building request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return Decision{}, EnrichmentUnavailableError{Reason: "calling enrichment service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Decision{}, EnrichmentUnavailableError{Reason: fmt.Sprintf("enrichment service returned %d", resp.StatusCode)}
	}

	var parsed enrichmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Decision{}, EnrichmentUnavailableError{Reason: "decoding response", Err: err}
	}
	return decisionFromEnrichment(parsed)
}

// decisionFromEnrichment validates the enrichment payload. Out-of-bound
// tempo, unknown guidance, or an unsupported key center rejects the whole
// payload rather than patching individual fields.
func decisionFromEnrichment(parsed enrichmentResponse) (Decision, error) {
	if parsed.TempoBPM == nil {
		return Decision{}, EnrichmentUnavailableError{Reason: "response missing tempo_bpm"}
	}
	tempo := *parsed.TempoBPM
	if tempo < 48 || tempo > 128 {
		return Decision{}, EnrichmentUnavailableError{Reason: fmt.Sprintf("tempo %d out of range", tempo)}
	}
	if !parsed.GuidanceIntensity.Valid() {
		return Decision{}, EnrichmentUnavailableError{Reason: "unknown guidance intensity " + string(parsed.GuidanceIntensity)}
	}
	if !ValidKeyCenter(parsed.KeyCenter) {
		return Decision{}, EnrichmentUnavailableError{Reason: "unsupported key center " + parsed.KeyCenter}
	}
	if parsed.Reason == "" {
		return Decision{}, EnrichmentUnavailableError{Reason: "response missing reason"}
	}

	guidance := parsed.GuidanceIntensity
	return Decision{
		TempoBPM:          tempo,
		KeyCenter:         parsed.KeyCenter,
		Guidance:          guidance,
		GuidanceIntensity: guidance.Intensity(),
		Rationale:         []string{parsed.Reason},
		Reason:            parsed.Reason,
		Source:            SourceModel,
		Arrangement:       arrangementFor(tempo, guidance),
		CoachActions:      coachActionsFor(guidance),
	}, nil
}
