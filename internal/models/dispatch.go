package models

import "time"

// ContentType is one of the three weighted post categories.
type ContentType string

const (
	ContentTypeA ContentType = "A" // trend-linked
	ContentTypeB ContentType = "B" // standalone
	ContentTypeC ContentType = "C" // promotion
)

// Platform identifiers used as DispatchResult keys.
const (
	PlatformX       = "x"
	PlatformThreads = "threads"
)

// OutcomeStatus classifies one platform's delivery attempt.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeSkipped OutcomeStatus = "skipped" // platform disabled, not attempted
	OutcomeFailed  OutcomeStatus = "failed"
)

// PlatformOutcome is the tagged result of one platform delivery.
type PlatformOutcome struct {
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`  // set when Status == failed
	PostID string        `json:"post_id,omitempty"` // set when Status == success
}

// Classification of a whole firing, derived from the per-platform outcomes.
type Classification string

const (
	FiringSucceeded Classification = "succeeded" // every enabled platform succeeded
	FiringPartial   Classification = "partial"   // some, not all, enabled platforms succeeded
	FiringFailed    Classification = "failed"    // no enabled platform succeeded
	FiringNoop      Classification = "noop"      // no platform was enabled
)

// SlotFiring is one concrete scheduled occurrence, after jitter.
type SlotFiring struct {
	NominalTime time.Time `json:"nominal_time"`
	ActualTime  time.Time `json:"actual_time"`
}

// DispatchResult is the immutable record of one firing attempt.
type DispatchResult struct {
	StartedAt      time.Time                  `json:"started_at"`
	ContentType    ContentType                `json:"content_type"`
	GeneratedText  string                     `json:"generated_text"` // retained even on total failure
	Outcomes       map[string]PlatformOutcome `json:"outcomes"`
	Classification Classification             `json:"classification"`
}

// Classify derives the overall classification from the outcomes map.
func Classify(outcomes map[string]PlatformOutcome) Classification {
	enabled, succeeded := 0, 0
	for _, o := range outcomes {
		if o.Status == OutcomeSkipped {
			continue
		}
		enabled++
		if o.Status == OutcomeSuccess {
			succeeded++
		}
	}
	switch {
	case enabled == 0:
		return FiringNoop
	case succeeded == enabled:
		return FiringSucceeded
	case succeeded > 0:
		return FiringPartial
	default:
		return FiringFailed
	}
}
