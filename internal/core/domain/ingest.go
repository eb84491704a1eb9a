package domain

import "fmt"

// Batch status messages reported to callers.
const (
	// MessageSuccess is reported when no document in the batch failed.
	MessageSuccess = "Success"

	// MessagePartialSuccess is reported when at least one document
	// failed but the batch as a whole was accepted.
	MessagePartialSuccess = "Partial Success"
)

// IngestOutcome classifies what happened to a single document.
type IngestOutcome string

const (
	// OutcomeIngested means the document was embedded and registered.
	OutcomeIngested IngestOutcome = "ingested"

	// OutcomeInvalid means the document failed field validation.
	OutcomeInvalid IngestOutcome = "invalid"

	// OutcomeDuplicateIgnored means the document's id was already
	// accepted earlier in the same batch. Not an error.
	OutcomeDuplicateIgnored IngestOutcome = "duplicate_ignored"

	// OutcomeFailed means embedding or registration failed, or the id
	// collides with a document ingested in a prior batch.
	OutcomeFailed IngestOutcome = "failed"
)

// DocumentResult records the outcome for one document in a batch.
type DocumentResult struct {
	ID      string        `json:"id"`
	Outcome IngestOutcome `json:"outcome"`
	Reason  string        `json:"reason,omitempty"`
}

// IngestReport is the batch-level accounting for one ingestion call.
// TotalDocs is always partitioned exactly by the three counters:
// TotalDocs == Ingested + Failed + DuplicatesIgnored.
type IngestReport struct {
	// Message is "Success" when Failed == 0, else "Partial Success".
	Message string `json:"message"`

	// TotalDocs is the number of documents received in the batch.
	TotalDocs int `json:"total_docs"`

	// Ingested counts documents embedded and registered.
	Ingested int `json:"ingestion_success"`

	// Failed counts validation, embedding, registration, and
	// cross-batch duplicate failures.
	Failed int `json:"ingestion_failed"`

	// DuplicatesIgnored counts intra-batch duplicate ids.
	DuplicatesIgnored int `json:"duplicate_ignored"`

	// IngestionTime is the formatted wall-clock time for the batch.
	IngestionTime string `json:"ingestion_time"`

	// Results holds the per-document outcomes, in input order.
	Results []DocumentResult `json:"results,omitempty"`
}

// Balanced reports whether the counters partition TotalDocs exactly.
func (r IngestReport) Balanced() bool {
	return r.TotalDocs == r.Ingested+r.Failed+r.DuplicatesIgnored
}

// FormatDuration renders an elapsed time the way the service reports
// it: whole milliseconds below one second, otherwise seconds to three
// decimal places.
func FormatDuration(seconds float64) string {
	if seconds < 1.0 {
		return fmt.Sprintf("%d ms", int(seconds*1000))
	}
	return fmt.Sprintf("%.3f s", seconds)
}
