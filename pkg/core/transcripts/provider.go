// Package transcripts acquires structured earnings-call transcripts. The
// claim-extraction pipeline downstream treats transcripts as its input;
// this package only covers acquisition.
package transcripts

import (
	"context"

	"execcheck/pkg/models"
)

// Provider fetches a transcript for one issuer-quarter. A nil transcript
// with a nil error means the provider has no transcript for that period.
type Provider interface {
	FetchTranscript(ctx context.Context, ticker string, fiscalYear, fiscalQuarter int) (*models.Transcript, error)
}
