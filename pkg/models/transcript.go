package models

// TranscriptSection is one contiguous block of speech by a single speaker.
type TranscriptSection struct {
	SpeakerName string `json:"speaker_name"`
	SpeakerRole string `json:"speaker_role"`
	Session     string `json:"session"` // "prepared_remarks" or "qa"
	Text        string `json:"text"`
}

// Transcript is a structured earnings-call transcript for one fiscal period.
type Transcript struct {
	Ticker        string              `json:"ticker"`
	FiscalYear    int                 `json:"fiscal_year"`
	FiscalQuarter int                 `json:"fiscal_quarter"`
	Sections      []TranscriptSection `json:"sections"`
	RawText       string              `json:"raw_text"`
}
