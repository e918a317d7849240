package domain

import "time"

// TranscriptEntry is one utterance in a meeting transcript.
// The pipeline consumes entries as an opaque ordered sequence and assumes
// nothing beyond the speaker and text fields.
type TranscriptEntry struct {
	// Speaker is the participant who spoke.
	Speaker string `json:"speaker"`

	// Text is what was said.
	Text string `json:"text"`

	// Timestamp is when the utterance occurred, when the provider reports it.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Transcript is one meeting's ordered utterances plus provider metadata.
type Transcript struct {
	// ID is the provider's transcript identifier.
	ID string `json:"id"`

	// Title is the meeting title, when the provider reports one.
	Title string `json:"title,omitempty"`

	// Date is the meeting date.
	Date time.Time `json:"date"`

	// Entries is the ordered utterance sequence.
	Entries []TranscriptEntry `json:"entries"`
}

// Text renders the transcript as "Speaker: text" lines for model consumption.
func (t *Transcript) Text() string {
	var b []byte
	for _, e := range t.Entries {
		b = append(b, e.Speaker...)
		b = append(b, ':', ' ')
		b = append(b, e.Text...)
		b = append(b, '\n')
	}
	return string(b)
}

// MeetingNotes is a generated summary of one meeting, persisted alongside
// the raw transcript.
type MeetingNotes struct {
	// TranscriptID links the notes to their source transcript.
	TranscriptID string `json:"transcript_id"`

	// Summary is the generated meeting summary text.
	Summary string `json:"summary"`

	// GeneratedAt is when the summary was produced.
	GeneratedAt time.Time `json:"generated_at"`
}
