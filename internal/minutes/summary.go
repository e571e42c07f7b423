package minutes

// MeetingSummary represents a meeting's metadata without the record body.
// Used for browse operations (list, web index) to reduce data transfer.
type MeetingSummary struct {
	// ID is a ULID that uniquely identifies this meeting
	ID string `json:"id"`

	// Siri is the serial as shown in the header
	Siri string `json:"siri"`

	// Title is the header title
	Title string `json:"title"`

	// Jenis is "agm" or "exco"
	Jenis string `json:"jenis"`

	// Tarikh is the header date string
	Tarikh string `json:"tarikh"`

	// Source indicates how the row was created
	Source string `json:"source"`

	// PreviousID links a carried-forward draft to its source meeting
	PreviousID *string `json:"previous_id,omitempty"`

	// MattersArising is the number of carried-forward items
	MattersArising int `json:"matters_arising"`

	// CreatedAt is the Unix timestamp when the meeting was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp when the meeting was last updated
	UpdatedAt int64 `json:"updated_at"`

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// ToSummary converts a Meeting to a MeetingSummary by dropping the record body.
func (m *Meeting) ToSummary() MeetingSummary {
	return MeetingSummary{
		ID:             m.ID,
		Siri:           m.Siri,
		Title:          m.Title,
		Jenis:          m.Jenis,
		Tarikh:         m.Tarikh,
		Source:         m.Source,
		PreviousID:     m.PreviousID,
		MattersArising: len(m.Record.MattersArising),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		DeletedAt:      m.DeletedAt,
	}
}
