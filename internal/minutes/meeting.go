package minutes

// Source values record how a meeting row was created.
const (
	SourceNew    = "new"    // fresh default record
	SourceStore  = "store"  // full record supplied by the caller
	SourceIngest = "ingest" // carried forward from a previous meeting
)

// Meeting is a stored minutes record plus its bookkeeping columns.
type Meeting struct {
	// ID is a ULID that uniquely identifies this meeting
	ID string

	// Siri is the serial as shown in the header (copied out for lookups)
	Siri string

	// SiriNorm is the normalized serial (lowercased, trimmed, collapsed spaces)
	SiriNorm string

	// Title is the header title at the last write
	Title string

	// Jenis is "agm" or "exco"
	Jenis string

	// Tarikh is the header date string at the last write
	Tarikh string

	// Record is the canonical minutes document (stored as JSON in DB)
	Record Record

	// Source indicates how the row was created (new, store, ingest)
	Source string

	// PreviousID links a carried-forward draft to the meeting it came from (nullable)
	PreviousID *string

	// CreatedAt is the Unix timestamp when the meeting was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the meeting was last updated
	UpdatedAt int64

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64
}

// SyncHeader copies the header columns out of the record.
func (m *Meeting) SyncHeader() {
	m.Record.Complete()
	m.Siri = m.Record.Header.Siri
	m.SiriNorm = Normalize(m.Record.Header.Siri)
	m.Title = m.Record.Header.Title
	m.Jenis = m.Record.Header.Jenis
	m.Tarikh = m.Record.Header.Tarikh
}
