package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/db"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/minutes"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Address represents a validated meeting address.
type Address struct {
	ByID  bool
	ID    string
	Siri  string // normalized
	Jenis string // "" matches any jenis
}

// ValidateAddress validates addressing parameters and returns a normalized Address.
// Rules:
// - Must specify exactly one addressing mode: id OR siri (optionally narrowed by jenis)
// - If id provided with siri or jenis → ErrAmbiguousAddressing
// - If neither id nor siri provided → ErrInvalidRequest
func ValidateAddress(id, siri, jenis string) (*Address, error) {
	id = strings.TrimSpace(id)
	siri = strings.TrimSpace(siri)
	jenis = strings.TrimSpace(jenis)

	hasID := id != ""
	hasSiri := siri != ""

	if hasID && (hasSiri || jenis != "") {
		return nil, errors.NewAmbiguousAddressing()
	}
	if !hasID && !hasSiri {
		return nil, errors.NewInvalidRequest("must specify either id or siri")
	}

	if hasID {
		return &Address{ByID: true, ID: id}, nil
	}

	jenisNorm, err := validateJenis(jenis)
	if err != nil {
		return nil, err
	}
	return &Address{
		Siri:  minutes.Normalize(siri),
		Jenis: jenisNorm,
	}, nil
}

// validateJenis accepts "", "agm" or "exco" in any case. Unlike
// minutes.NormalizeJenis it rejects other values, since a typo in a filter
// should not silently select AGM meetings.
func validateJenis(jenis string) (string, error) {
	j := strings.ToLower(strings.TrimSpace(jenis))
	switch j {
	case "", minutes.JenisAGM, minutes.JenisExco:
		return j, nil
	}
	return "", errors.NewInvalidRequest("jenis must be one of: agm, exco")
}

// resolveMeeting loads the meeting an Address points at.
func resolveMeeting(ctx context.Context, database *sql.DB, addr *Address, includeDeleted bool) (*minutes.Meeting, error) {
	if addr.ByID {
		return db.GetByID(ctx, database, addr.ID, includeDeleted)
	}
	return db.GetBySiri(ctx, database, addr.Siri, addr.Jenis, includeDeleted)
}

// HeaderPatch carries optional header edits (nil = don't change).
type HeaderPatch struct {
	Title  *string
	Siri   *string
	Tarikh *string
	Masa   *string
	Tempat *string
	Jenis  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p HeaderPatch) IsEmpty() bool {
	return p.Title == nil && p.Siri == nil && p.Tarikh == nil &&
		p.Masa == nil && p.Tempat == nil && p.Jenis == nil
}

// apply writes the set fields into h. Jenis must be agm or exco.
func (p HeaderPatch) apply(h *minutes.Header) error {
	if p.Jenis != nil {
		j, err := validateJenis(*p.Jenis)
		if err != nil {
			return err
		}
		if j == "" {
			j = minutes.JenisAGM
		}
		h.Jenis = j
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&h.Title, p.Title)
	set(&h.Siri, p.Siri)
	set(&h.Tarikh, p.Tarikh)
	set(&h.Masa, p.Masa)
	set(&h.Tempat, p.Tempat)
	return nil
}

// checkSize enforces cfg.RecordMaxBytes on the serialized record.
func checkSize(cfg *config.Config, rec minutes.Record) error {
	if cfg == nil || cfg.RecordMaxBytes <= 0 {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.NewInternal(err)
	}
	if len(data) > cfg.RecordMaxBytes {
		return errors.NewRecordTooLarge(cfg.RecordMaxBytes, len(data))
	}
	return nil
}

// insertMeeting assigns an id and timestamps, then stores rec.
func insertMeeting(ctx context.Context, database *sql.DB, cfg *config.Config, rec minutes.Record, source string, previousID *string) (*minutes.Meeting, error) {
	rec.Complete()
	if err := checkSize(cfg, rec); err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	m := &minutes.Meeting{
		ID:         id,
		Record:     rec,
		Source:     source,
		PreviousID: previousID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Insert(ctx, database, m); err != nil {
		return nil, err
	}
	return m, nil
}

// StoreOutput identifies a newly stored meeting.
type StoreOutput struct {
	ID    string `json:"id"`
	Siri  string `json:"siri"`
	Jenis string `json:"jenis"`
}

func storeOutput(m *minutes.Meeting) *StoreOutput {
	return &StoreOutput{ID: m.ID, Siri: m.Siri, Jenis: m.Jenis}
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
