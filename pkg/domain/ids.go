// Package domain holds the typed identifiers shared across the codebase.
// Each entity gets its own UUID-backed type so the compiler rejects mixing
// a DossierID with a DocumentID.
package domain

import (
	"github.com/google/uuid"

	dErrors "grantflow/pkg/domain-errors"
)

type (
	// DossierID identifies a funding application aggregate.
	DossierID uuid.UUID
	// OrganizationID identifies the applicant organization that owns a dossier.
	OrganizationID uuid.UUID
	// RequiredDocumentID identifies a checklist entry inside a dossier.
	RequiredDocumentID uuid.UUID
	// DocumentID identifies an uploaded document inside a dossier.
	DocumentID uuid.UUID
	// DraftID identifies an externally generated draft attached to a dossier.
	DraftID uuid.UUID
	// UserID identifies the acting user, set by the auth middleware.
	UserID uuid.UUID
)

func (id DossierID) String() string          { return uuid.UUID(id).String() }
func (id OrganizationID) String() string     { return uuid.UUID(id).String() }
func (id RequiredDocumentID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string         { return uuid.UUID(id).String() }
func (id DraftID) String() string            { return uuid.UUID(id).String() }
func (id UserID) String() string             { return uuid.UUID(id).String() }

func (id DossierID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }
func (id OrganizationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsZero() bool         { return uuid.UUID(id) == uuid.Nil }

// The MarshalText/UnmarshalText pairs keep the wire and storage form the
// canonical UUID string rather than the underlying byte array.

func (id DossierID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id OrganizationID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id RequiredDocumentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id DraftID) MarshalText() ([]byte, error)            { return uuid.UUID(id).MarshalText() }
func (id UserID) MarshalText() ([]byte, error)             { return uuid.UUID(id).MarshalText() }

func (id *DossierID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *OrganizationID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RequiredDocumentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DocumentID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DraftID) UnmarshalText(b []byte) error            { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *UserID) UnmarshalText(b []byte) error             { return (*uuid.UUID)(id).UnmarshalText(b) }

// NewDossierID returns a fresh random dossier identifier.
func NewDossierID() DossierID { return DossierID(uuid.New()) }

// NewOrganizationID returns a fresh organization identifier.
func NewOrganizationID() OrganizationID { return OrganizationID(uuid.New()) }

// NewRequiredDocumentID returns a fresh checklist entry identifier.
func NewRequiredDocumentID() RequiredDocumentID { return RequiredDocumentID(uuid.New()) }

// NewDocumentID returns a fresh uploaded document identifier.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewDraftID returns a fresh draft identifier.
func NewDraftID() DraftID { return DraftID(uuid.New()) }

// parseUUID enforces the shared invariant: identifiers must be valid,
// non-empty, non-nil UUIDs. Validated once at the trust boundary.
func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseDossierID parses and validates a dossier id from its string form.
func ParseDossierID(raw string) (DossierID, error) {
	parsed, err := parseUUID(raw)
	return DossierID(parsed), err
}

// ParseOrganizationID parses and validates an organization id.
func ParseOrganizationID(raw string) (OrganizationID, error) {
	parsed, err := parseUUID(raw)
	return OrganizationID(parsed), err
}

// ParseRequiredDocumentID parses and validates a checklist entry id.
func ParseRequiredDocumentID(raw string) (RequiredDocumentID, error) {
	parsed, err := parseUUID(raw)
	return RequiredDocumentID(parsed), err
}

// ParseDocumentID parses and validates an uploaded document id.
func ParseDocumentID(raw string) (DocumentID, error) {
	parsed, err := parseUUID(raw)
	return DocumentID(parsed), err
}

// ParseDraftID parses and validates a draft id.
func ParseDraftID(raw string) (DraftID, error) {
	parsed, err := parseUUID(raw)
	return DraftID(parsed), err
}

// ParseUserID parses and validates a user id.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw)
	return UserID(parsed), err
}
