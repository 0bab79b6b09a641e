package models

import (
	"fmt"
	"strings"
	"time"
)

// Profile is a named connection descriptor that can be used in place of a URI on the command line.
type Profile struct {
	id        string
	sequence  int
	name      string
	uri       string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewProfile creates a profile with creation timestamps set to now.
func NewProfile(sequence int, name, uri string) *Profile {
	now := time.Now()
	return &Profile{
		sequence:  sequence,
		name:      name,
		uri:       uri,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *Profile) ID() string            { return p.id }
func (p *Profile) Sequence() int         { return p.sequence }
func (p *Profile) Name() string          { return p.name }
func (p *Profile) URI() string           { return p.uri }
func (p *Profile) CreatedAt() time.Time  { return p.createdAt }
func (p *Profile) UpdatedAt() time.Time  { return p.updatedAt }
func (p *Profile) DeletedAt() *time.Time { return p.deletedAt }

func (p *Profile) SetID(id string)           { p.id = id }
func (p *Profile) SetSequence(seq int)       { p.sequence = seq }
func (p *Profile) SetURI(uri string)         { p.uri = uri }
func (p *Profile) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *Profile) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *Profile) SetDeletedAt(t *time.Time) { p.deletedAt = t }
func (p *Profile) IsDeleted() bool           { return p.deletedAt != nil }

// Validate checks that the profile has an ID, a name without whitespace, and a URI.
func (p *Profile) Validate() error {
	if p.id == "" {
		return fmt.Errorf("profile ID is required")
	}
	if p.name == "" {
		return fmt.Errorf("profile name is required")
	}
	if strings.ContainsAny(p.name, " \t\n") {
		return fmt.Errorf("profile name %q must not contain whitespace", p.name)
	}
	if p.uri == "" {
		return fmt.Errorf("profile URI is required")
	}
	return nil
}
