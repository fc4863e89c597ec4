// Package identity computes stable identity keys for raw company records.
// A key is derived from the most discriminating attribute available:
// website domain first, then phone, email and finally a fuzzy hash of the
// company name. Records sharing a key are presumed to describe the same
// real-world entity.
package identity

import (
	"crypto/md5" //nolint:gosec // fallback key marker, not a security boundary
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"

	"github.com/expofuse/expofuse/pkg/normalize"
)

// Kind tags the attribute an identity key was derived from.
type Kind string

// Key kinds in precedence order.
const (
	Website Kind = "website"
	Phone   Kind = "phone"
	Email   Kind = "email"
	Company Kind = "company"
	Random  Kind = "random"
)

// minPhoneDigits is the minimum digit count for a phone value to qualify
// as an identity attribute.
const minPhoneDigits = 8

// Key identifies an entity. Keys derived from record attributes are pure
// functions of those attributes; Random keys are intentionally not
// reproducible across runs (a record with no identifying attribute is its
// own entity, forever).
type Key struct {
	Kind  Kind
	Value string
}

// String renders the key as "kind:value".
func (k Key) String() string {
	return string(k.Kind) + ":" + k.Value
}

// IsRandom reports whether the key came from the non-deterministic fallback.
func (k Key) IsRandom() bool {
	return k.Kind == Random
}

// CompanyID derives the printable entity ID carried in the first column of
// every output table. The COMP_UNKNOWN_ prefix for fallback keys matches
// the marker downstream cleanup tooling already greps for.
func (k Key) CompanyID() string {
	switch k.Kind {
	case Website:
		return "WEB_" + k.Value
	case Phone:
		return "TEL_" + k.Value
	case Email:
		return "MAIL_" + k.Value
	case Company:
		return "COMP_" + strings.ToUpper(k.Value)
	default:
		return "COMP_UNKNOWN_" + strings.ToUpper(k.Value)
	}
}

// Fields names the record columns inspected per attribute, in priority order.
type Fields struct {
	Website []string
	Phone   []string
	Email   []string
	Name    []string
}

// DefaultFields matches the column names the extractors emit.
func DefaultFields() Fields {
	return Fields{
		Website: []string{"Website", "url", "urls", "URL"},
		Phone:   []string{"Phone1", "Phone2", "Phone3", "Phone4", "Phone", "phones"},
		Email:   []string{"Email", "emails", "OtherEmails"},
		Name:    []string{"CompanyNameEN", "CompanyNameFA", "CompanyName", "company_names"},
	}
}

// Resolver computes identity keys for records.
type Resolver struct {
	fields Fields
	// seed lets tests pin the random fallback.
	seed func() int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFields overrides the inspected column sets.
func WithFields(f Fields) Option {
	return func(r *Resolver) { r.fields = f }
}

// WithSeed fixes the random fallback seed. Test hook.
func WithSeed(seed func() int64) Option {
	return func(r *Resolver) { r.seed = seed }
}

// NewResolver creates a Resolver with the default field sets.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		fields: DefaultFields(),
		seed:   rand.Int63,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the identity key for a record, applying the precedence
// website > phone > email > company-name hash > random fallback.
func (r *Resolver) Resolve(record map[string]string) Key {
	for _, f := range r.fields.Website {
		if domain := normalize.Domain(normalize.Clean(record[f])); domain != "" {
			return Key{Kind: Website, Value: domain}
		}
	}

	for _, f := range r.fields.Phone {
		if digits := normalize.Phone(record[f]); len(digits) >= minPhoneDigits {
			return Key{Kind: Phone, Value: digits}
		}
	}

	for _, f := range r.fields.Email {
		if email := normalize.Key(record[f]); strings.Contains(email, "@") {
			return Key{Kind: Email, Value: email}
		}
	}

	for _, f := range r.fields.Name {
		raw := normalize.Clean(record[f])
		if raw == "" {
			continue
		}
		name := normalize.CompanyName(raw)
		if len([]rune(name)) >= 2 {
			return Key{Kind: Company, Value: hashPrefix(name)}
		}
		// Degenerate names (all stop words) still hash, off the raw form.
		return Key{Kind: Company, Value: hashPrefix(raw)}
	}

	return Key{Kind: Random, Value: randomMarker(r.seed())}
}

// hashPrefix returns the first 12 hex characters of sha256(s).
func hashPrefix(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// randomMarker builds the non-reproducible fallback value.
func randomMarker(seed int64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d", seed))) //nolint:gosec
	return hex.EncodeToString(sum[:])[:12]
}
