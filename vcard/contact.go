// Package vcard implements a reader and writer for the vCard 2.1/3.0
// plain-text contact format.
//
// The reader is deliberately lenient: it accepts the legacy 2.1 grammar
// (bare subproperty flags, BASE64 and Quoted-Printable encodings, grouped
// "item1." property prefixes) alongside the 3.0 TYPE= form, accumulating
// warnings for malformed lines instead of failing the parse. The writer
// always emits vCard 3.0.
//
// Parsing and serialization are both single-pass and synchronous; a Contact
// and its sub-entities are never shared between records, so independent
// reads and writes may run concurrently on separate streams.
package vcard

import (
	"errors"
	"time"
)

// GeoPosition is a latitude/longitude pair from a GEO property.
type GeoPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Contact is a single parsed vCard. String fields are never "absent": a
// property missing from the input leaves the field as the empty string.
// Collections preserve the order of appearance in the source text.
type Contact struct {
	FormattedName   string `json:"formatted_name,omitempty"`
	FamilyName      string `json:"family_name,omitempty"`
	GivenName       string `json:"given_name,omitempty"`
	AdditionalNames string `json:"additional_names,omitempty"`
	NamePrefix      string `json:"name_prefix,omitempty"`
	NameSuffix      string `json:"name_suffix,omitempty"`

	// DisplayName is the vCard 3.0 NAME property, the display name of the
	// card's source.
	DisplayName string `json:"display_name,omitempty"`

	Organization string `json:"organization,omitempty"`
	Department   string `json:"department,omitempty"`
	Office       string `json:"office,omitempty"`
	Title        string `json:"title,omitempty"`
	Role         string `json:"role,omitempty"`

	Mailer    string `json:"mailer,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	UniqueID  string `json:"unique_id,omitempty"`
	TimeZone  string `json:"time_zone,omitempty"`

	Gender Gender `json:"gender,omitempty"`

	// AccessClassification is the CLASS property value, e.g. "PUBLIC".
	AccessClassification string `json:"access_classification,omitempty"`

	BirthDate    *time.Time   `json:"birth_date,omitempty"`
	Anniversary  *time.Time   `json:"anniversary,omitempty"`
	RevisionDate *time.Time   `json:"revision_date,omitempty"`
	Geo          *GeoPosition `json:"geo,omitempty"`

	Emails         []Email           `json:"emails,omitempty"`
	Phones         []Phone           `json:"phones,omitempty"`
	Addresses      []DeliveryAddress `json:"addresses,omitempty"`
	Labels         []DeliveryLabel   `json:"labels,omitempty"`
	Notes          []Note            `json:"notes,omitempty"`
	Photos         []Photo           `json:"photos,omitempty"`
	Certificates   []Certificate     `json:"certificates,omitempty"`
	Websites       []Website         `json:"websites,omitempty"`
	IMHandles      []IMHandle        `json:"im_handles,omitempty"`
	SocialProfiles []SocialProfile   `json:"social_profiles,omitempty"`
	Sources        []Source          `json:"sources,omitempty"`

	Nicknames  []string `json:"nicknames,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// NewContact returns an empty contact ready to be populated by the reader
// or by direct field assignment.
func NewContact() *Contact {
	return &Contact{}
}

// Email is one email address with its (mostly legacy) system type, the
// orthogonal HOME/WORK classification and a preferred flag.
type Email struct {
	Address   string    `json:"address"`
	Type      EmailType `json:"type,omitempty"`
	ItemType  ItemType  `json:"item_type,omitempty"`
	Preferred bool      `json:"preferred,omitempty"`
}

// Phone is one telephone number. Type is a bit set, so a number may be
// simultaneously Home, Voice and Preferred.
type Phone struct {
	FullNumber string    `json:"full_number"`
	Type       PhoneType `json:"type,omitempty"`
}

func (p Phone) IsHome() bool      { return p.Type.Has(PhoneHome) }
func (p Phone) IsWork() bool      { return p.Type.Has(PhoneWork) }
func (p Phone) IsVoice() bool     { return p.Type.Has(PhoneVoice) }
func (p Phone) IsFax() bool       { return p.Type.Has(PhoneFax) }
func (p Phone) IsCellular() bool  { return p.Type.Has(PhoneCellular) }
func (p Phone) IsPreferred() bool { return p.Type.Has(PhonePreferred) }

// DeliveryAddress is one structured postal address. Types is an ordered
// list rather than a bit set because TYPE tokens may legally repeat.
type DeliveryAddress struct {
	Street     string        `json:"street,omitempty"`
	City       string        `json:"city,omitempty"`
	Region     string        `json:"region,omitempty"`
	PostalCode string        `json:"postal_code,omitempty"`
	Country    string        `json:"country,omitempty"`
	Types      []AddressType `json:"types,omitempty"`
}

// IsBlank reports whether every free-text field of the address is empty.
// Blank addresses are never materialized: the reader discards them and the
// writer never emits them.
func (a DeliveryAddress) IsBlank() bool {
	return a.Street == "" && a.City == "" && a.Region == "" &&
		a.PostalCode == "" && a.Country == ""
}

// HasType reports whether the type list contains t.
func (a DeliveryAddress) HasType(t AddressType) bool {
	for _, have := range a.Types {
		if have == t {
			return true
		}
	}
	return false
}

// DeliveryLabel is one free-text mailing label with the same type tags as
// a structured address.
type DeliveryLabel struct {
	Text  string        `json:"text,omitempty"`
	Types []AddressType `json:"types,omitempty"`
}

// HasType reports whether the type list contains t.
func (l DeliveryLabel) HasType(t AddressType) bool {
	for _, have := range l.Types {
		if have == t {
			return true
		}
	}
	return false
}

// Note is one NOTE property with an optional language tag.
type Note struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// Photo holds exactly one of: decoded image bytes, a URL reference, or
// base64 text retained verbatim from the source. Retaining undeclared
// base64 text instead of decoding it preserves the original bytes exactly
// across a re-serialization.
type Photo struct {
	Data        []byte `json:"data,omitempty"`
	URL         string `json:"url,omitempty"`
	EncodedData string `json:"encoded_data,omitempty"`
}

// NewPhoto creates a photo from already-decoded image bytes.
func NewPhoto(data []byte) (Photo, error) {
	if len(data) == 0 {
		return Photo{}, errors.New("vcard: photo data must not be empty")
	}
	return Photo{Data: data}, nil
}

// NewPhotoURL creates a photo that references an image by URL without
// fetching it.
func NewPhotoURL(url string) (Photo, error) {
	if url == "" {
		return Photo{}, errors.New("vcard: photo url must not be empty")
	}
	return Photo{URL: url}, nil
}

// Loaded reports whether decoded image bytes are present.
func (p Photo) Loaded() bool { return len(p.Data) > 0 }

// Certificate is one KEY property: a key-type tag (e.g. "X509") and the
// raw certificate bytes. The bytes are stored opaquely; interpreting them
// is the caller's concern.
type Certificate struct {
	KeyType string `json:"key_type,omitempty"`
	Data    []byte `json:"data"`
}

// NewCertificate creates a certificate record. The data must not be empty;
// the key type may be (a KEY property without a recognized type flag has
// none).
func NewCertificate(keyType string, data []byte) (Certificate, error) {
	if len(data) == 0 {
		return Certificate{}, errors.New("vcard: certificate data must not be empty")
	}
	return Certificate{KeyType: keyType, Data: data}, nil
}

// Website is one URL property.
type Website struct {
	URL  string      `json:"url"`
	Type WebsiteType `json:"type,omitempty"`
}

func (w Website) IsPersonal() bool { return w.Type.Has(WebsitePersonal) }
func (w Website) IsWork() bool     { return w.Type.Has(WebsiteWork) }

// IMHandle is one instant-messenger handle from an IMPP property. The
// handle is stored without its service URI scheme when the service is
// recognized.
type IMHandle struct {
	Handle    string        `json:"handle"`
	Service   IMServiceType `json:"service,omitempty"`
	ItemType  ItemType      `json:"item_type,omitempty"`
	Preferred bool          `json:"preferred,omitempty"`
}

// SocialProfile is one X-SOCIALPROFILE property.
type SocialProfile struct {
	Username string            `json:"username,omitempty"`
	Service  SocialProfileType `json:"service,omitempty"`
	URL      string            `json:"url,omitempty"`
}

// Source is one SOURCE property: a URI the card was obtained from with an
// optional context tag such as "LDAP".
type Source struct {
	URI     string `json:"uri"`
	Context string `json:"context,omitempty"`
}
