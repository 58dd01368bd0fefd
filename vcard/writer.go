package vcard

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	// EmbedLocalImages embeds photos referenced by local file URLs as
	// BASE64 data instead of links.
	EmbedLocalImages bool
	// EmbedInternetImages embeds photos referenced by remote URLs. The
	// fetch is synchronous and unbounded; a caller wanting timeouts sets
	// its own Client.
	EmbedInternetImages bool
	// ProductID is written as PRODID when the contact does not carry its
	// own.
	ProductID string
	// IgnoreCommas selects the reduced escape set that leaves commas
	// unescaped, for consumers that mishandle escaped commas.
	IgnoreCommas bool
	// Client performs remote photo fetches. Defaults to
	// http.DefaultClient.
	Client *http.Client
	// Logger receives photo-fetch failures. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultWriterOptions returns the standard writer configuration: local
// images embedded, remote images linked.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{EmbedLocalImages: true}
}

// Writer serializes Contact records as vCard 3.0 text. Each write is an
// independent synchronous pass; a single Writer may serialize any number
// of contacts.
type Writer struct {
	opts      WriterOptions
	escapeSet string
	client    *http.Client
	log       *zap.Logger
}

// NewWriter creates a Writer with the given options.
func NewWriter(opts WriterOptions) *Writer {
	w := &Writer{opts: opts, escapeSet: EscapeSetRFC}
	if opts.IgnoreCommas {
		w.escapeSet = EscapeSetOutlook
	}
	w.client = opts.Client
	if w.client == nil {
		w.client = http.DefaultClient
	}
	w.log = opts.Logger
	if w.log == nil {
		w.log = zap.NewNop()
	}
	return w
}

// WriteContact serializes one contact to out.
func (w *Writer) WriteContact(c *Contact, out io.Writer) error {
	for _, prop := range w.BuildProperties(c) {
		if err := w.EncodeProperty(out, prop); err != nil {
			return fmt.Errorf("writing %s property: %w", prop.Name, err)
		}
	}
	return nil
}

// WriteString serializes one contact and returns the text.
func (w *Writer) WriteString(c *Contact) (string, error) {
	var sb strings.Builder
	if err := w.WriteContact(c, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// BuildProperties walks the contact in the fixed vCard 3.0 section order
// and returns the ordered property sequence. Builders skip emission for
// absent values; N is the one property always emitted.
func (w *Writer) BuildProperties(c *Contact) []*Property {
	var props []*Property
	add := func(p *Property) { props = append(props, p) }

	add(NewProperty("BEGIN", "VCARD"))
	add(NewProperty("VERSION", "3.0"))
	if c.DisplayName != "" {
		add(NewProperty("NAME", c.DisplayName))
	}
	for _, s := range c.Sources {
		if s.URI == "" {
			continue
		}
		p := NewProperty("SOURCE", s.URI)
		if s.Context != "" {
			p.Subproperties.Add("CONTEXT", s.Context)
		}
		add(p)
	}
	add(buildNameProperty(c))
	if c.FormattedName != "" {
		add(NewProperty("FN", c.FormattedName))
	}
	for _, a := range c.Addresses {
		if p := buildAddressProperty(a); p != nil {
			add(p)
		}
	}
	if c.BirthDate != nil {
		add(NewProperty("BDAY", c.BirthDate.Format("2006-01-02")))
	}
	if c.Anniversary != nil {
		add(NewProperty("X-ANNIVERSARY", c.Anniversary.Format("2006-01-02")))
	}
	if len(c.Categories) > 0 {
		p := &Property{Name: "CATEGORIES", Value: ValueList{Separator: ',', Parts: c.Categories}}
		add(p)
	}
	if c.AccessClassification != "" {
		add(NewProperty("CLASS", c.AccessClassification))
	}
	for _, e := range c.Emails {
		if p := buildEmailProperty(e); p != nil {
			add(p)
		}
	}
	if c.Geo != nil {
		add(&Property{Name: "GEO", Value: ValueList{Separator: ';', Parts: []string{
			strconv.FormatFloat(c.Geo.Latitude, 'f', -1, 64),
			strconv.FormatFloat(c.Geo.Longitude, 'f', -1, 64),
		}}})
	}
	for _, h := range c.IMHandles {
		if p := buildIMProperty(h); p != nil {
			add(p)
		}
	}
	for _, cert := range c.Certificates {
		if len(cert.Data) == 0 {
			continue
		}
		p := &Property{Name: "KEY", Value: cert.Data}
		if cert.KeyType != "" {
			p.Subproperties.AddFlag(cert.KeyType)
		}
		add(p)
	}
	for _, l := range c.Labels {
		// Blank labels are kept by the reader but never written.
		if l.Text == "" {
			continue
		}
		p := NewProperty("LABEL", l.Text)
		addAddressTypeSubproperties(p, l.Types)
		add(p)
	}
	if c.Mailer != "" {
		add(NewProperty("MAILER", c.Mailer))
	}
	if len(c.Nicknames) > 0 {
		add(&Property{Name: "NICKNAME", Value: ValueList{Separator: ',', Parts: c.Nicknames}})
	}
	for _, n := range c.Notes {
		if n.Text == "" {
			continue
		}
		p := NewProperty("NOTE", n.Text)
		if n.Language != "" {
			p.Subproperties.Add("LANGUAGE", n.Language)
		}
		add(p)
	}
	if p := buildOrganizationProperty(c); p != nil {
		add(p)
	}
	for _, photo := range c.Photos {
		if p := w.buildPhotoProperty(photo); p != nil {
			add(p)
		}
	}
	if pid := w.productID(c); pid != "" {
		add(NewProperty("PRODID", pid))
	}
	if c.RevisionDate != nil {
		add(NewProperty("REV", c.RevisionDate.UTC().Format("20060102T150405Z")))
	}
	if c.Role != "" {
		add(NewProperty("ROLE", c.Role))
	}
	for _, t := range c.Phones {
		if p := buildPhoneProperty(t); p != nil {
			add(p)
		}
	}
	if c.Title != "" {
		add(NewProperty("TITLE", c.Title))
	}
	if c.TimeZone != "" {
		add(NewProperty("TZ", c.TimeZone))
	}
	if c.UniqueID != "" {
		add(NewProperty("UID", c.UniqueID))
	}
	for _, site := range c.Websites {
		if p := buildWebsiteProperty(site); p != nil {
			add(p)
		}
	}
	for _, sp := range c.SocialProfiles {
		if p := buildSocialProfileProperty(sp); p != nil {
			add(p)
		}
	}
	if c.Gender == GenderFemale {
		add(NewProperty("X-WAB-GENDER", "1"))
	} else if c.Gender == GenderMale {
		add(NewProperty("X-WAB-GENDER", "2"))
	}
	add(NewProperty("END", "VCARD"))
	return props
}

// productID returns the PRODID value to write: the contact's own takes
// precedence, then the configured default, but nothing is auto-emitted
// for a contact that never carried one unless the option is set.
func (w *Writer) productID(c *Contact) string {
	if c.ProductID != "" {
		return c.ProductID
	}
	return w.opts.ProductID
}

// buildNameProperty emits N unconditionally: the property is conceptually
// required, so a five-part value with blank parts is still written.
func buildNameProperty(c *Contact) *Property {
	return &Property{Name: "N", Value: ValueList{Separator: ';', Parts: []string{
		c.FamilyName, c.GivenName, c.AdditionalNames, c.NamePrefix, c.NameSuffix,
	}}}
}

func buildAddressProperty(a DeliveryAddress) *Property {
	if a.IsBlank() {
		return nil
	}
	// Positions 0 and 1 (PO box, extended address) are always empty.
	p := &Property{Name: "ADR", Value: ValueList{Separator: ';', Parts: []string{
		"", "", a.Street, a.City, a.Region, a.PostalCode, a.Country,
	}}}
	addAddressTypeSubproperties(p, a.Types)
	return p
}

// addAddressTypeSubproperties writes one TYPE= subproperty per tag, the
// legacy-friendly multi-subproperty form, rather than one comma-joined
// value.
func addAddressTypeSubproperties(p *Property, types []AddressType) {
	for _, t := range types {
		p.Subproperties.Add("TYPE", t.Token())
	}
}

func buildEmailProperty(e Email) *Property {
	if e.Address == "" {
		return nil
	}
	p := NewProperty("EMAIL", e.Address)
	p.Subproperties.Add("TYPE", e.Type.Token())
	if token := e.ItemType.Token(); token != "" {
		p.Subproperties.Add("TYPE", token)
	}
	if e.Preferred {
		p.Subproperties.Add("TYPE", "PREF")
	}
	return p
}

func buildIMProperty(h IMHandle) *Property {
	if h.Handle == "" {
		return nil
	}
	p := NewProperty("IMPP", h.Service.SchemePrefix()+h.Handle)
	if name := h.Service.Name(); name != "" {
		p.Subproperties.Add("X-SERVICE-TYPE", name)
	}
	if token := h.ItemType.Token(); token != "" {
		p.Subproperties.Add("TYPE", token)
	}
	if h.Preferred {
		p.Subproperties.Add("TYPE", "PREF")
	}
	return p
}

func buildOrganizationProperty(c *Contact) *Property {
	parts := []string{c.Organization, c.Department, c.Office}
	last := len(parts)
	for last > 0 && parts[last-1] == "" {
		last--
	}
	if last == 0 {
		return nil
	}
	return &Property{Name: "ORG", Value: ValueList{Separator: ';', Parts: parts[:last]}}
}

func buildPhoneProperty(t Phone) *Property {
	if t.FullNumber == "" {
		return nil
	}
	p := NewProperty("TEL", t.FullNumber)
	for _, entry := range phoneTypeOrder {
		if t.Type.Has(entry.bit) {
			p.Subproperties.Add("TYPE", entry.token)
		}
	}
	// A bare VOICE or FAX entry with neither HOME nor WORK is ambiguous to
	// some consumers; tag it OTHER as well.
	if (t.IsVoice() || t.IsFax()) && !t.IsHome() && !t.IsWork() {
		p.Subproperties.Add("TYPE", "OTHER")
	}
	return p
}

func buildWebsiteProperty(site Website) *Property {
	if site.URL == "" {
		return nil
	}
	p := NewProperty("URL", site.URL)
	if site.IsPersonal() {
		p.Subproperties.Add("TYPE", "HOME")
	}
	if site.IsWork() {
		p.Subproperties.Add("TYPE", "WORK")
	}
	return p
}

func buildSocialProfileProperty(sp SocialProfile) *Property {
	if sp.URL == "" && sp.Username == "" {
		return nil
	}
	p := NewProperty("X-SOCIALPROFILE", sp.URL)
	if sp.Username != "" {
		p.Subproperties.Add("X-USER", sp.Username)
	}
	if token := sp.Service.Token(); token != "" {
		p.Subproperties.Add("TYPE", token)
	}
	return p
}

// buildPhotoProperty is the one builder with side effects: embedding a
// photo referenced by URL requires fetching it. A fetch failure degrades
// to a VALUE=URI link property instead of failing the write.
func (w *Writer) buildPhotoProperty(photo Photo) *Property {
	if photo.URL == "" {
		if photo.Loaded() {
			p := &Property{Name: "PHOTO", Value: photo.Data}
			p.Subproperties.Add("TYPE", "JPEG")
			return p
		}
		if photo.EncodedData != "" {
			// Already base64 text; encodeProperty writes it verbatim under
			// an ENCODING=b tag.
			p := NewProperty("PHOTO", photo.EncodedData)
			p.Subproperties.Add("TYPE", "JPEG")
			return p
		}
		return nil
	}

	embed := w.opts.EmbedInternetImages
	if isLocalURL(photo.URL) {
		embed = w.opts.EmbedLocalImages
	}
	if embed {
		data, err := w.fetchPhoto(photo.URL)
		if err == nil && len(data) > 0 {
			p := &Property{Name: "PHOTO", Value: data}
			p.Subproperties.Add("TYPE", "JPEG")
			return p
		}
		w.log.Warn("photo fetch failed, writing link instead",
			zap.String("url", photo.URL),
			zap.Error(err))
	}
	p := NewProperty("PHOTO", photo.URL)
	p.Subproperties.Add("VALUE", "URI")
	return p
}

// isLocalURL reports whether a photo URL points at the local filesystem:
// a file scheme, a bare path, or anything that does not parse as a URL.
func isLocalURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	return u.Scheme == "" || u.Scheme == "file" || (len(u.Scheme) == 1 && os.PathSeparator == '\\')
}

// fetchPhoto reads the referenced image synchronously. The caller decides
// timeout policy through the configured HTTP client.
func (w *Writer) fetchPhoto(raw string) ([]byte, error) {
	if isLocalURL(raw) {
		path := raw
		if u, err := url.Parse(raw); err == nil && u.Scheme == "file" {
			path = u.Path
		}
		return os.ReadFile(path)
	}
	resp, err := w.client.Get(raw)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// EncodeProperty serializes one property as a single physical line. The
// writer never folds: values are written unwrapped regardless of length.
// The property itself is left untouched; any ENCODING tag implied by the
// value kind is added to a local copy of the subproperty list.
func (w *Writer) EncodeProperty(out io.Writer, p *Property) error {
	var sb strings.Builder
	sb.WriteString(p.Name)

	subs := make(SubpropertyList, len(p.Subproperties), len(p.Subproperties)+1)
	copy(subs, p.Subproperties)

	value := ""
	switch v := p.Value.(type) {
	case []byte:
		subs.Add("ENCODING", "b")
		value = EncodeBase64(v)
	case ValueList:
		escaped := make([]string, len(v.Parts))
		for i, part := range v.Parts {
			escaped[i] = EncodeEscapes(part, w.escapeSet)
		}
		value = strings.Join(escaped, string(v.Separator))
	case string:
		valueKind := p.Subproperties.Value("VALUE")
		isLink := strings.EqualFold(valueKind, "URI") || strings.EqualFold(valueKind, "URL")
		if normalizeName(p.Name) == "PHOTO" && !isLink {
			// The string already holds base64 text; tag it and write it
			// verbatim so the original bytes survive. Link photos carry
			// VALUE=URI and must not be declared base64.
			subs.Add("ENCODING", "b")
			value = v
		} else if strings.EqualFold(p.Subproperties.Value("ENCODING"), "QUOTED-PRINTABLE") {
			// The writer never sets this itself but honors it when a
			// caller-built property carries it.
			value = EncodeQuotedPrintable(v)
		} else {
			value = EncodeEscapes(v, w.escapeSet)
		}
	}

	for _, s := range subs {
		sb.WriteByte(';')
		sb.WriteString(s.Name)
		if s.Value != "" {
			sb.WriteByte('=')
			sb.WriteString(s.Value)
		}
	}
	sb.WriteByte(':')
	sb.WriteString(value)
	sb.WriteString("\r\n")

	_, err := io.WriteString(out, sb.String())
	return err
}

// Write is a convenience for one-shot serialization with default options.
func Write(c *Contact, out io.Writer) error {
	return NewWriter(DefaultWriterOptions()).WriteContact(c, out)
}
