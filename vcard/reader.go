package vcard

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// valueEncoding is the transfer encoding resolved for one property.
type valueEncoding int

const (
	encodingEscaped valueEncoding = iota
	encodingBase64
	encodingQuotedPrintable
)

// Reader parses vCard 2.1/3.0 text into Contact records. One Reader wraps
// one character stream; ReadContact consumes one card per call, so multi-
// card streams are read by looping (or with ReadAll).
//
// Malformed lines never fail the parse: they are recorded in Warnings and
// skipped. The one fatal parse error is an unresolvable CHARSET name.
type Reader struct {
	br *bufio.Reader

	// peeked holds one line of lookahead for unfolding continuation lines.
	peeked    *string
	atEOF     bool
	lineCount int

	// Warnings accumulates non-fatal problems (blank lines, missing
	// colons, empty property names) across all ReadContact calls.
	Warnings []string
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

func (r *Reader) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// readPhysicalLine returns the next physical line with its terminator and
// any trailing CR removed. The second return value is false at end of
// stream.
func (r *Reader) readPhysicalLine() (string, bool) {
	if r.peeked != nil {
		line := *r.peeked
		r.peeked = nil
		return line, true
	}
	if r.atEOF {
		return "", false
	}
	line, err := r.br.ReadString('\n')
	if err != nil {
		r.atEOF = true
		if line == "" {
			return "", false
		}
	}
	r.lineCount++
	return strings.TrimRight(line, "\r\n"), true
}

// peekPhysicalLine returns the next physical line without consuming it.
func (r *Reader) peekPhysicalLine() (string, bool) {
	if r.peeked != nil {
		return *r.peeked, true
	}
	line, ok := r.readPhysicalLine()
	if !ok {
		return "", false
	}
	r.peeked = &line
	return line, true
}

// ReadContact reads one card from the stream: properties are consumed and
// dispatched into a fresh Contact until END:VCARD or end of stream. At end
// of stream with no property read at all it returns (nil, io.EOF).
func (r *Reader) ReadContact() (*Contact, error) {
	contact := NewContact()
	read := 0
	for {
		prop, err := r.readProperty()
		if err != nil {
			return nil, err
		}
		if prop == nil {
			if read == 0 {
				return nil, io.EOF
			}
			return contact, nil
		}
		read++
		if normalizeName(prop.Name) == "END" &&
			strings.EqualFold(prop.Text(), "VCARD") {
			return contact, nil
		}
		r.dispatch(contact, prop)
	}
}

// ReadAll reads every card remaining in the stream.
func (r *Reader) ReadAll() ([]*Contact, error) {
	var contacts []*Contact
	for {
		c, err := r.ReadContact()
		if err == io.EOF {
			return contacts, nil
		}
		if err != nil {
			return contacts, err
		}
		contacts = append(contacts, c)
	}
}

// readProperty tokenizes the next property from the stream, handling
// folded continuation lines, Quoted-Printable soft line breaks and the
// transfer decoding of the value. It returns nil at end of stream.
func (r *Reader) readProperty() (*Property, error) {
	for {
		line, ok := r.readPhysicalLine()
		if !ok {
			return nil, nil
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			r.warnf("line %d: blank line", r.lineCount)
			continue
		}
		colon := strings.IndexByte(trimmed, ':')
		if colon < 0 {
			r.warnf("line %d: property line has no colon", r.lineCount)
			continue
		}

		head := trimmed[:colon]
		parts := strings.Split(head, ";")
		name := strings.TrimSpace(parts[0])
		if name == "" {
			r.warnf("line %d: property has an empty name", r.lineCount)
			continue
		}

		prop := &Property{Name: name}
		if dot := strings.IndexByte(name, '.'); dot > 0 {
			prop.Group = name[:dot]
		}
		for _, raw := range parts[1:] {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if eq := strings.IndexByte(raw, '='); eq >= 0 {
				prop.Subproperties.Add(strings.TrimSpace(raw[:eq]), strings.TrimSpace(raw[eq+1:]))
			} else {
				prop.Subproperties.AddFlag(raw)
			}
		}

		enc := resolveEncoding(prop.Subproperties)

		charset, err := ResolveCharset(prop.Subproperties.Value("CHARSET"))
		if err != nil {
			return nil, err
		}

		value := trimmed[colon+1:]

		// Line folding: a continuation line starts with a space or tab and
		// joins the value with exactly its first character removed.
		for {
			next, ok := r.peekPhysicalLine()
			if !ok || next == "" || (next[0] != ' ' && next[0] != '\t') {
				break
			}
			r.readPhysicalLine()
			value += next[1:]
		}

		// Quoted-Printable soft line break: a trailing '=' continues the
		// value on the next physical line. The CRLF is kept in the raw
		// value for the decoder to consume.
		if enc == encodingQuotedPrintable {
			for strings.HasSuffix(value, "=") {
				next, ok := r.readPhysicalLine()
				if !ok {
					break
				}
				value += "\r\n" + next
			}
		}

		switch enc {
		case encodingBase64:
			// Malformed base64 degrades silently to the literal text, like
			// every other codec in the pipeline.
			if data, err := DecodeBase64(value); err == nil {
				prop.Value = data
			} else {
				prop.Value = value
			}
		case encodingQuotedPrintable:
			prop.Value = DecodeQuotedPrintable(value, charset)
		default:
			prop.Value = DecodeEscapes(value)
		}
		return prop, nil
	}
}

// resolveEncoding determines the transfer encoding of a property: an
// ENCODING subproperty if present, else one of the legacy bare flags
// B / BASE64 / QUOTED-PRINTABLE.
func resolveEncoding(subs SubpropertyList) valueEncoding {
	name := subs.Value("ENCODING")
	if name == "" {
		for _, s := range subs {
			if s.Value != "" {
				continue
			}
			switch strings.ToUpper(s.Name) {
			case "B", "BASE64", "QUOTED-PRINTABLE":
				name = s.Name
			}
		}
	}
	switch strings.ToUpper(name) {
	case "B", "BASE64":
		return encodingBase64
	case "QUOTED-PRINTABLE":
		return encodingQuotedPrintable
	}
	return encodingEscaped
}

// dispatch routes one property into the contact by its normalized name.
// Unknown names are ignored without a warning: they are forward
// compatibility, not errors.
func (r *Reader) dispatch(c *Contact, p *Property) {
	switch normalizeName(p.Name) {
	case "ADR":
		readAddress(c, p)
	case "ANNIVERSARY", "X-ANNIVERSARY":
		if t, ok := parseDate(p.Text()); ok {
			c.Anniversary = &t
		}
	case "BDAY":
		if t, ok := parseDate(p.Text()); ok {
			c.BirthDate = &t
		}
	case "CATEGORIES":
		for _, token := range strings.Split(p.Text(), ",") {
			if token = strings.TrimSpace(token); token != "" {
				c.Categories = append(c.Categories, token)
			}
		}
	case "CLASS":
		c.AccessClassification = p.Text()
	case "EMAIL":
		readEmail(c, p)
	case "FN":
		c.FormattedName = p.Text()
	case "GEO":
		readGeo(c, p)
	case "IMPP":
		readIMHandle(c, p)
	case "KEY":
		readCertificate(c, p)
	case "LABEL":
		c.Labels = append(c.Labels, DeliveryLabel{
			Text:  p.Text(),
			Types: parseAddressTypes(p.Subproperties),
		})
	case "MAILER":
		c.Mailer = p.Text()
	case "N":
		readName(c, p)
	case "NAME":
		c.DisplayName = p.Text()
	case "NICKNAME":
		for _, token := range strings.Split(p.Text(), ",") {
			if token = strings.TrimSpace(token); token != "" {
				c.Nicknames = append(c.Nicknames, token)
			}
		}
	case "NOTE":
		if text := p.Text(); text != "" {
			c.Notes = append(c.Notes, Note{
				Text:     text,
				Language: p.Subproperties.Value("LANGUAGE"),
			})
		}
	case "ORG":
		readOrganization(c, p)
	case "PHOTO":
		readPhoto(c, p)
	case "PRODID":
		c.ProductID = p.Text()
	case "REV":
		if t, ok := parseDateTime(p.Text()); ok {
			c.RevisionDate = &t
		}
	case "ROLE":
		c.Role = p.Text()
	case "SOURCE":
		if uri := p.Text(); uri != "" {
			c.Sources = append(c.Sources, Source{
				URI:     uri,
				Context: p.Subproperties.Value("CONTEXT"),
			})
		}
	case "TEL":
		readPhone(c, p)
	case "TITLE":
		c.Title = p.Text()
	case "TZ":
		c.TimeZone = p.Text()
	case "UID":
		c.UniqueID = p.Text()
	case "URL":
		readWebsite(c, p)
	case "X-SOCIALPROFILE":
		readSocialProfile(c, p)
	case "X-WAB-GENDER":
		if n, err := strconv.Atoi(strings.TrimSpace(p.Text())); err == nil {
			switch n {
			case 1:
				c.Gender = GenderFemale
			case 2:
				c.Gender = GenderMale
			}
		}
	}
}

// parseAddressTypes derives the address type tags of an ADR or LABEL
// property. Both representations are parsed: legacy bare flags from the
// 2.1 grammar and the TYPE= comma list; a TYPE= subproperty, when present,
// fully replaces the legacy-derived list.
func parseAddressTypes(subs SubpropertyList) []AddressType {
	var legacy []AddressType
	for _, s := range subs {
		if s.Value != "" {
			continue
		}
		if t, ok := ParseAddressType(s.Name); ok {
			legacy = append(legacy, t)
		}
	}
	var modern []AddressType
	hasModern := false
	for _, v := range subs.Values("TYPE") {
		hasModern = true
		for _, token := range strings.Split(v, ",") {
			if t, ok := ParseAddressType(token); ok {
				modern = append(modern, t)
			}
		}
	}
	if hasModern {
		return modern
	}
	return legacy
}

func readAddress(c *Contact, p *Property) {
	parts := strings.Split(p.Text(), ";")
	at := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	// Positions 0 and 1 are the PO box and extended address, both ignored.
	addr := DeliveryAddress{
		Street:     at(2),
		City:       at(3),
		Region:     at(4),
		PostalCode: at(5),
		Country:    at(6),
	}
	if addr.IsBlank() {
		return
	}
	addr.Types = parseAddressTypes(p.Subproperties)
	c.Addresses = append(c.Addresses, addr)
}

func readEmail(c *Contact, p *Property) {
	email := Email{Address: p.Text()}
	for _, s := range p.Subproperties {
		switch {
		case strings.EqualFold(s.Name, "PREF") && s.Value == "":
			email.Preferred = true
		case strings.EqualFold(s.Name, "TYPE") && s.Value != "":
			for _, token := range strings.Split(s.Value, ",") {
				token = strings.TrimSpace(token)
				if strings.EqualFold(token, "PREF") {
					email.Preferred = true
				} else if et, ok := ParseEmailType(token); ok {
					email.Type = et
				} else if it, ok := ParseItemType(token); ok {
					email.ItemType = it
				}
			}
		case s.Value == "":
			// Legacy 2.1 form: EMAIL;INTERNET:
			if et, ok := ParseEmailType(s.Name); ok {
				email.Type = et
			}
		}
	}
	c.Emails = append(c.Emails, email)
}

func readGeo(c *Contact, p *Property) {
	parts := strings.Split(p.Text(), ";")
	if len(parts) != 2 {
		return
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return
	}
	c.Geo = &GeoPosition{Latitude: lat, Longitude: lon}
}

// splitIMHandle parses the colon-separated "prefix:suffix:handle" form a
// bare IMPP value uses: the first non-empty segment names the service and
// the last segment is the handle.
func splitIMHandle(value string) (IMServiceType, string) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 {
		return IMUnspecified, value
	}
	service := IMUnspecified
	for _, part := range parts[:len(parts)-1] {
		if part == "" {
			continue
		}
		if t, ok := ParseIMServiceType(part); ok {
			service = t
		}
		break
	}
	return service, parts[len(parts)-1]
}

func readIMHandle(c *Contact, p *Property) {
	handle := IMHandle{Handle: p.Text()}
	if len(p.Subproperties) == 0 {
		handle.Service, handle.Handle = splitIMHandle(handle.Handle)
		c.IMHandles = append(c.IMHandles, handle)
		return
	}
	for _, s := range p.Subproperties {
		switch {
		case strings.EqualFold(s.Name, "PREF") && s.Value == "":
			handle.Preferred = true
		case (strings.EqualFold(s.Name, "TYPE") || strings.EqualFold(s.Name, "X-SERVICE-TYPE")) && s.Value != "":
			for _, token := range strings.Split(s.Value, ",") {
				token = strings.TrimSpace(token)
				switch {
				case strings.EqualFold(token, "PREF"):
					handle.Preferred = true
				case strings.EqualFold(token, "OTHER") && handle.Handle != "":
					// em-client writes TYPE=OTHER with the service encoded
					// in the handle itself.
					handle.Service, handle.Handle = splitIMHandle(handle.Handle)
				default:
					if st, ok := ParseIMServiceType(token); ok {
						handle.Service = st
						handle.Handle = strings.TrimPrefix(handle.Handle, st.SchemePrefix())
					} else if it, ok := ParseItemType(token); ok {
						handle.ItemType = it
					}
				}
			}
		}
	}
	c.IMHandles = append(c.IMHandles, handle)
}

func readCertificate(c *Contact, p *Property) {
	data := p.Bytes()
	if data == nil {
		return
	}
	keyType := ""
	if sub, ok := p.Subproperties.Get("X509"); ok && sub.Value == "" {
		keyType = "X509"
	}
	cert, err := NewCertificate(keyType, data)
	if err != nil {
		return
	}
	c.Certificates = append(c.Certificates, cert)
}

// readName assigns the up-to-five N components in order, stopping when the
// split runs out: a two-component N sets only family and given, the rest
// keep their defaults.
func readName(c *Contact, p *Property) {
	parts := strings.Split(p.Text(), ";")
	fields := []*string{
		&c.FamilyName, &c.GivenName, &c.AdditionalNames,
		&c.NamePrefix, &c.NameSuffix,
	}
	for i, field := range fields {
		if i >= len(parts) {
			break
		}
		*field = strings.TrimSpace(parts[i])
	}
}

func readOrganization(c *Contact, p *Property) {
	value := p.Text()
	// Some generators leave a trailing empty department separator.
	value = strings.TrimSuffix(value, ";")
	parts := strings.Split(value, ";")
	fields := []*string{&c.Organization, &c.Department, &c.Office}
	for i, field := range fields {
		if i >= len(parts) {
			break
		}
		*field = strings.TrimSpace(parts[i])
	}
}

func readPhoto(c *Contact, p *Property) {
	if v := p.Subproperties.Value("VALUE"); strings.EqualFold(v, "URI") || strings.EqualFold(v, "URL") {
		if url := p.Text(); url != "" {
			c.Photos = append(c.Photos, Photo{URL: url})
		}
		return
	}
	if data := p.Bytes(); data != nil {
		c.Photos = append(c.Photos, Photo{Data: data})
		return
	}
	// A string value without a declared BASE64 encoding is kept verbatim:
	// re-encoding it could alter the original bytes.
	if text := p.Text(); text != "" {
		c.Photos = append(c.Photos, Photo{EncodedData: text})
	}
}

func readPhone(c *Contact, p *Property) {
	phone := Phone{FullNumber: p.Text()}
	for _, s := range p.Subproperties {
		if strings.EqualFold(s.Name, "TYPE") && s.Value != "" {
			for _, token := range strings.Split(s.Value, ",") {
				phone.Type |= ParsePhoneType(token)
			}
		} else {
			// Legacy 2.1 multi-flag form: TEL;WORK;VOICE:
			phone.Type |= ParsePhoneType(s.Name)
		}
	}
	c.Phones = append(c.Phones, phone)
}

func readWebsite(c *Contact, p *Property) {
	url := p.Text()
	if url == "" {
		return
	}
	site := Website{URL: url}
	for _, s := range p.Subproperties {
		if strings.EqualFold(s.Name, "TYPE") && s.Value != "" {
			for _, token := range strings.Split(s.Value, ",") {
				site.Type |= ParseWebsiteType(token)
			}
		} else if s.Value == "" {
			site.Type |= ParseWebsiteType(s.Name)
		}
	}
	c.Websites = append(c.Websites, site)
}

func readSocialProfile(c *Contact, p *Property) {
	profile := SocialProfile{
		URL:      p.Text(),
		Username: p.Subproperties.Value("X-USER"),
	}
	for _, v := range p.Subproperties.Values("TYPE") {
		for _, token := range strings.Split(v, ",") {
			if st, ok := ParseSocialProfileType(token); ok {
				// Last recognized token wins.
				profile.Service = st
			}
		}
	}
	c.SocialProfiles = append(c.SocialProfiles, profile)
}

// dateFormats are tried in order for BDAY and ANNIVERSARY values; the
// Outlook separator-free form comes last.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"20060102",
}

// dateTimeFormats are tried in order for REV values.
var dateTimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"20060102T150405Z",
	"20060102T150405",
	"2006-01-02",
	"20060102",
}

func parseDate(value string) (time.Time, bool) {
	return parseWithFormats(value, dateFormats)
}

func parseDateTime(value string) (time.Time, bool) {
	return parseWithFormats(value, dateTimeFormats)
}

func parseWithFormats(value string, formats []string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
