package vcard_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vcard-codec/vcard"
)

func writeCard(t *testing.T, c *vcard.Contact) string {
	t.Helper()
	w := vcard.NewWriter(vcard.DefaultWriterOptions())
	text, err := w.WriteString(c)
	require.NoError(t, err)
	return text
}

func parseBack(t *testing.T, text string) *vcard.Contact {
	t.Helper()
	r := vcard.NewReader(strings.NewReader(text))
	contact, err := r.ReadContact()
	require.NoError(t, err)
	return contact
}

func TestWriteFraming(t *testing.T) {
	text := writeCard(t, vcard.NewContact())
	lines := strings.Split(strings.TrimRight(text, "\r\n"), "\r\n")

	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "BEGIN:VCARD", lines[0])
	assert.Equal(t, "VERSION:3.0", lines[1])
	assert.Equal(t, "END:VCARD", lines[len(lines)-1])
}

func TestWriteNameAlwaysEmitted(t *testing.T) {
	text := writeCard(t, vcard.NewContact())
	assert.Contains(t, text, "N:;;;;\r\n")
}

func TestWriteSkipsEmptyProperties(t *testing.T) {
	text := writeCard(t, vcard.NewContact())
	for _, name := range []string{"FN:", "TEL", "EMAIL", "ADR", "ORG", "NOTE", "URL"} {
		assert.NotContains(t, text, "\r\n"+name)
	}
}

func TestWritePhoneTypeSubproperties(t *testing.T) {
	c := vcard.NewContact()
	c.Phones = append(c.Phones, vcard.Phone{
		FullNumber: "555-1212",
		Type:       vcard.PhoneHome | vcard.PhoneVoice,
	})

	text := writeCard(t, c)
	// One TYPE= subproperty per flag, not a comma-joined list.
	assert.Contains(t, text, "TEL;TYPE=HOME;TYPE=VOICE:555-1212\r\n")
}

func TestWritePhoneVoiceWithoutHomeWorkGetsOther(t *testing.T) {
	c := vcard.NewContact()
	c.Phones = append(c.Phones, vcard.Phone{FullNumber: "1", Type: vcard.PhoneVoice})
	c.Phones = append(c.Phones, vcard.Phone{FullNumber: "2", Type: vcard.PhoneFax})
	c.Phones = append(c.Phones, vcard.Phone{FullNumber: "3", Type: vcard.PhoneHomeVoice})

	text := writeCard(t, c)
	assert.Contains(t, text, "TEL;TYPE=VOICE;TYPE=OTHER:1\r\n")
	assert.Contains(t, text, "TEL;TYPE=FAX;TYPE=OTHER:2\r\n")
	assert.Contains(t, text, "TEL;TYPE=HOME;TYPE=VOICE:3\r\n")
}

func TestWriteBlankLabelSkipped(t *testing.T) {
	c := vcard.NewContact()
	c.Labels = append(c.Labels, vcard.DeliveryLabel{Types: []vcard.AddressType{vcard.AddressHome}})
	c.Labels = append(c.Labels, vcard.DeliveryLabel{Text: "22 Acacia Avenue"})

	text := writeCard(t, c)
	assert.Equal(t, 1, strings.Count(text, "LABEL"))
	assert.Contains(t, text, "LABEL:22 Acacia Avenue\r\n")
}

func TestWriteBlankAddressSkipped(t *testing.T) {
	c := vcard.NewContact()
	c.Addresses = append(c.Addresses, vcard.DeliveryAddress{Types: []vcard.AddressType{vcard.AddressWork}})

	text := writeCard(t, c)
	assert.NotContains(t, text, "ADR")
}

func TestWriteEscapesValue(t *testing.T) {
	c := vcard.NewContact()
	c.Notes = append(c.Notes, vcard.Note{Text: "a,b;c\nd"})

	text := writeCard(t, c)
	assert.Contains(t, text, `NOTE:a\,b\;c\nd`+"\r\n")
}

func TestWriteIgnoreCommasOption(t *testing.T) {
	c := vcard.NewContact()
	c.Notes = append(c.Notes, vcard.Note{Text: "a,b;c"})

	opts := vcard.DefaultWriterOptions()
	opts.IgnoreCommas = true
	text, err := vcard.NewWriter(opts).WriteString(c)
	require.NoError(t, err)
	assert.Contains(t, text, `NOTE:a,b\;c`+"\r\n")
}

func TestWriteHonorsQuotedPrintableSubproperty(t *testing.T) {
	// The writer never sets this subproperty itself, so inject a property
	// directly instead of going through the builders.
	prop := vcard.NewProperty("NOTE", "a=b")
	prop.Subproperties.Add("ENCODING", "QUOTED-PRINTABLE")

	w := vcard.NewWriter(vcard.DefaultWriterOptions())
	var sb strings.Builder
	require.NoError(t, w.EncodeProperty(&sb, prop))
	assert.Equal(t, "NOTE;ENCODING=QUOTED-PRINTABLE:a=3Db\r\n", sb.String())
}

func TestWritePhotoBytes(t *testing.T) {
	c := vcard.NewContact()
	photo, err := vcard.NewPhoto([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	c.Photos = append(c.Photos, photo)

	text := writeCard(t, c)
	assert.Contains(t, text, "PHOTO;TYPE=JPEG;ENCODING=b:AQIDBA==\r\n")
}

func TestWritePhotoEncodedStringVerbatim(t *testing.T) {
	c := vcard.NewContact()
	c.Photos = append(c.Photos, vcard.Photo{EncodedData: "AQIDBA=="})

	text := writeCard(t, c)
	// The string already holds base64; it is tagged but never re-encoded.
	assert.Contains(t, text, "PHOTO;TYPE=JPEG;ENCODING=b:AQIDBA==\r\n")
}

func TestWritePhotoRemoteLinkByDefault(t *testing.T) {
	c := vcard.NewContact()
	c.Photos = append(c.Photos, vcard.Photo{URL: "http://example.com/me.jpg"})

	text := writeCard(t, c)
	// A link photo is a URL, not base64; no ENCODING tag may appear.
	assert.Contains(t, text, "PHOTO;VALUE=URI:http://example.com/me.jpg\r\n")
	assert.NotContains(t, text, "ENCODING")
}

func TestWritePhotoLinkReadsBackCleanly(t *testing.T) {
	c := vcard.NewContact()
	c.Photos = append(c.Photos, vcard.Photo{URL: "http://example.com/me.jpg"})

	text := writeCard(t, c)
	r := vcard.NewReader(strings.NewReader(text))
	got, err := r.ReadContact()
	require.NoError(t, err)
	assert.Empty(t, r.Warnings)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, "http://example.com/me.jpg", got.Photos[0].URL)
	assert.Empty(t, got.Photos[0].EncodedData)
}

func TestEncodePropertyLeavesPropertyUntouched(t *testing.T) {
	prop := &vcard.Property{Name: "PHOTO", Value: []byte{1, 2, 3, 4}}

	w := vcard.NewWriter(vcard.DefaultWriterOptions())
	var first, second strings.Builder
	require.NoError(t, w.EncodeProperty(&first, prop))
	require.NoError(t, w.EncodeProperty(&second, prop))

	// The implied ENCODING tag must not accumulate on the property across
	// encodes.
	assert.Equal(t, "PHOTO;ENCODING=b:AQIDBA==\r\n", first.String())
	assert.Equal(t, first.String(), second.String())
	assert.Empty(t, prop.Subproperties)
}

func TestWritePhotoRemoteEmbedded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{1, 2, 3, 4})
	}))
	defer server.Close()

	c := vcard.NewContact()
	c.Photos = append(c.Photos, vcard.Photo{URL: server.URL + "/me.jpg"})

	opts := vcard.DefaultWriterOptions()
	opts.EmbedInternetImages = true
	opts.Logger = zaptest.NewLogger(t)
	text, err := vcard.NewWriter(opts).WriteString(c)
	require.NoError(t, err)
	assert.Contains(t, text, "PHOTO;TYPE=JPEG;ENCODING=b:AQIDBA==\r\n")
}

func TestWritePhotoFetchFailureFallsBackToLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	c := vcard.NewContact()
	url := server.URL + "/missing.jpg"
	c.Photos = append(c.Photos, vcard.Photo{URL: url})

	opts := vcard.DefaultWriterOptions()
	opts.EmbedInternetImages = true
	opts.Logger = zaptest.NewLogger(t)
	text, err := vcard.NewWriter(opts).WriteString(c)
	require.NoError(t, err)
	assert.Contains(t, text, "PHOTO;VALUE=URI:"+url+"\r\n")
}

func TestWritePhotoLocalFileEmbedded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "me.jpg")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	c := vcard.NewContact()
	c.Photos = append(c.Photos, vcard.Photo{URL: path})

	text := writeCard(t, c) // EmbedLocalImages defaults to true
	assert.Contains(t, text, "PHOTO;TYPE=JPEG;ENCODING=b:AQIDBA==\r\n")
}

func TestWriteProductIDPrecedence(t *testing.T) {
	opts := vcard.DefaultWriterOptions()
	opts.ProductID = "-//Configured//EN"

	c := vcard.NewContact()
	text, err := vcard.NewWriter(opts).WriteString(c)
	require.NoError(t, err)
	assert.Contains(t, text, "PRODID:-//Configured//EN\r\n")

	c.ProductID = "-//OnContact//EN"
	text, err = vcard.NewWriter(opts).WriteString(c)
	require.NoError(t, err)
	assert.Contains(t, text, "PRODID:-//OnContact//EN\r\n")
}

func representativeContact(t *testing.T) *vcard.Contact {
	t.Helper()
	birth := time.Date(1980, time.March, 5, 0, 0, 0, 0, time.UTC)
	rev := time.Date(2023, time.July, 1, 12, 30, 0, 0, time.UTC)
	photo, err := vcard.NewPhoto([]byte{0xFF, 0xD8, 0x01, 0x02})
	require.NoError(t, err)

	c := vcard.NewContact()
	c.FamilyName = "Doe"
	c.GivenName = "Jane"
	c.AdditionalNames = "Q"
	c.NamePrefix = "Dr."
	c.NameSuffix = "PhD"
	c.FormattedName = "Dr. Jane Q Doe PhD"
	c.Organization = "Acme"
	c.Department = "R&D"
	c.Title = "Engineer"
	c.Role = "Programmer"
	c.UniqueID = "uid-42"
	c.TimeZone = "-05:00"
	c.AccessClassification = "PUBLIC"
	c.Gender = vcard.GenderFemale
	c.BirthDate = &birth
	c.RevisionDate = &rev
	c.Categories = []string{"Friends", "Golf"}
	c.Nicknames = []string{"JJ"}
	c.Emails = append(c.Emails, vcard.Email{
		Address:   "jane@example.com",
		Type:      vcard.EmailInternet,
		ItemType:  vcard.ItemWork,
		Preferred: true,
	})
	c.Phones = append(c.Phones, vcard.Phone{
		FullNumber: "555-1212",
		Type:       vcard.PhoneHome | vcard.PhoneVoice,
	})
	c.Addresses = append(c.Addresses, vcard.DeliveryAddress{
		Street:     "100 Main St",
		City:       "Springfield",
		Region:     "IL",
		PostalCode: "62704",
		Country:    "USA",
		Types:      []vcard.AddressType{vcard.AddressWork, vcard.AddressPreferred},
	})
	c.Notes = append(c.Notes, vcard.Note{Text: "likes golf, hates rain", Language: "en"})
	c.Photos = append(c.Photos, photo)
	c.Websites = append(c.Websites, vcard.Website{URL: "https://example.com/jane", Type: vcard.WebsiteWork})
	c.IMHandles = append(c.IMHandles, vcard.IMHandle{
		Handle:    "jane.doe",
		Service:   vcard.IMSkype,
		ItemType:  vcard.ItemWork,
		Preferred: true,
	})
	c.SocialProfiles = append(c.SocialProfiles, vcard.SocialProfile{
		Username: "jdoe",
		Service:  vcard.SocialTwitter,
		URL:      "https://twitter.com/jdoe",
	})
	return c
}

func TestRoundTrip(t *testing.T) {
	original := representativeContact(t)
	text := writeCard(t, original)
	got := parseBack(t, text)

	assert.Equal(t, original.FamilyName, got.FamilyName)
	assert.Equal(t, original.GivenName, got.GivenName)
	assert.Equal(t, original.AdditionalNames, got.AdditionalNames)
	assert.Equal(t, original.NamePrefix, got.NamePrefix)
	assert.Equal(t, original.NameSuffix, got.NameSuffix)
	assert.Equal(t, original.FormattedName, got.FormattedName)
	assert.Equal(t, original.Organization, got.Organization)
	assert.Equal(t, original.Department, got.Department)
	assert.Equal(t, original.Title, got.Title)
	assert.Equal(t, original.Role, got.Role)
	assert.Equal(t, original.UniqueID, got.UniqueID)
	assert.Equal(t, original.TimeZone, got.TimeZone)
	assert.Equal(t, original.AccessClassification, got.AccessClassification)
	assert.Equal(t, original.Gender, got.Gender)
	assert.Equal(t, original.Categories, got.Categories)
	assert.Equal(t, original.Nicknames, got.Nicknames)

	require.NotNil(t, got.BirthDate)
	assert.True(t, got.BirthDate.Equal(*original.BirthDate))
	require.NotNil(t, got.RevisionDate)
	assert.True(t, got.RevisionDate.Equal(*original.RevisionDate))

	require.Len(t, got.Emails, 1)
	assert.Equal(t, original.Emails[0], got.Emails[0])

	require.Len(t, got.Phones, 1)
	assert.Equal(t, original.Phones[0], got.Phones[0])
	assert.True(t, got.Phones[0].IsHome())
	assert.True(t, got.Phones[0].IsVoice())

	require.Len(t, got.Addresses, 1)
	assert.Equal(t, original.Addresses[0], got.Addresses[0])

	require.Len(t, got.Notes, 1)
	assert.Equal(t, original.Notes[0], got.Notes[0])

	require.Len(t, got.Photos, 1)
	assert.Equal(t, original.Photos[0].Data, got.Photos[0].Data)

	require.Len(t, got.Websites, 1)
	assert.Equal(t, original.Websites[0], got.Websites[0])

	require.Len(t, got.IMHandles, 1)
	assert.Equal(t, original.IMHandles[0], got.IMHandles[0])

	require.Len(t, got.SocialProfiles, 1)
	assert.Equal(t, original.SocialProfiles[0], got.SocialProfiles[0])
}

// After the first normalization pass, write -> read -> write must be
// textually idempotent.
func TestRoundTripTextuallyIdempotent(t *testing.T) {
	first := writeCard(t, representativeContact(t))
	second := writeCard(t, parseBack(t, first))
	assert.Equal(t, first, second)
}
