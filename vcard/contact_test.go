package vcard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcard-codec/vcard"
)

func TestNewPhotoValidation(t *testing.T) {
	_, err := vcard.NewPhoto(nil)
	assert.Error(t, err)

	_, err = vcard.NewPhoto([]byte{})
	assert.Error(t, err)

	photo, err := vcard.NewPhoto([]byte{1})
	require.NoError(t, err)
	assert.True(t, photo.Loaded())
}

func TestNewPhotoURLValidation(t *testing.T) {
	_, err := vcard.NewPhotoURL("")
	assert.Error(t, err)

	photo, err := vcard.NewPhotoURL("http://example.com/me.jpg")
	require.NoError(t, err)
	assert.False(t, photo.Loaded())
	assert.Equal(t, "http://example.com/me.jpg", photo.URL)
}

func TestNewCertificateValidation(t *testing.T) {
	_, err := vcard.NewCertificate("X509", nil)
	assert.Error(t, err)

	cert, err := vcard.NewCertificate("X509", []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "X509", cert.KeyType)

	// A KEY property without a recognized type flag has an empty key type;
	// that is allowed.
	_, err = vcard.NewCertificate("", []byte{1})
	assert.NoError(t, err)
}

func TestDeliveryAddressIsBlank(t *testing.T) {
	assert.True(t, vcard.DeliveryAddress{}.IsBlank())
	assert.True(t, vcard.DeliveryAddress{Types: []vcard.AddressType{vcard.AddressHome}}.IsBlank())
	assert.False(t, vcard.DeliveryAddress{City: "Springfield"}.IsBlank())
}

func TestDeliveryAddressHasType(t *testing.T) {
	addr := vcard.DeliveryAddress{Types: []vcard.AddressType{vcard.AddressWork, vcard.AddressPreferred}}
	assert.True(t, addr.HasType(vcard.AddressWork))
	assert.True(t, addr.HasType(vcard.AddressPreferred))
	assert.False(t, addr.HasType(vcard.AddressHome))
}

func TestPhoneTypeFlags(t *testing.T) {
	p := vcard.Phone{Type: vcard.PhoneCellularVoice | vcard.PhonePreferred}
	assert.True(t, p.IsCellular())
	assert.True(t, p.IsVoice())
	assert.True(t, p.IsPreferred())
	assert.False(t, p.IsWork())

	// Compound constants are unions of the single-bit values, not
	// independent patterns.
	assert.Equal(t, vcard.PhoneCellular|vcard.PhoneVoice, vcard.PhoneCellularVoice)
}

func TestParsePhoneTypeTokens(t *testing.T) {
	assert.Equal(t, vcard.PhoneCellular, vcard.ParsePhoneType("cell"))
	assert.Equal(t, vcard.PhoneWork, vcard.ParsePhoneType(" WORK "))
	assert.Equal(t, vcard.PhoneDefault, vcard.ParsePhoneType("carrier-pigeon"))
}

func TestContactDefaultsAreEmpty(t *testing.T) {
	c := vcard.NewContact()
	assert.Equal(t, "", c.FormattedName)
	assert.Equal(t, "", c.UniqueID)
	assert.Nil(t, c.BirthDate)
	assert.Empty(t, c.Emails)
	assert.Equal(t, vcard.GenderUnknown, c.Gender)
}
