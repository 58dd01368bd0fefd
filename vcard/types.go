package vcard

import "strings"

// PhoneType is a bit set describing what kind of telephone number a Phone
// record holds. A single number may carry several flags at once, e.g.
// Home|Voice|Preferred.
type PhoneType uint32

// PhoneDefault carries no type information.
const PhoneDefault PhoneType = 0

const (
	PhoneBBS PhoneType = 1 << iota
	PhoneCar
	PhoneCellular
	PhoneFax
	PhoneHome
	PhoneISDN
	PhoneMessagingService
	PhoneModem
	PhonePager
	PhonePreferred
	PhoneVideo
	PhoneVoice
	PhoneWork
	PhoneIPhone
	PhoneMain
)

// Compound convenience values. These are derived from the single-bit
// constants rather than being independent bit patterns.
const (
	PhoneCellularVoice = PhoneCellular | PhoneVoice
	PhoneWorkVoice     = PhoneWork | PhoneVoice
	PhoneHomeVoice     = PhoneHome | PhoneVoice
	PhoneWorkFax       = PhoneWork | PhoneFax
	PhoneHomeFax       = PhoneHome | PhoneFax
)

// phoneTypeTokens maps vCard TYPE tokens (uppercased) to phone type bits.
var phoneTypeTokens = map[string]PhoneType{
	"BBS":    PhoneBBS,
	"CAR":    PhoneCar,
	"CELL":   PhoneCellular,
	"FAX":    PhoneFax,
	"HOME":   PhoneHome,
	"ISDN":   PhoneISDN,
	"MSG":    PhoneMessagingService,
	"MODEM":  PhoneModem,
	"PAGER":  PhonePager,
	"PREF":   PhonePreferred,
	"VIDEO":  PhoneVideo,
	"VOICE":  PhoneVoice,
	"WORK":   PhoneWork,
	"IPHONE": PhoneIPhone,
	"MAIN":   PhoneMain,
}

// phoneTypeOrder fixes the emission order of TYPE tokens on write.
var phoneTypeOrder = []struct {
	bit   PhoneType
	token string
}{
	{PhoneBBS, "BBS"},
	{PhoneCar, "CAR"},
	{PhoneCellular, "CELL"},
	{PhoneFax, "FAX"},
	{PhoneHome, "HOME"},
	{PhoneISDN, "ISDN"},
	{PhoneMessagingService, "MSG"},
	{PhoneModem, "MODEM"},
	{PhonePager, "PAGER"},
	{PhonePreferred, "PREF"},
	{PhoneVideo, "VIDEO"},
	{PhoneVoice, "VOICE"},
	{PhoneWork, "WORK"},
	{PhoneIPhone, "IPHONE"},
	{PhoneMain, "MAIN"},
}

// ParsePhoneType maps a single TYPE token to its phone type bit.
// Unrecognized tokens map to PhoneDefault and contribute no bits.
func ParsePhoneType(token string) PhoneType {
	return phoneTypeTokens[strings.ToUpper(strings.TrimSpace(token))]
}

// Has reports whether every bit of flag is set.
func (t PhoneType) Has(flag PhoneType) bool { return t&flag == flag }

// EmailType identifies the (mostly legacy vendor) email system an address
// belongs to. Internet is the value for ordinary SMTP addresses and the
// default assigned on parse when no type token matches.
type EmailType int

const (
	EmailInternet EmailType = iota
	EmailAOL
	EmailAppleLink
	EmailATTMail
	EmailCompuServe
	EmailEWorld
	EmailIBMMail
	EmailMCIMail
	EmailPowerShare
	EmailProdigy
	EmailTelex
	EmailX400
)

var emailTypeTokens = map[string]EmailType{
	"INTERNET":   EmailInternet,
	"AOL":        EmailAOL,
	"APPLELINK":  EmailAppleLink,
	"ATTMAIL":    EmailATTMail,
	"CIS":        EmailCompuServe,
	"EWORLD":     EmailEWorld,
	"IBMMAIL":    EmailIBMMail,
	"MCIMAIL":    EmailMCIMail,
	"POWERSHARE": EmailPowerShare,
	"PRODIGY":    EmailProdigy,
	"TLX":        EmailTelex,
	"X400":       EmailX400,
}

var emailTypeNames = map[EmailType]string{
	EmailInternet:   "INTERNET",
	EmailAOL:        "AOL",
	EmailAppleLink:  "APPLELINK",
	EmailATTMail:    "ATTMAIL",
	EmailCompuServe: "CIS",
	EmailEWorld:     "EWORLD",
	EmailIBMMail:    "IBMMAIL",
	EmailMCIMail:    "MCIMAIL",
	EmailPowerShare: "POWERSHARE",
	EmailProdigy:    "PRODIGY",
	EmailTelex:      "TLX",
	EmailX400:       "X400",
}

// ParseEmailType resolves a TYPE token to an email type. The second return
// value reports whether the token was recognized.
func ParseEmailType(token string) (EmailType, bool) {
	t, ok := emailTypeTokens[strings.ToUpper(strings.TrimSpace(token))]
	return t, ok
}

// Token returns the vCard TYPE token for the email type.
func (t EmailType) Token() string { return emailTypeNames[t] }

// ItemType is the HOME/WORK classification orthogonal to a field's own
// functional type: an email can be Internet and Work at the same time.
type ItemType int

const (
	ItemUnspecified ItemType = iota
	ItemHome
	ItemWork
)

// ParseItemType resolves a HOME/WORK token.
func ParseItemType(token string) (ItemType, bool) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "HOME":
		return ItemHome, true
	case "WORK":
		return ItemWork, true
	}
	return ItemUnspecified, false
}

// Token returns the vCard TYPE token for the item type, or "" for
// ItemUnspecified.
func (t ItemType) Token() string {
	switch t {
	case ItemHome:
		return "HOME"
	case ItemWork:
		return "WORK"
	}
	return ""
}

// AddressType is one classification tag of a delivery address or label.
// Addresses keep an ordered list of tags rather than a bit set because the
// textual TYPE list may repeat tokens.
type AddressType int

const (
	AddressDomestic AddressType = iota
	AddressInternational
	AddressPostal
	AddressParcel
	AddressHome
	AddressWork
	AddressPreferred
)

var addressTypeTokens = map[string]AddressType{
	"DOM":    AddressDomestic,
	"INTL":   AddressInternational,
	"POSTAL": AddressPostal,
	"PARCEL": AddressParcel,
	"HOME":   AddressHome,
	"WORK":   AddressWork,
	"PREF":   AddressPreferred,
}

var addressTypeNames = map[AddressType]string{
	AddressDomestic:      "DOM",
	AddressInternational: "INTL",
	AddressPostal:        "POSTAL",
	AddressParcel:        "PARCEL",
	AddressHome:          "HOME",
	AddressWork:          "WORK",
	AddressPreferred:     "PREF",
}

// ParseAddressType resolves an address TYPE token.
func ParseAddressType(token string) (AddressType, bool) {
	t, ok := addressTypeTokens[strings.ToUpper(strings.TrimSpace(token))]
	return t, ok
}

// Token returns the vCard TYPE token for the address type.
func (t AddressType) Token() string { return addressTypeNames[t] }

// IMServiceType identifies the instant-messenger network of an IM handle.
type IMServiceType int

const (
	IMUnspecified IMServiceType = iota
	IMSkype
	IMAIM
	IMGoogleTalk
	IMMSN
	IMYahoo
	IMFacebook
	IMJabber
	IMICQ
	IMQQ
	IMGaduGadu
)

var imServiceTokens = map[string]IMServiceType{
	"SKYPE":       IMSkype,
	"AIM":         IMAIM,
	"GOOGLETALK":  IMGoogleTalk,
	"GOOGLE TALK": IMGoogleTalk,
	"GTALK":       IMGoogleTalk,
	"MSN":         IMMSN,
	"YAHOO":       IMYahoo,
	"FACEBOOK":    IMFacebook,
	"JABBER":      IMJabber,
	"XMPP":        IMJabber,
	"ICQ":         IMICQ,
	"QQ":          IMQQ,
	"GADUGADU":    IMGaduGadu,
}

var imServiceNames = map[IMServiceType]string{
	IMSkype:      "Skype",
	IMAIM:        "AIM",
	IMGoogleTalk: "GoogleTalk",
	IMMSN:        "MSN",
	IMYahoo:      "Yahoo",
	IMFacebook:   "Facebook",
	IMJabber:     "Jabber",
	IMICQ:        "ICQ",
	IMQQ:         "QQ",
	IMGaduGadu:   "GaduGadu",
}

// imServiceSchemes maps a service to the URI scheme prefix its handles are
// written with. The reader strips the prefix when the service is known; the
// writer puts it back.
var imServiceSchemes = map[IMServiceType]string{
	IMSkype:      "skype:",
	IMAIM:        "aim:",
	IMGoogleTalk: "gtalk:",
	IMMSN:        "msnim:",
	IMYahoo:      "ymsgr:",
	IMFacebook:   "xmpp:",
	IMJabber:     "xmpp:",
	IMICQ:        "icq:",
	IMQQ:         "qq:",
	IMGaduGadu:   "gg:",
}

// ParseIMServiceType resolves a service name token (from TYPE= or
// X-SERVICE-TYPE=) to an IM service.
func ParseIMServiceType(token string) (IMServiceType, bool) {
	t, ok := imServiceTokens[strings.ToUpper(strings.TrimSpace(token))]
	return t, ok
}

// Name returns the canonical service name, or "" for IMUnspecified.
func (t IMServiceType) Name() string { return imServiceNames[t] }

// SchemePrefix returns the URI scheme prefix for handles of this service,
// or "" when the service has none.
func (t IMServiceType) SchemePrefix() string { return imServiceSchemes[t] }

// SocialProfileType identifies the network of a social profile entry.
type SocialProfileType int

const (
	SocialUnspecified SocialProfileType = iota
	SocialFacebook
	SocialLinkedIn
	SocialTwitter
	SocialFlickr
	SocialMyspace
)

var socialProfileTokens = map[string]SocialProfileType{
	"FACEBOOK": SocialFacebook,
	"LINKEDIN": SocialLinkedIn,
	"TWITTER":  SocialTwitter,
	"FLICKR":   SocialFlickr,
	"MYSPACE":  SocialMyspace,
}

var socialProfileNames = map[SocialProfileType]string{
	SocialFacebook: "facebook",
	SocialLinkedIn: "linkedin",
	SocialTwitter:  "twitter",
	SocialFlickr:   "flickr",
	SocialMyspace:  "myspace",
}

// ParseSocialProfileType resolves a TYPE token to a social network.
func ParseSocialProfileType(token string) (SocialProfileType, bool) {
	t, ok := socialProfileTokens[strings.ToUpper(strings.TrimSpace(token))]
	return t, ok
}

// Token returns the lowercase TYPE token for the network, or "" for
// SocialUnspecified.
func (t SocialProfileType) Token() string { return socialProfileNames[t] }

// WebsiteType is a bit set classifying a website entry.
type WebsiteType uint8

// WebsiteDefault carries no type information.
const WebsiteDefault WebsiteType = 0

const (
	WebsitePersonal WebsiteType = 1 << iota
	WebsiteWork
)

// ParseWebsiteType resolves a URL TYPE token to a website type bit.
func ParseWebsiteType(token string) WebsiteType {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "HOME", "PERSONAL":
		return WebsitePersonal
	case "WORK":
		return WebsiteWork
	}
	return WebsiteDefault
}

// Has reports whether every bit of flag is set.
func (t WebsiteType) Has(flag WebsiteType) bool { return t&flag == flag }

// Gender is the X-WAB-GENDER classification of a contact.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderFemale
	GenderMale
)
