// Package validator screens customer contact data for implausible or throwaway values
// before an order is persisted.
package validator

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sliramanoel/venda/internal/i18n"

	"golang.org/x/text/language"
)

// Reason explains why a value was rejected. The zero Reason means the value passed.
type Reason struct {
	Key  i18n.Key
	Args []any
}

// Localize renders the reason in the given language.
func (r Reason) Localize(tag language.Tag) string {
	if r.Key == "" {
		return ""
	}
	return i18n.Sprintf(tag, r.Key, r.Args...)
}

func (r Reason) String() string {
	return r.Localize(i18n.Portuguese)
}

func reject(key i18n.Key, args ...any) (bool, Reason) {
	return false, Reason{Key: key, Args: args}
}

var disposableEmailDomains = map[string]struct{}{
	"10minutemail.com": {}, "10minutemail.net": {}, "tempmail.com": {}, "temp-mail.org": {},
	"guerrillamail.com": {}, "guerrillamail.org": {}, "mailinator.com": {}, "mailinator.net": {},
	"throwaway.email": {}, "throwawaymail.com": {}, "fakeinbox.com": {}, "trashmail.com": {},
	"trashmail.net": {}, "mailnesia.com": {}, "tempail.com": {}, "dispostable.com": {},
	"sharklasers.com": {}, "spam4.me": {}, "maildrop.cc": {}, "getairmail.com": {},
	"getnada.com": {}, "yopmail.com": {}, "yopmail.fr": {}, "yopmail.net": {},
	"mohmal.com": {}, "emailondeck.com": {}, "tempr.email": {}, "discard.email": {},
	"dropmail.me": {}, "mailcatch.com": {}, "mintemail.com": {}, "mytemp.email": {},
	"spamgourmet.com": {}, "harakirimail.com": {}, "mailexpire.com": {}, "tempinbox.com": {},
	"fake-box.com": {}, "fakemail.fr": {}, "tempmailaddress.com": {}, "emailfake.com": {},
	"emkei.cz": {}, "mailsac.com": {}, "inboxkitten.com": {}, "burnermail.io": {},
}

// Freemail providers exempt from the test-address check.
var majorEmailProviders = map[string]struct{}{
	"gmail.com": {}, "hotmail.com": {}, "outlook.com": {}, "yahoo.com": {},
}

var validDDD = map[string]struct{}{
	"11": {}, "12": {}, "13": {}, "14": {}, "15": {}, "16": {}, "17": {}, "18": {}, "19": {},
	"21": {}, "22": {}, "24": {},
	"27": {}, "28": {},
	"31": {}, "32": {}, "33": {}, "34": {}, "35": {}, "37": {}, "38": {},
	"41": {}, "42": {}, "43": {}, "44": {}, "45": {}, "46": {},
	"47": {}, "48": {}, "49": {},
	"51": {}, "53": {}, "54": {}, "55": {},
	"61": {},
	"62": {}, "64": {},
	"63": {},
	"65": {}, "66": {},
	"67": {},
	"68": {},
	"69": {},
	"71": {}, "73": {}, "74": {}, "75": {}, "77": {},
	"79": {},
	"81": {}, "82": {}, "83": {}, "84": {}, "85": {}, "86": {}, "87": {}, "88": {}, "89": {},
	"91": {}, "92": {}, "93": {}, "94": {}, "95": {}, "96": {}, "97": {}, "98": {}, "99": {},
}

var brazilianStates = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {}, "ES": {}, "GO": {},
	"MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {}, "PB": {}, "PR": {}, "PE": {}, "PI": {},
	"RJ": {}, "RN": {}, "RS": {}, "RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	fakePhonePrefixes   = []string{"12345", "11111", "00000", "99999"}
	testEmailPrefixes   = []string{"test", "fake", "example", "asdf", "qwerty", "aaa", "xxx", "123"}
	emailKeyboardMashes = []string{"qwerty", "asdfgh", "zxcvbn", "qazwsx"}
	nameKeyboardMashes  = []string{"asdf", "qwer", "zxcv"}
)

const (
	ascendingDigits  = "0123456789"
	descendingDigits = "9876543210"
)

// ValidateName rejects names that do not look like a real first and last name.
func ValidateName(name string) (bool, Reason) {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < 5 {
		return reject(i18n.NameTooShort)
	}

	words := strings.Fields(name)
	if len(words) < 2 {
		return reject(i18n.NameNeedSurname)
	}
	for _, word := range words {
		if utf8.RuneCountInString(word) < 2 {
			return reject(i18n.NameInvalid)
		}
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return reject(i18n.NameLettersOnly)
		}
	}

	for _, word := range words {
		if utf8.RuneCountInString(word) > 2 && distinctRunes(strings.ToLower(word)) == 1 {
			return reject(i18n.NameInvalid)
		}
	}

	lower := strings.ToLower(name)
	for _, mash := range nameKeyboardMashes {
		if strings.Contains(lower, mash) {
			return reject(i18n.NameInvalid)
		}
	}

	return true, Reason{}
}

// ValidateBrazilianPhone accepts 10 or 11 digit numbers with a real DDD and rejects
// obviously fabricated digit patterns.
func ValidateBrazilianPhone(phone string) (bool, Reason) {
	digits := Digits(phone)

	if len(digits) < 10 || len(digits) > 11 {
		return reject(i18n.PhoneLength)
	}

	ddd := digits[:2]
	if _, ok := validDDD[ddd]; !ok {
		return reject(i18n.PhoneInvalidDDD, ddd)
	}

	local := digits[2:]
	if len(local) == 9 && local[0] != '9' {
		return reject(i18n.PhoneMobilePrefix)
	}
	if len(local) == 8 && !strings.ContainsRune("2345", rune(local[0])) {
		return reject(i18n.PhoneLandline)
	}

	if len(digits) >= 8 && distinctRunes(digits) == 1 {
		return reject(i18n.PhoneInvalid)
	}
	for _, prefix := range fakePhonePrefixes {
		if strings.HasPrefix(digits, prefix) {
			return reject(i18n.PhoneInvalid)
		}
	}
	if longestRun(digits) >= 6 {
		return reject(i18n.PhoneInvalid)
	}
	if hasSequentialRun(digits, 6) {
		return reject(i18n.PhoneInvalid)
	}

	return true, Reason{}
}

// ValidateEmail rejects malformed, disposable and placeholder addresses.
func ValidateEmail(email string) (bool, Reason) {
	email = strings.ToLower(strings.TrimSpace(email))

	if !emailPattern.MatchString(email) {
		return reject(i18n.EmailFormat)
	}

	local, domain, _ := strings.Cut(email, "@")

	if _, ok := disposableEmailDomains[domain]; ok {
		return reject(i18n.EmailDisposable)
	}

	if len(local) < 3 {
		return reject(i18n.EmailTooShort)
	}

	if distinctRunes(strings.ReplaceAll(local, ".", "")) <= 2 {
		return reject(i18n.EmailInvalid)
	}

	if _, major := majorEmailProviders[domain]; !major {
		for _, prefix := range testEmailPrefixes {
			if strings.HasPrefix(local, prefix) {
				return reject(i18n.EmailTestLocal)
			}
		}
	}

	for _, mash := range emailKeyboardMashes {
		if strings.Contains(local, mash) {
			return reject(i18n.EmailInvalid)
		}
	}

	return true, Reason{}
}

// ValidateCEP requires an 8 digit postal code, formatted or not.
func ValidateCEP(cep string) (bool, Reason) {
	if len(Digits(cep)) != 8 {
		return reject(i18n.CEPInvalid)
	}
	return true, Reason{}
}

// ValidateState requires a two letter Brazilian federative unit.
func ValidateState(state string) (bool, Reason) {
	if _, ok := brazilianStates[strings.ToUpper(strings.TrimSpace(state))]; !ok {
		return reject(i18n.StateInvalid)
	}
	return true, Reason{}
}

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func distinctRunes(s string) int {
	seen := make(map[rune]struct{})
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func longestRun(s string) int {
	longest, current := 0, 0
	for i := 0; i < len(s); i++ {
		if i > 0 && s[i] == s[i-1] {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func hasSequentialRun(digits string, size int) bool {
	for i := 0; i+size <= len(ascendingDigits); i++ {
		if strings.Contains(digits, ascendingDigits[i:i+size]) ||
			strings.Contains(digits, descendingDigits[i:i+size]) {
			return true
		}
	}
	return false
}
