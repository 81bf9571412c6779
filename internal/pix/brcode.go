// Package pix assembles static PIX charges in the BR-Code (EMV QR) text format.
package pix

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	idPayloadFormat     = "00"
	idMerchantAccount   = "26"
	idMerchantCategory  = "52"
	idCurrency          = "53"
	idAmount            = "54"
	idCountry           = "58"
	idMerchantName      = "59"
	idMerchantCity      = "60"
	idAdditionalData    = "62"
	idCRC               = "63"
	idAccountGUI        = "00"
	idAccountKey        = "01"
	idAdditionalTxID    = "05"
	pixGUI              = "br.gov.bcb.pix"
	currencyBRL         = "986"
	countryBR           = "BR"
	merchantCategory    = "0000"
	payloadFormat       = "01"
	crcPlaceholder      = idCRC + "04"
	maxMerchantName     = 25
	maxMerchantCity     = 15
	keySuffixLength     = 8
	txIDSuffixLength    = 10
	txIDPrefix          = "NV"
	DefaultMerchantCity = "SAO PAULO"
	DefaultKeyDomain    = "neurovita.com.br"
)

// MaxKeyDomainLength keeps the templated PIX key, and so the "26" block, within the
// two-digit TLV length.
const MaxKeyDomainLength = 64

// Generator builds BR-Code payloads for a merchant.
type Generator struct {
	MerchantName string
	MerchantCity string
	KeyDomain    string

	// FoldMerchantName uppercases the name and strips its diacritics before the cut.
	FoldMerchantName bool
}

// Payload returns the complete BR-Code, CRC included, for an order and amount.
// It is total: any order id and amount produce a well-formed payload.
func (g Generator) Payload(orderID string, amount float64) string {
	account := formatField(idAccountGUI, pixGUI) +
		formatField(idAccountKey, g.pixKey(orderID))

	var b strings.Builder
	b.WriteString(formatField(idPayloadFormat, payloadFormat))
	b.WriteString(formatField(idMerchantAccount, account))
	b.WriteString(formatField(idMerchantCategory, merchantCategory))
	b.WriteString(formatField(idCurrency, currencyBRL))
	b.WriteString(formatField(idAmount, FormatAmount(amount)))
	b.WriteString(formatField(idCountry, countryBR))
	b.WriteString(formatField(idMerchantName, g.merchantName()))
	b.WriteString(formatField(idMerchantCity, g.merchantCity()))
	b.WriteString(formatField(idAdditionalData, formatField(idAdditionalTxID, TxID(orderID))))
	b.WriteString(crcPlaceholder)

	payload := b.String()
	return payload + fmt.Sprintf("%04X", CRC16([]byte(payload)))
}

// TxID is the reference embedded in the additional data field of an order's code.
func TxID(orderID string) string {
	return txIDPrefix + strings.ToUpper(suffix(orderID, txIDSuffixLength))
}

// FormatAmount renders an amount with exactly two decimals and a dot separator.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func (g Generator) pixKey(orderID string) string {
	domain := g.KeyDomain
	if domain == "" || utf8.RuneCountInString(domain) > MaxKeyDomainLength {
		domain = DefaultKeyDomain
	}
	return fmt.Sprintf("pix.%s@%s", strings.ToLower(suffix(orderID, keySuffixLength)), domain)
}

// merchantName is the configured name cut to 25 characters.
func (g Generator) merchantName() string {
	name := g.MerchantName
	if g.FoldMerchantName {
		name = normalizeText(name)
	}
	if r := []rune(name); len(r) > maxMerchantName {
		return string(r[:maxMerchantName])
	}
	return name
}

func (g Generator) merchantCity() string {
	city := normalizeText(g.MerchantCity)
	if city == "" {
		city = DefaultMerchantCity
	}
	return truncate(city, maxMerchantCity)
}

func formatField(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, utf8.RuneCountInString(value), value)
}

// suffix returns the last n letters and digits of s.
func suffix(s string, n int) string {
	alnum := []rune(strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, s))
	if len(alnum) > n {
		alnum = alnum[len(alnum)-n:]
	}
	return string(alnum)
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeText drops diacritics and uppercases, as bank apps expect plain ASCII names.
func normalizeText(s string) string {
	plain, _, err := transform.String(stripMarks, s)
	if err != nil {
		plain = s
	}
	return strings.ToUpper(strings.Join(strings.Fields(plain), " "))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
