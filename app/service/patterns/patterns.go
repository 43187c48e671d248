package patterns

import (
	"regexp"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// Keyword categories are matched independently; detection only cares about how
// many distinct categories fire, so new rows can be added without touching the
// fusion logic.
var keywordTable = []struct {
	category string
	pattern  string
}{
	{"otp", `(?i)\b(otp|one.?time.?password)\b`},
	{"kyc", `(?i)\b(kyc|know.?your.?customer)\b`},
	{"urgency", `(?i)\b(urgent|immediately|expire|suspend)\b`},
	{"bait", `(?i)\b(refund|cashback|bonus|prize|lottery|winner)\b`},
	{"verification", `(?i)\b(verify|verification|validate)\b`},
	{"banking", `(?i)\b(bank.?account|account.?details|card.?number)\b`},
	{"upi_app", `(?i)\b(upi|gpay|paytm|phonepe|bhim)\b`},
	{"click_link", `(?i)\b(click.?here|click.?link|tap.?link)\b`},
	{"suspension", `(?i)\b(blocked|deactivated|suspended|locked)\b`},
	{"support", `(?i)\b(customer.?care|support.?team|helpline)\b`},
	{"payment", `(?i)\b(transfer|send.?money|payment)\b`},
	{"credentials", `(?i)\b(pin|cvv|password|credentials)\b`},
}

var shortenerDomains = []string{
	"bit.ly", "tinyurl", "goo.gl", "t.co", "rebrand.ly", "is.gd", "v.gd",
}

var upiSuffixes = []string{
	"@ybl", "@upi", "@paytm", "@oksbi", "@okicici", "@okhdfcbank",
	"@axl", "@ibl", "@sbi", "@icici", "@hdfc", "@axis", "@kotak",
	"@freecharge", "@apl", "@pnb", "@boi", "@cbin", "@federal",
}

type keywordPattern struct {
	category string
	re       *regexp.Regexp
}

type Library struct {
	keywords []keywordPattern

	urlRe     *regexp.Regexp
	upiRe     *regexp.Regexp
	accountRe *regexp.Regexp
	ifscRe    *regexp.Regexp
	phoneRe   *regexp.Regexp
	phoneSep  *regexp.Regexp
}

func New(_ *do.Injector) (*Library, error) {
	return NewLibrary(), nil
}

func NewLibrary() *Library {
	keywords := make([]keywordPattern, 0, len(keywordTable))
	for _, row := range keywordTable {
		keywords = append(keywords, keywordPattern{
			category: row.category,
			re:       regexp.MustCompile(row.pattern),
		})
	}

	return &Library{
		keywords:  keywords,
		urlRe:     regexp.MustCompile("(?i)https?://[^\\s<>\"{}|\\\\^`\\[\\]]+"),
		upiRe:     regexp.MustCompile(`(?i)\b([a-zA-Z0-9._-]+@[a-zA-Z]+)\b`),
		accountRe: regexp.MustCompile(`\b(\d{9,18})\b`),
		ifscRe:    regexp.MustCompile(`(?i)\b([A-Z]{4}0[A-Z0-9]{6})\b`),
		phoneRe:   regexp.MustCompile(`\b(?:\+91[-\s]?)?[6-9]\d{9}\b|\b(?:\+91[-\s]?)?\d{5}[-\s]?\d{5}\b`),
		phoneSep:  regexp.MustCompile(`[-\s]`),
	}
}

// MatchCategories returns the distinct keyword categories matching the message.
func (l *Library) MatchCategories(message string) []string {
	var matched []string

	for _, kw := range l.keywords {
		if kw.re.MatchString(message) {
			matched = append(matched, kw.category)
		}
	}

	return matched
}

func (l *Library) FindURLs(text string) []string {
	return pie.Unique(l.urlRe.FindAllString(text, -1))
}

// HasShortenedURL reports whether any URL in the message points at a known
// link-shortener domain.
func (l *Library) HasShortenedURL(message string) bool {
	for _, url := range l.urlRe.FindAllString(message, -1) {
		lowered := strings.ToLower(url)

		for _, domain := range shortenerDomains {
			if strings.Contains(lowered, domain) {
				return true
			}
		}
	}

	return false
}

// FindUPIIDs keeps only tokens whose suffix is a known payment-app handle.
func (l *Library) FindUPIIDs(text string) []string {
	var ids []string

	for _, match := range l.upiRe.FindAllString(text, -1) {
		lowered := strings.ToLower(match)

		for _, suffix := range upiSuffixes {
			if strings.HasSuffix(lowered, suffix) {
				ids = append(ids, match)
				break
			}
		}
	}

	return pie.Unique(ids)
}

func (l *Library) FindBankAccounts(text string) []string {
	return pie.Unique(l.accountRe.FindAllString(text, -1))
}

func (l *Library) FindIFSCCodes(text string) []string {
	codes := l.ifscRe.FindAllString(text, -1)

	for i, code := range codes {
		codes[i] = strings.ToUpper(code)
	}

	return pie.Unique(codes)
}

// FindPhones normalizes matches by stripping spaces and hyphens before dedup.
func (l *Library) FindPhones(text string) []string {
	var phones []string

	for _, match := range l.phoneRe.FindAllString(text, -1) {
		phones = append(phones, l.phoneSep.ReplaceAllString(match, ""))
	}

	return pie.Unique(phones)
}
