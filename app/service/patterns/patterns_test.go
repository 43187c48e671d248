package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCategories(t *testing.T) {
	lib := NewLibrary()

	message := "Your KYC is pending. Please share OTP to verify your account. Click here: http://bit.ly/xyz"

	categories := lib.MatchCategories(message)
	assert.ElementsMatch(t, []string{"otp", "kyc", "verification", "click_link"}, categories)
}

func TestMatchCategoriesCaseInsensitive(t *testing.T) {
	lib := NewLibrary()

	assert.Contains(t, lib.MatchCategories("URGENT: verify NOW"), "urgency")
	assert.Empty(t, lib.MatchCategories("hello there, how are you"))
}

func TestHasShortenedURL(t *testing.T) {
	lib := NewLibrary()

	assert.True(t, lib.HasShortenedURL("open http://bit.ly/xyz now"))
	assert.True(t, lib.HasShortenedURL("https://tinyurl.com/abc"))
	assert.False(t, lib.HasShortenedURL("see https://example.com/page"))
	assert.False(t, lib.HasShortenedURL("no links at all"))
}

func TestFindUPIIDs(t *testing.T) {
	lib := NewLibrary()

	ids := lib.FindUPIIDs("pay to merchant@ybl or fraud@okicici, not me@gmail")
	assert.ElementsMatch(t, []string{"merchant@ybl", "fraud@okicici"}, ids)
}

func TestFindUPIIDsDedup(t *testing.T) {
	lib := NewLibrary()

	ids := lib.FindUPIIDs("send to merchant@ybl, yes merchant@ybl")
	assert.Equal(t, []string{"merchant@ybl"}, ids)
}

func TestFindBankAccounts(t *testing.T) {
	lib := NewLibrary()

	accounts := lib.FindBankAccounts("account 123456789012 and again 123456789012")
	assert.Equal(t, []string{"123456789012"}, accounts)

	assert.Empty(t, lib.FindBankAccounts("12345678"))
}

func TestFindIFSCCodes(t *testing.T) {
	lib := NewLibrary()

	codes := lib.FindIFSCCodes("branch code sbin0001234 please")
	assert.Equal(t, []string{"SBIN0001234"}, codes)
}

func TestFindPhonesNormalization(t *testing.T) {
	lib := NewLibrary()

	phones := lib.FindPhones("call 98765-43210 or 98765 43210")
	assert.Equal(t, []string{"9876543210"}, phones)
}

func TestFindPhonesCountryCode(t *testing.T) {
	lib := NewLibrary()

	phones := lib.FindPhones("reach me at +91 9876543210")
	assert.Contains(t, phones, "9876543210")
}

func TestFindURLs(t *testing.T) {
	lib := NewLibrary()

	urls := lib.FindURLs("go to https://example.com/verify and https://example.com/verify")
	assert.Equal(t, []string{"https://example.com/verify"}, urls)
}
