package form

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy removes every tag and keeps only text.
var strictPolicy = bluemonday.StrictPolicy()

// cleanText strips markup from user text. The policy escapes the text it
// keeps, so entities are decoded again; the PDF shows plain characters.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N} ._-]+`)

// fileName builds a download file name from a client name and a suffix such
// as "_intake.pdf". Characters that are unsafe in file names are dropped.
func fileName(client, fallback, suffix string) string {
	name := strings.TrimSpace(unsafeFileChars.ReplaceAllString(client, ""))
	name = strings.Trim(name, ".")
	if name == "" {
		name = fallback
	}
	return name + suffix
}

// MailDraft is an email the user can send from their own mail client.
type MailDraft struct {
	Subject string
	Body    string
}

// URL returns the draft as a mailto: link without a recipient.
func (m MailDraft) URL() string {
	return "mailto:?subject=" + mailEscape(m.Subject) + "&body=" + mailEscape(m.Body)
}

// mailEscape percent-encodes s for a mailto header value. Spaces become %20;
// mail clients do not read '+' as a space.
func mailEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
