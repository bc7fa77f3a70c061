package domain

import "strings"

type fileState int

const (
	inBanner fileState = iota
	inBody
)

// BannerFilter drops the leading block of banner lines of a file and marks
// the point where the canonical banner goes.
type BannerFilter struct {
	prefix string
	state  fileState
}

// NewBannerFilter returns a filter treating lines starting with prefix as
// banner lines. An empty prefix recognizes no banner at all.
func NewBannerFilter(prefix string) *BannerFilter {
	return &BannerFilter{prefix: prefix}
}

// Reset prepares the filter for the next file.
func (f *BannerFilter) Reset() {
	f.state = inBanner
}

// Filter returns the text to write before line and whether line itself is
// forwarded. The text is non-empty only on the line that ends the banner
// block, and only if the pass has not emitted its banner yet.
func (f *BannerFilter) Filter(line string, injector *Injector) (string, bool) {
	if f.state == inBody {
		return "", true
	}

	if f.prefix != "" && strings.HasPrefix(line, f.prefix) {
		return "", false
	}

	f.state = inBody

	banner, _ := injector.ClaimBanner()

	return banner, true
}
