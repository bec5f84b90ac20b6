package pricing

import (
	"math"

	"capsule/internal/types"
)

// Token volumes split 60/40 between input and output for display purposes.
// This is a presentation assumption, not a billing rule.
const (
	inputTokenShare  = 0.6
	outputTokenShare = 0.4
)

// ConversionProfile fixes the display ratios one storefront page uses to
// translate a token volume into characters and pages. Two divergent profiles
// ship today; they are deliberately kept as separate named profiles rather
// than silently merged (see DESIGN.md).
type ConversionProfile struct {
	Name string

	KoreanCharsPerToken  float64
	EnglishCharsPerToken float64

	// Page estimation. Exactly one of the two modes is set:
	// per-language character counts per page, or a flat tokens-per-page rate.
	KoreanCharsPerPage  int64
	EnglishCharsPerPage int64
	TokensPerPage       int64
}

// CheckoutProfile is the conversion profile of the checkout calculator:
// Korean ~1.6 chars/token, English ~4.5 chars/token, pages derived from
// per-language character counts.
var CheckoutProfile = ConversionProfile{
	Name:                 "checkout",
	KoreanCharsPerToken:  1.6,
	EnglishCharsPerToken: 4.5,
	KoreanCharsPerPage:   2200,
	EnglishCharsPerPage:  3800,
}

// LandingProfile is the conversion profile of the landing/marketing page:
// 1 token ~2 Korean chars, ~4 English chars, and a flat 1,200 tokens per
// page ("WordPress page" assumption).
var LandingProfile = ConversionProfile{
	Name:                 "landing",
	KoreanCharsPerToken:  2,
	EnglishCharsPerToken: 4,
	TokensPerPage:        1200,
}

// Breakdown derives the display-only unit conversions for a token volume.
// All multiplications round half up; page counts from character totals round
// up per language. Outputs never feed back into pricing.
func (p ConversionProfile) Breakdown(tokenVolume int64) types.TokenBreakdown {
	if tokenVolume < 0 {
		tokenVolume = 0
	}

	v := float64(tokenVolume)
	b := types.TokenBreakdown{
		InputTokens:  int64(math.Round(v * inputTokenShare)),
		OutputTokens: int64(math.Round(v * outputTokenShare)),
		KoreanChars:  int64(math.Round(v * p.KoreanCharsPerToken)),
		EnglishChars: int64(math.Round(v * p.EnglishCharsPerToken)),
	}

	if p.TokensPerPage > 0 {
		b.Pages = int64(math.Round(v / float64(p.TokensPerPage)))
		return b
	}
	if b.KoreanChars > 0 {
		b.Pages += ceilDiv(b.KoreanChars, p.KoreanCharsPerPage)
	}
	if b.EnglishChars > 0 {
		b.Pages += ceilDiv(b.EnglishChars, p.EnglishCharsPerPage)
	}
	return b
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
