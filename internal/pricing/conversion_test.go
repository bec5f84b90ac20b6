package pricing

import (
	"testing"

	"capsule/internal/types"
)

func TestBreakdown_ZeroVolume(t *testing.T) {
	for _, p := range []ConversionProfile{CheckoutProfile, LandingProfile} {
		got := p.Breakdown(0)
		if got != (types.TokenBreakdown{}) {
			t.Errorf("%s: Breakdown(0) = %+v, want all zeros", p.Name, got)
		}
	}
}

func TestBreakdown_InputOutputSplit(t *testing.T) {
	// 60/40 split with standard rounding, shared by both profiles.
	tests := []struct {
		volume     int64
		wantInput  int64
		wantOutput int64
	}{
		{10000, 6000, 4000},
		{1, 1, 0},      // round(0.6)=1, round(0.4)=0
		{5, 3, 2},
		{333, 200, 133},
	}
	for _, tt := range tests {
		got := CheckoutProfile.Breakdown(tt.volume)
		if got.InputTokens != tt.wantInput || got.OutputTokens != tt.wantOutput {
			t.Errorf("volume %d: split %d/%d, want %d/%d",
				tt.volume, got.InputTokens, got.OutputTokens, tt.wantInput, tt.wantOutput)
		}
	}
}

func TestBreakdown_CheckoutProfile(t *testing.T) {
	// Korean 1.6 chars/token, English 4.5 chars/token; pages from character
	// counts: ceil(ko/2200) + ceil(en/3800).
	got := CheckoutProfile.Breakdown(10000)

	if got.KoreanChars != 16000 {
		t.Errorf("korean chars = %d, want 16000", got.KoreanChars)
	}
	if got.EnglishChars != 45000 {
		t.Errorf("english chars = %d, want 45000", got.EnglishChars)
	}
	// ceil(16000/2200)=8, ceil(45000/3800)=12.
	if got.Pages != 20 {
		t.Errorf("pages = %d, want 20", got.Pages)
	}
}

func TestBreakdown_LandingProfile(t *testing.T) {
	// 1 token ~ 2 Korean chars / 4 English chars; flat 1,200 tokens per page.
	got := LandingProfile.Breakdown(10000)

	if got.KoreanChars != 20000 {
		t.Errorf("korean chars = %d, want 20000", got.KoreanChars)
	}
	if got.EnglishChars != 40000 {
		t.Errorf("english chars = %d, want 40000", got.EnglishChars)
	}
	if got.Pages != 8 {
		t.Errorf("pages = %d, want 8", got.Pages)
	}
}

func TestBreakdown_ProfilesStayDivergent(t *testing.T) {
	// The two profiles intentionally disagree; a refactor that silently
	// merges them would make these equal.
	a := CheckoutProfile.Breakdown(100000)
	b := LandingProfile.Breakdown(100000)
	if a.KoreanChars == b.KoreanChars || a.EnglishChars == b.EnglishChars || a.Pages == b.Pages {
		t.Errorf("profiles converged: checkout=%+v landing=%+v", a, b)
	}
}

func TestBreakdown_NegativeVolumeTreatedAsZero(t *testing.T) {
	got := CheckoutProfile.Breakdown(-100)
	if got != (types.TokenBreakdown{}) {
		t.Errorf("Breakdown(-100) = %+v, want all zeros", got)
	}
}
