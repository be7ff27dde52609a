package types

import "testing"

func TestParseTierTotal(t *testing.T) {
	for _, tier := range Tiers() {
		if got := ParseTier(string(tier)); got != tier {
			t.Errorf("ParseTier(%q) = %q", tier, got)
		}
	}
	for _, s := range []string{"", "identity", "LOW", "8k", "quality_low"} {
		if got := ParseTier(s); got != TierIdentity {
			t.Errorf("ParseTier(%q) = %q, want fallback to identity", s, got)
		}
	}
}

func TestTiersAreSelectableOnly(t *testing.T) {
	for _, tier := range Tiers() {
		if tier == TierIdentity {
			t.Error("The identity fallback must not be offered in menus")
		}
		if tier.Label() == "" {
			t.Errorf("Tier %q has no label", tier)
		}
	}
}
