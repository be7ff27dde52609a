package types

// Tier is one of the fixed enhancement presets. Unknown inputs resolve to
// TierIdentity so a stale or malformed quality value never becomes an error.
type Tier string

const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierUltra    Tier = "ultra"
	Tier4K       Tier = "4k"
	TierIdentity Tier = "identity"
)

// Tiers lists the selectable presets in menu order. TierIdentity is the
// fallback only and is never offered to users.
func Tiers() []Tier {
	return []Tier{TierLow, TierMedium, TierHigh, TierUltra, Tier4K}
}

// ParseTier maps a quality string to its Tier, falling back to TierIdentity.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierLow, TierMedium, TierHigh, TierUltra, Tier4K:
		return Tier(s)
	default:
		return TierIdentity
	}
}

// Label returns the human-readable button text for the tier.
func (t Tier) Label() string {
	switch t {
	case TierLow:
		return "Low"
	case TierMedium:
		return "Medium"
	case TierHigh:
		return "High"
	case TierUltra:
		return "Ultra"
	case Tier4K:
		return "4K Upscale"
	default:
		return "Original"
	}
}
