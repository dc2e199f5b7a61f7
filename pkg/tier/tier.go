package tier

// Unlimited disables a quota (-1).
const Unlimited = -1

// Tier describes a subscription class and the API key quotas it grants.
type Tier struct {
	ID               string
	Name             string
	MaxKeys          int // Maximum concurrently active API keys; Unlimited disables
	RateLimitPerHour int // Default per-key request budget; Unlimited disables
}

// Built-in tiers. Applications with custom plans register their own through
// a Registry instead of mutating these.
var (
	Free = Tier{
		ID:               "free",
		Name:             "Free",
		MaxKeys:          2,
		RateLimitPerHour: 100,
	}

	Pro = Tier{
		ID:               "pro",
		Name:             "Pro",
		MaxKeys:          10,
		RateLimitPerHour: 5000,
	}

	Enterprise = Tier{
		ID:               "enterprise",
		Name:             "Enterprise",
		MaxKeys:          Unlimited,
		RateLimitPerHour: Unlimited,
	}
)

// AllowsKeyCount reports whether the tier permits holding one more key on
// top of the given count of currently active keys.
func (t Tier) AllowsKeyCount(active int) bool {
	return t.MaxKeys == Unlimited || active < t.MaxKeys
}
