// Package tier defines subscription tiers and the API key quotas attached
// to them: how many keys an owner may hold and the default hourly rate
// limit a new key receives.
//
// Free, Pro, and Enterprise cover the common SaaS shape out of the box;
// applications with their own plans register custom tiers in a Registry.
package tier
