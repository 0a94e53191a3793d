package gkg

import "strings"

// Category is one of the fixed theme buckets tracked per entity-day.
type Category string

const (
	CategoryEnergy    Category = "ENERGY"
	CategoryConflict  Category = "CONFLICT"
	CategorySanctions Category = "SANCTIONS"
	CategoryTrade     Category = "TRADE"
	CategoryEconomy   Category = "ECONOMY"
	CategoryPolicy    Category = "POLICY"
	CategoryOther     Category = "OTHER"
)

// Categories lists the tracked buckets in aggregate column order.
// OTHER is classified but not counted.
var Categories = []Category{
	CategoryEnergy,
	CategoryConflict,
	CategorySanctions,
	CategoryTrade,
	CategoryEconomy,
	CategoryPolicy,
}

type themeRule struct {
	category Category
	keywords []string
}

// Rules are ordered: the first matching rule wins, so an OIL_SANCTIONS
// tag lands in ENERGY, not SANCTIONS.
var themeRules = []themeRule{
	{CategoryEnergy, []string{"OIL", "ENERGY", "GAS", "PETROLEUM", "FUEL", "MINING", "ECON_ENERGY", "OILPRICE"}},
	{CategoryConflict, []string{"WAR", "CONFLICT", "MILITARY", "ARMED", "VIOLENCE", "KILL", "ATTACK", "TERROR"}},
	{CategorySanctions, []string{"SANCTION", "EMBARGO", "BLOCKADE", "RESTRICTION"}},
	{CategoryTrade, []string{"TRADE", "EXPORT", "IMPORT", "TARIFF", "COMMERCE"}},
	{CategoryEconomy, []string{"ECON_", "ECONOMY", "INFLATION", "CURRENCY", "FINANCE", "MARKET"}},
	{CategoryPolicy, []string{"GOVERNMENT", "POLICY", "REGULATION", "LAW", "LEGAL"}},
}

// ClassifyTheme maps a raw theme tag onto a Category via ordered
// substring matching. Unmatched tags classify as OTHER.
func ClassifyTheme(theme string) Category {
	upper := strings.ToUpper(theme)
	for _, rule := range themeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(upper, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
