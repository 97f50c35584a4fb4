// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package encode

// Static keyword configuration for the packaging, certification, origin and
// food-group sub-encoders. Like the category table, these sets are versioned
// alongside the model artifact: the trained network has learned associations
// against exactly these detections.

// packagingKeywords maps a material family to the keywords matched against
// packaging free text and tags (substring match on lower-cased input).
var packagingKeywords = map[string][]string{
	"recyclable": {"recyclable", "recycled", "returnable", "deposit", "refillable"},
	"glass":      {"glass", "verre", "glas", "jar", "bottle"},
	"plastic":    {"plastic", "plastique", "pet", "pp", "hdpe", "film", "blister"},
	"metal":      {"metal", "aluminium", "aluminum", "tin", "can", "steel"},
	"paper":      {"paper", "cardboard", "carton", "papier", "kraft"},
}

// packagingFeature maps a material family to its feature index.
var packagingFeature = map[string]int{
	"recyclable": FeatPackagingRecyclable,
	"glass":      FeatPackagingGlass,
	"plastic":    FeatPackagingPlastic,
	"metal":      FeatPackagingMetal,
	"paper":      FeatPackagingPaper,
}

// certKeywords maps a certification family to its curated keyword set.
// Families are checked independently; a label can satisfy several.
var certKeywords = map[string][]string{
	"organic":    {"organic", "bio", "biologique", "eu-organic", "ab-agriculture-biologique", "usda-organic"},
	"fair_trade": {"fair-trade", "fairtrade", "fair trade", "max-havelaar", "commerce-equitable"},
	"rainforest": {"rainforest-alliance", "rainforest alliance", "utz"},
	"marine":     {"msc", "marine-stewardship", "sustainable-fishing", "asc"},
	"eco_label":  {"eu-ecolabel", "ecolabel", "ecocert", "nature-plus", "blue-angel"},
}

// certFeature maps a certification family to its feature index.
var certFeature = map[string]int{
	"organic":    FeatCertOrganic,
	"fair_trade": FeatCertFairTrade,
	"rainforest": FeatCertRainforest,
	"marine":     FeatCertMarine,
	"eco_label":  FeatCertEcoLabel,
}

// certCountSaturation is the family count at which the aggregate
// certification feature saturates to 1.0.
const certCountSaturation = 3.0

// originWeights maps origin keywords to a sustainability weight in [0, 1].
// Weights reflect tiered distance bands from the reference market (western
// Europe): local/domestic, intra-European, and intercontinental origins.
var originWeights = map[string]float64{
	// Local and domestic band.
	"local": 1.0, "regional": 0.95, "france": 0.90, "germany": 0.88,
	"belgium": 0.88, "netherlands": 0.88, "switzerland": 0.88, "austria": 0.87,
	// European band.
	"italy": 0.80, "spain": 0.78, "portugal": 0.75, "united-kingdom": 0.75,
	"poland": 0.74, "greece": 0.72, "european-union": 0.75, "europe": 0.72,
	// Near-import band.
	"morocco": 0.55, "turkey": 0.52, "tunisia": 0.55, "egypt": 0.50,
	// Intercontinental band.
	"china": 0.20, "india": 0.25, "thailand": 0.25, "vietnam": 0.25,
	"brazil": 0.30, "argentina": 0.30, "chile": 0.30, "peru": 0.32,
	"united-states": 0.35, "canada": 0.35, "mexico": 0.32,
	"australia": 0.25, "new-zealand": 0.25, "south-africa": 0.30,
	"ivory-coast": 0.35, "ghana": 0.35, "ecuador": 0.32, "colombia": 0.32,
}

// transportScoreFor maps an origin weight to a transport band score. The
// bands are deliberately coarse: the signal encodes distance class, not
// kilometres.
func transportScoreFor(originWeight float64) float64 {
	switch {
	case originWeight >= 0.85:
		return 1.0 // local or domestic
	case originWeight >= 0.70:
		return 0.75 // continental
	case originWeight >= 0.45:
		return 0.5 // near import
	default:
		return 0.2 // intercontinental
	}
}

// localManufacturingKeywords flag manufacturing-place text as local.
var localManufacturingKeywords = []string{
	"local", "france", "germany", "belgium", "netherlands", "switzerland", "austria",
}

// foodGroupOrder fixes the feature-index order of the mutually exclusive
// food-group indicators starting at FeatFoodGroupFirst. The first group
// whose tag set contains one of the record's category tags wins.
var foodGroupOrder = []string{
	"vegetables", "fruits", "legumes", "nuts_seeds", "cereals", "dairy",
	"eggs", "meat", "poultry", "fish", "beverages", "snacks_sweets",
	"frozen", "condiments",
}

// foodGroupTags maps a food group to the exact category tags that select
// it. Membership is exact, never substring: "en:nuts" must not match
// "en:coconuts", and "en:meats" must not match "en:meat-substitutes".
var foodGroupTags = map[string]map[string]struct{}{
	"vegetables": setOf("en:vegetables", "en:fresh-vegetables", "en:canned-vegetables", "en:frozen-vegetables"),
	"fruits":     setOf("en:fruits", "en:fresh-fruits", "en:dried-fruits", "en:canned-fruits"),
	"legumes":    setOf("en:legumes", "en:lentils", "en:chickpeas", "en:beans"),
	"nuts_seeds": setOf("en:nuts", "en:seeds", "en:nut-butters"),
	"cereals":    setOf("en:cereals", "en:whole-grain-cereals", "en:breads", "en:pastas", "en:rices", "en:breakfast-cereals"),
	"dairy":      setOf("en:dairies", "en:milks", "en:cheeses", "en:yogurts", "en:butters"),
	"eggs":       setOf("en:eggs"),
	"meat":       setOf("en:meats", "en:beef", "en:pork", "en:lamb-meat", "en:processed-meats"),
	"poultry":    setOf("en:poultries", "en:chicken", "en:turkey-meat"),
	"fish":       setOf("en:fishes", "en:farmed-fishes", "en:wild-caught-fishes", "en:seafood", "en:canned-fishes"),
	"beverages":  setOf("en:beverages", "en:waters", "en:sodas", "en:fruit-juices", "en:coffees", "en:teas", "en:wines", "en:beers"),
	"snacks_sweets": setOf("en:snacks", "en:sweet-snacks", "en:salty-snacks", "en:chocolates",
		"en:candies", "en:biscuits-and-cakes"),
	"frozen":     setOf("en:frozen-foods", "en:ready-meals"),
	"condiments": setOf("en:sauces", "en:condiments", "en:spreads", "en:oils", "en:olive-oils"),
}

// FoodGroups returns the ordered food-group names. The sync validator
// compares this set against the groups recorded in the artifact.
func FoodGroups() []string {
	out := make([]string, len(foodGroupOrder))
	copy(out, foodGroupOrder)
	return out
}

// FoodGroupTagCount returns the total number of tags across all food-group
// sets, for parity diagnostics.
func FoodGroupTagCount() int {
	n := 0
	for _, tags := range foodGroupTags {
		n += len(tags)
	}
	return n
}

func setOf(tags ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		m[t] = struct{}{}
	}
	return m
}
