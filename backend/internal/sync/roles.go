package sync

// Static lookup tables consulted during event sync: each specific role a
// person performs at an event carries a cognitive-load weight and a
// category. Unrecognized role names fall back to the explicit defaults;
// those defaults are contract, not incidental behavior.

const (
	defaultRoleWeight   int64 = 3
	defaultRoleCategory       = "unknown"
)

var roleWeights = map[string]int64{
	"meal_planning":     5,
	"grocery_shopping":  3,
	"cooking":           3,
	"dishes":            2,
	"school_forms":      5,
	"homework_help":     4,
	"school_pickup":     3,
	"appointments":      5,
	"medication":        5,
	"bedtime_routine":   4,
	"laundry":           2,
	"cleaning":          2,
	"birthday_planning": 5,
	"holiday_planning":  5,
	"gift_buying":       4,
	"rsvp":              4,
	"packing":           4,
	"transportation":    3,
}

var roleCategories = map[string]string{
	"meal_planning":     "anticipation",
	"grocery_shopping":  "execution",
	"cooking":           "execution",
	"dishes":            "execution",
	"school_forms":      "anticipation",
	"homework_help":     "monitoring",
	"school_pickup":     "execution",
	"appointments":      "anticipation",
	"medication":        "monitoring",
	"bedtime_routine":   "monitoring",
	"laundry":           "execution",
	"cleaning":          "execution",
	"birthday_planning": "anticipation",
	"holiday_planning":  "anticipation",
	"gift_buying":       "anticipation",
	"rsvp":              "anticipation",
	"packing":           "anticipation",
	"transportation":    "execution",
}

// RoleWeight returns the cognitive-load weight for a role name.
func RoleWeight(roleName string) int64 {
	if weight, ok := roleWeights[roleName]; ok {
		return weight
	}
	return defaultRoleWeight
}

// RoleCategory returns the category for a role name.
func RoleCategory(roleName string) string {
	if category, ok := roleCategories[roleName]; ok {
		return category
	}
	return defaultRoleCategory
}
