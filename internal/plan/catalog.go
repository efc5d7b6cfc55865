package plan

// Plan names as stored in user_subscriptions.plan_name.
const (
	NameFree     = "FREE"
	NameProBasic = "PRO_BASIC"
	NameProPlus  = "PRO_PLUS"
	NameCustom   = "CUSTOM"
)

type Plan struct {
	Name                string
	DisplayName         string
	Price               float64
	Features            []string
	QuestionsPerSession Limit
	SessionsPerDay      Limit
}

var catalog = map[string]Plan{
	NameFree: {
		Name:        NameFree,
		DisplayName: "Free",
		Price:       0,
		Features: []string{
			"3 chat sessions per day",
			"10 questions per session",
			"Standard model",
		},
		QuestionsPerSession: Finite(10),
		SessionsPerDay:      Finite(3),
	},
	NameProBasic: {
		Name:        NameProBasic,
		DisplayName: "Pro Basic",
		Price:       49000,
		Features: []string{
			"20 chat sessions per day",
			"50 questions per session",
			"Image attachments",
			"Priority streaming",
		},
		QuestionsPerSession: Finite(50),
		SessionsPerDay:      Finite(20),
	},
	NameProPlus: {
		Name:        NameProPlus,
		DisplayName: "Pro Plus",
		Price:       99000,
		Features: []string{
			"Unlimited chat sessions",
			"Unlimited questions",
			"Image attachments",
			"Priority streaming",
		},
		QuestionsPerSession: Unlimited(),
		SessionsPerDay:      Unlimited(),
	},
	NameCustom: {
		Name:        NameCustom,
		DisplayName: "Custom",
		Price:       0,
		Features: []string{
			"Negotiated limits",
			"Dedicated support",
		},
		QuestionsPerSession: Unlimited(),
		SessionsPerDay:      Unlimited(),
	},
}

// ByName resolves a stored plan name. Unknown or empty names fall back to
// FREE so a corrupted subscription row can never widen a user's limits.
func ByName(name string) Plan {
	if p, ok := catalog[name]; ok {
		return p
	}
	return catalog[NameFree]
}

// Purchasable lists the plans shown on the pricing surface, cheapest first.
// CUSTOM is excluded; it is provisioned manually.
func Purchasable() []Plan {
	return []Plan{catalog[NameFree], catalog[NameProBasic], catalog[NameProPlus]}
}

func IsKnown(name string) bool {
	_, ok := catalog[name]
	return ok
}
