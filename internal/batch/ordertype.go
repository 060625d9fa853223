package batch

import "strings"

// Canonical order types, the values the router backend expects.
const (
	NoChange       = "NO_CHANGE"
	Limit          = "LIMIT"
	Market         = "MARKET"
	Stoploss       = "STOPLOSS"
	StoplossMarket = "SL_MARKET"
)

// displayToCanon folds the display spellings the console historically used
// onto the canonical values.
var displayToCanon = map[string]string{
	"NO_CHANGE":       NoChange,
	"LIMIT":           Limit,
	"MARKET":          Market,
	"STOPLOSS":        Stoploss,
	"SL MARKET":       StoplossMarket,
	"SL_MARKET":       StoplossMarket,
	"STOPLOSS_MARKET": StoplossMarket,
}

// CanonicalOrderType normalizes an order-type string. Unknown values pass
// through unchanged so the backend gets to reject them with its own message.
func CanonicalOrderType(s string) string {
	up := strings.ToUpper(strings.TrimSpace(s))
	if up == "" {
		return NoChange
	}
	if canon, ok := displayToCanon[up]; ok {
		return canon
	}
	return up
}

// Requirements describes which fields an order type makes mandatory:
// LIMIT needs a price, STOPLOSS needs price and trigger, SL_MARKET needs
// trigger only, MARKET and NO_CHANGE need neither.
type Requirements struct {
	Canon   string
	Price   bool
	Trigger bool
}

func RequirementsFor(orderType string) Requirements {
	canon := CanonicalOrderType(orderType)
	return Requirements{
		Canon:   canon,
		Price:   canon == Limit || canon == Stoploss,
		Trigger: canon == Stoploss || canon == StoplossMarket,
	}
}
