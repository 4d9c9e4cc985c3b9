package extract

import "fmt"

// SystemPrompt fixes the output contract for the extraction model
const SystemPrompt = `You extract IPO offering terms into JSON. Reply with one JSON object and nothing else.
All monetary and share amounts are in millions. Percentages and probabilities are decimals (15% -> 0.15).
Schema:
{
  "company_name": string,
  "ltm_revenue_millions": number, "ltm_ebitda_millions": number, "ltm_net_income_millions": number,
  "revenue_growth_rate": number,
  "pre_ipo_shares_millions": number, "primary_raise_millions": number, "ipo_discount": number,
  "valuation_basis": "revenue" | "ebitda" | "earnings",
  "valuation_multiples": [{"name": string, "type": "revenue"|"ebitda"|"earnings", "multiple": number, "weight": number}],
  "convertibles": [{"name": string, "type": string, "amount_millions": number,
    "trigger_type": "lower_of"|"price_gt"|"price_gte"|"at_ipo_price"|"fixed_shares"|"conditional",
    "trigger_price": number, "trigger_price_2": number, "trigger_multiplier": number,
    "trigger_condition": string, "fixed_shares": number, "probability": number}],
  "contingencies": [{"name": string, "type": "earnout"|"grant"|"milestone"|"warrant"|"litigation"|"royalty",
    "shares_millions": number, "payment_millions": number, "strike_price": number, "probability": number}],
  "strategic_deals": [{"investor": string, "price_type": "ipo_price"|"ipo_premium"|"discounted"|"fixed",
    "premium_percent": number, "discount_percent": number, "fixed_price": number,
    "shares_millions": number, "amount_millions": number, "is_anchor_order": boolean}],
  "anchor_orders": [{"investor": string, "amount_millions": number}],
  "employee_options": {"shares_millions": number, "avg_strike_price": number, "vested_percent": number}
}
Omit fields that the text does not state. Do not guess probabilities; omit them instead.`

// UserPrompt wraps the offering description
func UserPrompt(text string) string {
	return fmt.Sprintf("Offering description:\n---\n%s\n---\nReturn the JSON object.", text)
}
