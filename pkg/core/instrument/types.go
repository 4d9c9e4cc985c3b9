// Package instrument implements the contingent-instrument valuation waterfall.
// Takes a base valuation plus convertible, contingent, strategic and option-pool
// descriptors and returns an adjusted valuation, an adjusted fully-diluted share
// count and an itemized audit trail.
//
// Units: all monetary and share amounts are in millions. Percentages are decimals.
package instrument

import "strings"

// =============================================================================
// CLOSED VARIANTS
// =============================================================================

// MultipleType identifies the base metric a valuation multiple applies to
type MultipleType string

const (
	MultipleRevenue  MultipleType = "revenue"
	MultipleEBITDA   MultipleType = "ebitda"
	MultipleEarnings MultipleType = "earnings"
)

// TriggerType selects how a convertible instrument converts
type TriggerType string

const (
	TriggerLowerOf     TriggerType = "lower_of"
	TriggerPriceGT     TriggerType = "price_gt"
	TriggerPriceGTE    TriggerType = "price_gte"
	TriggerAtIPOPrice  TriggerType = "at_ipo_price"
	TriggerFixedShares TriggerType = "fixed_shares"
	TriggerConditional TriggerType = "conditional"
)

// LiabilityType selects how a contingent liability is resolved
type LiabilityType string

const (
	LiabilityEarnout    LiabilityType = "earnout"
	LiabilityGrant      LiabilityType = "grant"
	LiabilityMilestone  LiabilityType = "milestone"
	LiabilityWarrant    LiabilityType = "warrant"
	LiabilityLitigation LiabilityType = "litigation"
	LiabilityRoyalty    LiabilityType = "royalty"
)

// PriceType selects how a strategic deal is priced relative to the offer
type PriceType string

const (
	PriceAtIPO      PriceType = "ipo_price"
	PriceIPOPremium PriceType = "ipo_premium"
	PriceDiscounted PriceType = "discounted"
	PriceFixed      PriceType = "fixed"
)

// AllMultipleTypes lists every MultipleType
func AllMultipleTypes() []MultipleType {
	return []MultipleType{MultipleRevenue, MultipleEBITDA, MultipleEarnings}
}

// AllTriggerTypes lists every TriggerType
func AllTriggerTypes() []TriggerType {
	return []TriggerType{TriggerLowerOf, TriggerPriceGT, TriggerPriceGTE, TriggerAtIPOPrice, TriggerFixedShares, TriggerConditional}
}

// AllLiabilityTypes lists every LiabilityType
func AllLiabilityTypes() []LiabilityType {
	return []LiabilityType{LiabilityEarnout, LiabilityGrant, LiabilityMilestone, LiabilityWarrant, LiabilityLitigation, LiabilityRoyalty}
}

// AllPriceTypes lists every PriceType
func AllPriceTypes() []PriceType {
	return []PriceType{PriceAtIPO, PriceIPOPremium, PriceDiscounted, PriceFixed}
}

// Valid reports whether t is a known multiple type
func (t MultipleType) Valid() bool {
	for _, v := range AllMultipleTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// Valid reports whether t is a known trigger type
func (t TriggerType) Valid() bool {
	for _, v := range AllTriggerTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// Valid reports whether t is a known liability type
func (t LiabilityType) Valid() bool {
	for _, v := range AllLiabilityTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// Valid reports whether t is a known price type. The empty value is accepted
// and priced at the offer price.
func (t PriceType) Valid() bool {
	if t == "" {
		return true
	}
	for _, v := range AllPriceTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// UnmarshalText canonicalizes case and whitespace. Unknown tags decode as-is
// and are rejected by Normalize with the field path.
func (t *MultipleType) UnmarshalText(b []byte) error {
	*t = MultipleType(normalizeTag(b))
	return nil
}

func (t *TriggerType) UnmarshalText(b []byte) error {
	*t = TriggerType(normalizeTag(b))
	return nil
}

func (t *LiabilityType) UnmarshalText(b []byte) error {
	*t = LiabilityType(normalizeTag(b))
	return nil
}

func (t *PriceType) UnmarshalText(b []byte) error {
	*t = PriceType(normalizeTag(b))
	return nil
}

func normalizeTag(b []byte) string {
	return strings.ToLower(strings.TrimSpace(string(b)))
}

// =============================================================================
// INPUT DESCRIPTORS
// =============================================================================

// ValuationMultiple is one weighted valuation proxy (e.g. 8x revenue at 60%)
type ValuationMultiple struct {
	Name     string       `json:"name"`
	Type     MultipleType `json:"type"`
	Multiple float64      `json:"multiple"`
	Weight   float64      `json:"weight"`
}

// ConvertibleInstrument is a security converting into equity at the offering
type ConvertibleInstrument struct {
	Name              string      `json:"name"`
	Type              string      `json:"type"` // e.g. "convertible_note", "safe", "preferred"
	AmountMillions    float64     `json:"amount_millions"`
	TriggerType       TriggerType `json:"trigger_type"`
	TriggerPrice      *float64    `json:"trigger_price,omitempty"`
	TriggerPrice2     *float64    `json:"trigger_price_2,omitempty"` // Conversion price cap for price_gt/price_gte
	TriggerMultiplier *float64    `json:"trigger_multiplier,omitempty"`
	TriggerCondition  string      `json:"trigger_condition,omitempty"`
	FixedShares       *float64    `json:"fixed_shares,omitempty"`
	Probability       *float64    `json:"probability,omitempty"`
}

// ContingentLiability is a probability-weighted future obligation in shares or cash
type ContingentLiability struct {
	Name            string        `json:"name"`
	Type            LiabilityType `json:"type"`
	SharesMillions  *float64      `json:"shares_millions,omitempty"`
	PaymentMillions *float64      `json:"payment_millions,omitempty"`
	StrikePrice     *float64      `json:"strike_price,omitempty"`
	Probability     *float64      `json:"probability,omitempty"`
}

// StrategicDeal is a strategic partner allocation in the offering
type StrategicDeal struct {
	Investor        string    `json:"investor"`
	PriceType       PriceType `json:"price_type"`
	PremiumPercent  *float64  `json:"premium_percent,omitempty"`
	DiscountPercent *float64  `json:"discount_percent,omitempty"`
	FixedPrice      *float64  `json:"fixed_price,omitempty"`
	SharesMillions  *float64  `json:"shares_millions,omitempty"`
	AmountMillions  *float64  `json:"amount_millions,omitempty"`
	IsAnchorOrder   bool      `json:"is_anchor_order"`
}

// AnchorOrder is a pre-committed cornerstone order
type AnchorOrder struct {
	Investor       string  `json:"investor"`
	AmountMillions float64 `json:"amount_millions"`
}

// EmployeeOptionPool is the pooled option book, valued with the treasury stock method
type EmployeeOptionPool struct {
	SharesMillions float64  `json:"shares_millions"`
	AvgStrikePrice float64  `json:"avg_strike_price"`
	VestedPercent  *float64 `json:"vested_percent,omitempty"`
}

// IPOAssumptions is the structured input produced by the assumption extractor
type IPOAssumptions struct {
	CompanyName string `json:"company_name,omitempty"`

	// Base financials
	LTMRevenueMillions   float64 `json:"ltm_revenue_millions"`
	LTMEBITDAMillions    float64 `json:"ltm_ebitda_millions"`
	LTMNetIncomeMillions float64 `json:"ltm_net_income_millions"`
	RevenueGrowthRate    float64 `json:"revenue_growth_rate"`

	// Offering
	PreIPOSharesMillions float64      `json:"pre_ipo_shares_millions"`
	PrimaryRaiseMillions float64      `json:"primary_raise_millions"`
	IPODiscount          *float64     `json:"ipo_discount,omitempty"`
	ValuationBasis       MultipleType `json:"valuation_basis,omitempty"`

	ValuationMultiples []ValuationMultiple     `json:"valuation_multiples,omitempty"`
	Convertibles       []ConvertibleInstrument `json:"convertibles,omitempty"`
	Contingencies      []ContingentLiability   `json:"contingencies,omitempty"`
	StrategicDeals     []StrategicDeal         `json:"strategic_deals,omitempty"`
	AnchorOrders       []AnchorOrder           `json:"anchor_orders,omitempty"`
	EmployeeOptions    *EmployeeOptionPool     `json:"employee_options,omitempty"`
}

// BaseMetric returns the financial figure the valuation multiples apply to
func (a IPOAssumptions) BaseMetric() float64 {
	switch a.ValuationBasis {
	case MultipleEBITDA:
		return a.LTMEBITDAMillions
	case MultipleEarnings:
		return a.LTMNetIncomeMillions
	default:
		return a.LTMRevenueMillions
	}
}

// EngineInput bundles the assumptions with the caller-precomputed seeds
type EngineInput struct {
	Assumptions      IPOAssumptions `json:"assumptions"`
	BaseValuation    float64        `json:"base_valuation"`    // Pre-money, millions
	TheoreticalPrice float64        `json:"theoretical_price"` // Seed, per share
	TentativeOffer   float64        `json:"tentative_offer"`   // Seed, per share
}

// =============================================================================
// OUTPUTS
// =============================================================================

// MultipleComponent is one row of the blended valuation breakdown
type MultipleComponent struct {
	Name             string       `json:"name"`
	Type             MultipleType `json:"type"`
	Multiple         float64      `json:"multiple"`
	Weight           float64      `json:"weight"`
	WeightedMultiple float64      `json:"weighted_multiple"`
	Contribution     float64      `json:"contribution"`
}

// BlendedValuationResult holds the blended-multiple valuation
type BlendedValuationResult struct {
	Valuation            float64             `json:"valuation"`
	BaseMetric           float64             `json:"base_metric"`
	BlendedMultiple      float64             `json:"blended_multiple"`
	BaseBlendedMultiple  float64             `json:"base_blended_multiple"`
	GrowthPremiumApplied bool                `json:"growth_premium_applied"`
	GrowthPremiumPercent float64             `json:"growth_premium_percent"`
	Components           []MultipleComponent `json:"components"`
}

// ConvertibleResolution is the outcome for a single convertible
type ConvertibleResolution struct {
	Name            string      `json:"name"`
	TriggerType     TriggerType `json:"trigger_type"`
	AmountMillions  float64     `json:"amount_millions"`
	ConversionPrice float64     `json:"conversion_price"`
	SharesIssued    float64     `json:"shares_issued"`
	Triggered       bool        `json:"triggered"`
	Probability     float64     `json:"probability"`
	ExpectedShares  float64     `json:"expected_shares"`
	Condition       string      `json:"condition,omitempty"`
}

// ConvertibleSummary aggregates the convertible resolutions
type ConvertibleSummary struct {
	Instruments         []ConvertibleResolution `json:"instruments"`
	TotalSharesIssued   float64                 `json:"total_shares_issued"`
	DeterministicShares float64                 `json:"deterministic_shares"` // probability == 1 and triggered
	ExpectedShares      float64                 `json:"expected_shares"`      // every instrument, probability-weighted
}

// ContingencyResolution is the outcome for a single contingent liability
type ContingencyResolution struct {
	Name           string        `json:"name"`
	Type           LiabilityType `json:"type"`
	Probability    float64       `json:"probability"`
	SharesMillions float64       `json:"shares_millions"`
	ExpectedShares float64       `json:"expected_shares"`
	Spread         float64       `json:"spread,omitempty"`
	ExpectedCost   float64       `json:"expected_cost"`
}

// ContingencySummary aggregates the contingent liability resolutions
type ContingencySummary struct {
	Liabilities    []ContingencyResolution `json:"liabilities"`
	ExpectedShares float64                 `json:"expected_shares"`
	ExpectedCost   float64                 `json:"expected_cost"`
}

// DealResolution is the priced outcome of one strategic deal
type DealResolution struct {
	Investor       string    `json:"investor"`
	PriceType      PriceType `json:"price_type"`
	EffectivePrice float64   `json:"effective_price"`
	ImpliedPremium float64   `json:"implied_premium"` // Negative for a discount
	SharesMillions float64   `json:"shares_millions"`
	AmountMillions float64   `json:"amount_millions"`
	IsAnchorOrder  bool      `json:"is_anchor_order"`
}

// DealSummary aggregates strategic deals and anchor demand
type DealSummary struct {
	Deals                 []DealResolution `json:"deals"`
	Anchors               []AnchorOrder    `json:"anchors"`
	TotalAnchorAmount     float64          `json:"total_anchor_amount"`
	AnchorCoverage        float64          `json:"anchor_coverage"` // Anchor amount / raise target
	DemandBoostMultiplier float64          `json:"demand_boost_multiplier"`
}

// OptionDilutionResult is the treasury stock method outcome for the option pool
type OptionDilutionResult struct {
	InTheMoney       bool    `json:"in_the_money"`
	VestedOptions    float64 `json:"vested_options"`
	Proceeds         float64 `json:"proceeds"`
	SharesBoughtBack float64 `json:"shares_bought_back"`
	NetDilution      float64 `json:"net_dilution"`
}

// InstrumentEngineResult is the full waterfall outcome. It holds no references
// into the input assumptions.
type InstrumentEngineResult struct {
	BaseValuation         float64                 `json:"base_valuation"`
	Blended               *BlendedValuationResult `json:"blended,omitempty"`
	DemandBoostMultiplier float64                 `json:"demand_boost_multiplier"`
	BoostedValuation      float64                 `json:"boosted_valuation"`

	OriginalShareCount        float64 `json:"original_share_count"`
	TentativeTheoreticalPrice float64 `json:"tentative_theoretical_price"`
	TentativeOfferPrice       float64 `json:"tentative_offer_price"`
	IPODiscount               float64 `json:"ipo_discount"`

	Convertibles    ConvertibleSummary   `json:"convertibles"`
	Contingencies   ContingencySummary   `json:"contingencies"`
	StrategicDeals  DealSummary          `json:"strategic_deals"`
	EmployeeOptions OptionDilutionResult `json:"employee_options"`

	AdjustedValuation     float64 `json:"adjusted_valuation"`
	AdjustedShareCount    float64 `json:"adjusted_share_count"`
	AdjustedPricePerShare float64 `json:"adjusted_price_per_share"`
	AdjustedOfferPrice    float64 `json:"adjusted_offer_price"`

	Iterations int      `json:"iterations"`
	Converged  bool     `json:"converged"`
	Logs       []string `json:"logs"`
}
