package instrument

// CalculateOptionDilution applies the treasury stock method: vested in-the-money
// options are exercised and the proceeds buy back shares at the offer price.
// Options struck at or above the offer price do not dilute.
func CalculateOptionDilution(pool *EmployeeOptionPool, offerPrice float64) OptionDilutionResult {
	if pool == nil || offerPrice <= pool.AvgStrikePrice || offerPrice <= 0 {
		return OptionDilutionResult{}
	}

	vested := pool.SharesMillions * val(pool.VestedPercent, 1.0)
	proceeds := vested * pool.AvgStrikePrice
	bought := proceeds / offerPrice

	return OptionDilutionResult{
		InTheMoney:       true,
		VestedOptions:    vested,
		Proceeds:         proceeds,
		SharesBoughtBack: bought,
		NetDilution:      vested - bought,
	}
}
