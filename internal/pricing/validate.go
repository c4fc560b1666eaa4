package pricing

import "fmt"

// Result is the outcome of structural validation. It never carries an error
// value: the bulk adjustment tool needs to classify failures per preset
// rather than abort mid-batch.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r *Result) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validate structurally checks a configuration against the shape required by
// its model: non-empty tier and size lists, strictly ascending breakpoints,
// non-negative rates, prices and fees.
func Validate(cfg Config) Result {
	r := Result{}
	if cfg == nil {
		r.addf("configuration is nil")
		return r
	}

	switch c := cfg.(type) {
	case *QtyTieredConfig:
		validateQtyTiers(&r, "tiers", c.Tiers)
		validateFees(&r, c.MinimumPrice, c.FileFee)
	case *AreaTieredConfig:
		validateAreaTiers(&r, c.Tiers)
		for key, m := range c.Materials {
			if m.Multiplier <= 0 {
				r.addf("materials[%s].multiplier must be positive", key)
			}
		}
		validateFeeList(&r, "finishings", c.Finishings)
		validateFeeList(&r, "addons", c.Addons)
		validateFees(&r, c.MinimumPrice, c.FileFee)
	case *QtyOptionsConfig:
		if len(c.Sizes) == 0 {
			r.addf("sizes must not be empty")
		}
		seen := map[string]bool{}
		for i, s := range c.Sizes {
			if s.Label == "" {
				r.addf("sizes[%d].label must not be empty", i)
			} else if seen[s.Label] {
				r.addf("sizes[%d].label %q is duplicated", i, s.Label)
			}
			seen[s.Label] = true
			validateSizeTiers(&r, fmt.Sprintf("sizes[%d].tiers", i), s.Tiers)
		}
		validateFeeList(&r, "addons", c.Addons)
		if c.ExtraNameFee < 0 {
			r.addf("extraNameFee must be non-negative")
		}
		validateFees(&r, c.MinimumPrice, c.FileFee)
	case *CostPlusConfig:
		validateCostPlus(&r, c)
	default:
		r.addf("unknown configuration type %T", cfg)
	}

	r.Valid = len(r.Errors) == 0
	return r
}

func validateQtyTiers(r *Result, field string, tiers []QtyTier) {
	if len(tiers) == 0 {
		r.addf("%s must not be empty", field)
		return
	}
	for i, t := range tiers {
		if t.UnitPrice < 0 {
			r.addf("%s[%d].unitPrice must be non-negative", field, i)
		}
		if i > 0 && t.MinQty <= tiers[i-1].MinQty {
			r.addf("%s[%d].minQty must be strictly ascending", field, i)
		}
	}
}

func validateSizeTiers(r *Result, field string, tiers []SizeTier) {
	if len(tiers) == 0 {
		r.addf("%s must not be empty", field)
		return
	}
	for i, t := range tiers {
		if t.UnitPrice < 0 {
			r.addf("%s[%d].unitPrice must be non-negative", field, i)
		}
		if i > 0 && t.Qty <= tiers[i-1].Qty {
			r.addf("%s[%d].qty must be strictly ascending", field, i)
		}
	}
}

func validateAreaTiers(r *Result, tiers []AreaTier) {
	if len(tiers) == 0 {
		r.addf("tiers must not be empty")
		return
	}
	for i, t := range tiers {
		if t.UpToSqft <= 0 {
			r.addf("tiers[%d].upToSqft must be positive", i)
		}
		if t.Rate < 0 {
			r.addf("tiers[%d].rate must be non-negative", i)
		}
		if i > 0 && t.UpToSqft <= tiers[i-1].UpToSqft {
			r.addf("tiers[%d].upToSqft must be strictly ascending", i)
		}
	}
}

func validateFeeList(r *Result, field string, fees []Fee) {
	for i, f := range fees {
		if f.Key == "" {
			r.addf("%s[%d].key must not be empty", field, i)
		}
		if f.Mode != FeeFlat && f.Mode != FeePerUnit {
			r.addf("%s[%d].mode must be %q or %q", field, i, FeeFlat, FeePerUnit)
		}
		if f.Amount < 0 {
			r.addf("%s[%d].amount must be non-negative", field, i)
		}
	}
}

func validateFees(r *Result, minimumPrice, fileFee float64) {
	if minimumPrice < 0 {
		r.addf("minimumPrice must be non-negative")
	}
	if fileFee < 0 {
		r.addf("fileFee must be non-negative")
	}
}

func validateCurve(r *Result, field string, tiers []TierPoint, allowNegativeFactor bool) {
	if len(tiers) == 0 {
		r.addf("%s must not be empty", field)
		return
	}
	for i, t := range tiers {
		if !allowNegativeFactor && t.Factor < 0 {
			r.addf("%s[%d].factor must be non-negative", field, i)
		}
		if i > 0 && t.At <= tiers[i-1].At {
			r.addf("%s[%d].at must be strictly ascending", field, i)
		}
	}
}

func validateCostPlus(r *Result, c *CostPlusConfig) {
	if len(c.Materials) == 0 {
		r.addf("materials must not be empty")
	}
	for key, m := range c.Materials {
		if m.CostPerSqft < 0 {
			r.addf("materials[%s].costPerSqft must be non-negative", key)
		}
	}
	if len(c.InkCosts) == 0 {
		r.addf("inkCosts must not be empty")
	}
	for key, ic := range c.InkCosts {
		if ic.InkPerSqft < 0 {
			r.addf("inkCosts[%s].inkPerSqft must be non-negative", key)
		}
		if ic.SqmPerHour < 0 {
			r.addf("inkCosts[%s].sqmPerHour must be non-negative", key)
		}
	}
	if c.MachineLabor.HourlyRate < 0 {
		r.addf("machineLabor.hourlyRate must be non-negative")
	}
	if c.Cutting.RectangularPerFt < 0 {
		r.addf("cutting.rectangularPerFt must be non-negative")
	}
	if c.Cutting.ContourPerSqft < 0 {
		r.addf("cutting.contourPerSqft must be non-negative")
	}
	if c.Cutting.ContourMinimum < 0 {
		r.addf("cutting.contourMinimum must be non-negative")
	}
	validateCurve(r, "waste.tiers", c.Waste.Tiers, false)
	validateCurve(r, "qtyEfficiency.tiers", c.QtyEfficiency.Tiers, false)
	if c.Markup.Floor < 0 {
		r.addf("markup.floor must be non-negative")
	}
	validateCurve(r, "markup.retailTiers", c.Markup.RetailTiers, false)
	validateCurve(r, "markup.b2bTiers", c.Markup.B2BTiers, false)
	validateFees(r, c.MinimumPrice, c.FileFee)
}
