package domain

import "strings"

// Normalized oil-type labels
const (
	OilTypeSoya     = "Soya Oil"
	OilTypeRiceBran = "Rice Bran Oil"
	OilTypePalm     = "Palm Oil"
)

// DeriveOilType normalizes an order's oil type. An explicit value that
// is not "unknown" always wins over the heuristic. Otherwise the
// uppercased SKU name is matched against ordered substring rules,
// first match wins. Falls back to the raw value when nothing matches.
//
// Best-effort classification for reporting, not an authoritative
// product taxonomy.
func DeriveOilType(rawOilType, skuName string) string {
	trimmed := strings.TrimSpace(rawOilType)
	if trimmed != "" && !strings.EqualFold(trimmed, "unknown") {
		return trimmed
	}

	s := strings.ToUpper(skuName)
	switch {
	case strings.Contains(s, " SBO") || strings.HasPrefix(s, "SBO"):
		return OilTypeSoya
	case strings.Contains(s, " RBO") || strings.HasPrefix(s, "RBO"):
		return OilTypeRiceBran
	case strings.Contains(s, "PALM OIL") || strings.Contains(s, " PALM") || strings.HasPrefix(s, "PALM"):
		return OilTypePalm
	case strings.Contains(s, "SOYA"):
		return OilTypeSoya
	case strings.Contains(s, "RICE") || strings.Contains(s, "RBO"):
		return OilTypeRiceBran
	}
	return rawOilType
}

// SkuReference is the reference record used to convert box/unit counts
// into kilograms and to backfill oil types
type SkuReference struct {
	SkuName       string  `bson:"skuName" json:"skuName"`
	SkuWeight     float64 `bson:"skuWeight" json:"skuWeight"`
	NosPerMainUOM float64 `bson:"nosPerMainUom" json:"nosPerMainUom"`
	MainUOM       string  `bson:"mainUom" json:"mainUom"`
	AlternateUOM  string  `bson:"alternateUom" json:"alternateUom"`
}

// SkuIndex provides weight lookups keyed by uppercased, trimmed SKU name
type SkuIndex map[string]SkuReference

// NewSkuIndex builds a lookup index from SKU reference records
func NewSkuIndex(refs []SkuReference) SkuIndex {
	index := make(SkuIndex, len(refs))
	for _, ref := range refs {
		index[skuKey(ref.SkuName)] = ref
	}
	return index
}

// Lookup finds a SKU reference by name
func (idx SkuIndex) Lookup(skuName string) (SkuReference, bool) {
	ref, ok := idx[skuKey(skuName)]
	return ref, ok
}

// Weight returns the per-unit weight of a SKU, 0 when unknown
func (idx SkuIndex) Weight(skuName string) float64 {
	if ref, ok := idx.Lookup(skuName); ok {
		return ref.SkuWeight
	}
	return 0
}

// QuantityKg converts a raw quantity to kilograms using the SKU's unit
// weight. Unknown SKUs are treated as already measured in kilograms.
func (idx SkuIndex) QuantityKg(skuName string, quantity float64) float64 {
	if weight := idx.Weight(skuName); weight > 0 {
		return quantity * weight
	}
	return quantity
}

func skuKey(skuName string) string {
	return strings.ToUpper(strings.TrimSpace(skuName))
}
