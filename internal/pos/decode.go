package pos

import (
	"github.com/tidwall/gjson"
)

// uomPricing maps POS unit-of-measure codes to a pricing type. Feeds
// occasionally carry UOMs the catalog cannot convert; those records are
// rejected as per-item validation errors.
var uomPricing = map[string]PricingType{
	"gm": PricingWeight,
	"g":  PricingWeight,
	"oz": PricingWeight,
	"ea": PricingUnit,
	"un": PricingUnit,
}

// DecodeInventoryItem decodes one inventory feed record. Records missing a
// POS identifier or carrying an unconvertible unit of measure return a
// *ValidationError so the caller can skip them and keep the run going.
func DecodeInventoryItem(rec RemoteRecord) (*InventoryItem, error) {
	if rec.PosID == "" {
		return nil, &ValidationError{Reason: "missing POS identifier"}
	}

	root := gjson.ParseBytes(rec.Raw)

	item := &InventoryItem{
		PosID:    rec.PosID,
		Name:     firstString(root, "productName", "name"),
		Category: root.Get("category").String(),
		Strain:   firstString(root, "strainName", "strain"),
	}

	qty := root.Get("quantityAvailable")
	if !qty.Exists() {
		qty = root.Get("quantity")
	}
	if !qty.Exists() {
		return nil, &ValidationError{PosID: rec.PosID, Reason: "missing quantity"}
	}
	item.Quantity = qty.Float()

	pricingType, err := decodePricingType(rec.PosID, root)
	if err != nil {
		return nil, err
	}
	item.PricingType = pricingType

	item.UnitPrice = root.Get("unitPrice").Float()
	item.PricingTier = root.Get("pricingTier").String()

	for _, wp := range root.Get("weightPrices").Array() {
		item.WeightPrices = append(item.WeightPrices, WeightPrice{
			Label: firstString(wp, "name", "label"),
			Price: wp.Get("price").Float(),
		})
	}

	for _, img := range root.Get("images").Array() {
		item.Images = append(item.Images, Image{
			Size: img.Get("size").String(),
			URL:  img.Get("url").String(),
		})
	}

	if root.Get("notAvailableOnline").Bool() {
		item.NotAvailableOnline = true
	}
	if ao := root.Get("available_online"); ao.Exists() && ao.Int() == 0 {
		item.NotAvailableOnline = true
	}

	return item, nil
}

func decodePricingType(posID string, root gjson.Result) (PricingType, error) {
	if pt := root.Get("pricingType").String(); pt != "" {
		switch PricingType(pt) {
		case PricingWeight, PricingUnit:
			return PricingType(pt), nil
		default:
			return "", &ValidationError{PosID: posID, Reason: "unsupported pricing type: " + pt}
		}
	}
	if uom := root.Get("uom").String(); uom != "" {
		if pt, ok := uomPricing[uom]; ok {
			return pt, nil
		}
		return "", &ValidationError{PosID: posID, Reason: "invalid unit-of-measure conversion: " + uom}
	}
	// No pricing signal at all defaults to unit pricing
	return PricingUnit, nil
}

// DecodeCustomer decodes one customer feed record. posOrgID is the
// vendor-side organization id for vendors with compound customer keys;
// pass "" for vendors whose customer ids are globally unique.
func DecodeCustomer(rec RemoteRecord, posOrgID string) (*CustomerRecord, error) {
	if rec.PosID == "" {
		return nil, &ValidationError{Reason: "missing POS identifier"}
	}

	root := gjson.ParseBytes(rec.Raw)

	return &CustomerRecord{
		PosID:     rec.PosID,
		PosOrgID:  posOrgID,
		FirstName: firstString(root, "firstName", "first_name"),
		LastName:  firstString(root, "lastName", "last_name"),
		Email:     firstString(root, "emailAddress", "email"),
		Phone:     firstString(root, "phoneNumber", "phone"),
	}, nil
}

func firstString(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := root.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
