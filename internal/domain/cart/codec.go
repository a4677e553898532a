package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Persisted cart layout: a JSON array of line item objects. Monetary fields
// are encoded as strings so decimal values survive the round trip exactly.

// EncodeItems serializes line items into the persisted JSON layout.
func EncodeItems(items []LineItem) []byte {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, item := range items {
			encodeLine(e, item)
		}
	})
	return e.Bytes()
}

func encodeLine(e *jx.Encoder, item LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("productId", func(e *jx.Encoder) { e.Str(item.ProductID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(item.Kind)) })
		e.Field("unit", func(e *jx.Encoder) { e.Str(string(item.Unit)) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
		e.Field("packPrice", func(e *jx.Encoder) { e.Str(item.PackPrice.String()) })
		e.Field("unitPrice", func(e *jx.Encoder) { e.Str(item.UnitPrice.String()) })
		e.Field("palletPrice", func(e *jx.Encoder) { e.Str(item.PalletPrice.String()) })
		e.Field("unitsPerPack", func(e *jx.Encoder) { e.Int(item.UnitsPerPack) })
		e.Field("packsPerPallet", func(e *jx.Encoder) { e.Int(item.PacksPerPallet) })
		e.Field("finalPrice", func(e *jx.Encoder) { e.Str(item.FinalPrice.String()) })
		e.Field("bulkTiers", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, t := range item.BulkTiers {
					e.Obj(func(e *jx.Encoder) {
						e.Field("minQuantity", func(e *jx.Encoder) { e.Int(t.MinQuantity) })
						e.Field("price", func(e *jx.Encoder) { e.Str(t.Price.String()) })
					})
				}
			})
		})
	})
}

// DecodeItems parses the persisted JSON layout back into line items. Any
// syntax or field error makes the whole payload invalid; callers treat that
// as an empty cart.
func DecodeItems(data []byte) ([]LineItem, error) {
	d := jx.DecodeBytes(data)

	var items []LineItem
	if err := d.Arr(func(d *jx.Decoder) error {
		item, err := decodeLine(d)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart items")
	}

	return items, nil
}

func decodeLine(d *jx.Decoder) (LineItem, error) {
	var item LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			item.ProductID, err = d.Str()
		case "name":
			item.Name, err = d.Str()
		case "kind":
			var s string
			if s, err = d.Str(); err == nil {
				item.Kind = Kind(s)
			}
		case "unit":
			var s string
			if s, err = d.Str(); err == nil {
				item.Unit = FulfillmentUnit(s)
			}
		case "quantity":
			item.Quantity, err = d.Int()
		case "packPrice":
			item.PackPrice, err = decodeDecimal(d)
		case "unitPrice":
			item.UnitPrice, err = decodeDecimal(d)
		case "palletPrice":
			item.PalletPrice, err = decodeDecimal(d)
		case "unitsPerPack":
			item.UnitsPerPack, err = d.Int()
		case "packsPerPallet":
			item.PacksPerPallet, err = d.Int()
		case "finalPrice":
			item.FinalPrice, err = decodeDecimal(d)
		case "bulkTiers":
			err = d.Arr(func(d *jx.Decoder) error {
				tier, err := decodeTier(d)
				if err != nil {
					return err
				}
				item.BulkTiers = append(item.BulkTiers, tier)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return item, err
}

func decodeTier(d *jx.Decoder) (BulkTier, error) {
	var tier BulkTier
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "minQuantity":
			tier.MinQuantity, err = d.Int()
		case "price":
			tier.Price, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return tier, err
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	s, err := d.Str()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(s)
}
