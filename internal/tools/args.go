package tools

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"efatura/pkg/models"
)

// Argument maps come from decoded JSON, so numbers arrive as float64 (or
// json.Number when the decoder was configured that way) and everything
// optional may simply be absent. The helpers below normalize that without
// failing on missing keys.

func stringArg(args map[string]any, key string) string {
	value, ok := args[key].(string)
	if !ok {
		return ""
	}
	return value
}

func intArg(args map[string]any, key string, fallback int) int {
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}

func decimalArg(args map[string]any, key string) *decimal.Decimal {
	d, err := decimalFromAny(args[key])
	if err != nil || d == nil {
		return nil
	}
	return d
}

func decimalFromAny(value any) (*decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("amount is not a finite number")
		}
		d := decimal.NewFromFloat(v)
		return &d, nil
	case int:
		d := decimal.NewFromInt(int64(v))
		return &d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", v.String(), err)
		}
		return &d, nil
	case string:
		if v == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", v, err)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("unsupported amount type %T", value)
	}
}

// itemsArg decodes the line item list of a create_invoice call.
func itemsArg(args map[string]any, key string) ([]models.InvoiceItem, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list of objects", key)
	}

	items := make([]models.InvoiceItem, 0, len(list))
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object", key, i)
		}

		item := models.InvoiceItem{
			Description: stringArg(obj, "description"),
		}
		for _, field := range []struct {
			name   string
			target *decimal.Decimal
		}{
			{"quantity", &item.Quantity},
			{"unit_price", &item.UnitPrice},
			{"total", &item.Total},
		} {
			d, err := decimalFromAny(obj[field.name])
			if err != nil {
				return nil, fmt.Errorf("%s[%d].%s: %w", key, i, field.name, err)
			}
			if d != nil {
				*field.target = *d
			}
		}
		items = append(items, item)
	}
	return items, nil
}
