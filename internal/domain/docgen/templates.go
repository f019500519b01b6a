package docgen

import "github.com/whhaicheng/docbench/internal/domain/document"

// generateFromTemplate emits a canonical document shape for the
// configured preset template. The field set is fixed by spec.md §4.5; the
// random source determines variable string/number content only.
func (g *Generator) generateFromTemplate() *document.Fields {
	switch g.cfg.Template {
	case TemplateECommerceOrder:
		return g.ecommerceOrder()
	case TemplateUserProfile:
		return g.userProfile()
	case TemplateIoTSensorReading:
		return g.iotSensorReading()
	default:
		return document.NewFields()
	}
}

func (g *Generator) ecommerceOrder() *document.Fields {
	r := g.cfg.Random
	order := document.NewFields()
	order.Set("order_number", r.NextAlphanumeric(10))
	status, _ := r.NextIntRange(0, 4)
	order.Set("status", [...]string{"pending", "shipped", "delivered", "cancelled"}[status])

	customer := document.NewFields()
	customer.Set("name", r.NextAlphanumeric(12))
	customer.Set("email", r.NextAlphanumeric(8)+"@example.com")

	itemCount, _ := r.NextIntRange(1, 6)
	items := make([]any, itemCount)
	var total int
	for i := range items {
		item := document.NewFields()
		item.Set("sku", r.NextAlphanumeric(8))
		qty, _ := r.NextIntRange(1, 5)
		price, _ := r.NextIntRange(100, 10000)
		item.Set("quantity", qty)
		item.Set("unit_price_cents", price)
		items[i] = item
		total += qty * price
	}

	addrCount, _ := r.NextIntRange(1, 3)
	addresses := make([]any, addrCount)
	for i := range addresses {
		addr := document.NewFields()
		addr.Set("line1", r.NextAlphanumeric(16))
		addr.Set("zip", r.NextAlphanumeric(5))
		addresses[i] = addr
	}
	customer.Set("addresses", addresses)

	order.Set("customer", customer)
	order.Set("items", items)
	order.Set("total_cents", total)
	return order
}

func (g *Generator) userProfile() *document.Fields {
	r := g.cfg.Random
	profile := document.NewFields()
	profile.Set("username", r.NextAlphanumeric(10))
	profile.Set("display_name", r.NextAlphanumeric(16))
	age, _ := r.NextIntRange(13, 90)
	profile.Set("age", age)
	profile.Set("verified", r.NextBool())

	settings := document.NewFields()
	settings.Set("theme", r.NextAlphanumeric(6))
	settings.Set("notifications_enabled", r.NextBool())
	profile.Set("settings", settings)

	tagCount, _ := r.NextIntRange(0, 5)
	tags := make([]any, tagCount)
	for i := range tags {
		tags[i] = r.NextAlphanumeric(8)
	}
	profile.Set("tags", tags)
	return profile
}

func (g *Generator) iotSensorReading() *document.Fields {
	r := g.cfg.Random
	reading := document.NewFields()
	reading.Set("device_id", r.NextAlphanumeric(12))
	reading.Set("sequence", r.NextInt32())

	metrics := document.NewFields()
	temp, _ := r.NextIntRange(-40, 85)
	metrics.Set("temperature_c", temp)
	humidity, _ := r.NextIntRange(0, 100)
	metrics.Set("humidity_pct", humidity)
	battery := r.NextFloat64()
	metrics.Set("battery_pct", battery*100)
	reading.Set("metrics", metrics)

	location := document.NewFields()
	location.Set("lat", r.NextFloat64()*180-90)
	location.Set("lon", r.NextFloat64()*360-180)
	reading.Set("location", location)

	reading.Set("online", r.NextBool())
	return reading
}
