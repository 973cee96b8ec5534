// Package synth generates synthetic records from a validated schema. It is
// pure: given the same seed and inputs it produces the same records, and it
// never fails on a schema that passed validation.
package synth

import (
	"math/rand"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/schema"
)

// Generator produces records from a dedicated random source. It is not safe
// for concurrent use; each pipeline owns its own Generator.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator seeded with the given value
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate produces exactly count records. Each record carries the reserved
// timestamp key first, then one value per schema field in schema order. Per
// field, a null decision is drawn against proportion_nulls before any value
// is generated.
func (g *Generator) Generate(s schema.Schema, count int, now time.Time) []Record {
	stamp := now.UTC().Format(TimestampLayout)

	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		record := newRecord(len(s) + 1)
		record.set(TimestampKey, stamp)

		for j := range s {
			field := &s[j]
			record.set(field.Name, g.generateValue(field))
		}

		records = append(records, record)
	}

	return records
}

// generateValue draws one value for a field, or nil when the null draw wins
func (g *Generator) generateValue(field *schema.FieldSpec) interface{} {
	if g.rng.Float64() < field.ProportionNulls {
		return nil
	}

	switch field.DataType {
	case schema.TypeCategory:
		categories := field.Categories()
		return categories[g.rng.Intn(len(categories))]

	case schema.TypeFloat:
		min, max := field.FloatBounds()
		return min + g.rng.Float64()*(max-min)

	case schema.TypeInteger:
		min, max := field.IntBounds()
		return min + g.rng.Int63n(max-min+1)

	case schema.TypeBool:
		return g.rng.Intn(2) == 1

	case schema.TypeDate:
		min, max := field.TimeBounds()
		days := int(max.Sub(min).Hours() / 24)
		return min.AddDate(0, 0, g.rng.Intn(days+1)).Format(schema.DateLayout)

	case schema.TypeDatetime:
		min, max := field.TimeBounds()
		span := int64(max.Sub(min))
		return min.Add(time.Duration(g.rng.Int63n(span + 1))).Format(TimestampLayout)

	default:
		// Unreachable for a validated schema
		return nil
	}
}
