package docgen

import (
	"fmt"

	"github.com/whhaicheng/docbench/internal/domain/document"
)

// EstimateSize estimates the encoded byte size of a value using the
// UTF-16-approximation rules from spec.md §4.5: 4 bytes overhead per
// value, 2*length+4 for strings, 8 for numbers, 1 for booleans, and a
// recursive sum with 4-byte container overhead for arrays and objects.
func EstimateSize(v any) int {
	const valueOverhead = 4
	switch val := v.(type) {
	case string:
		return valueOverhead + 2*len(val) + 4
	case bool:
		return valueOverhead + 1
	case nil:
		return valueOverhead
	case []any:
		total := valueOverhead + 4
		for _, elem := range val {
			total += EstimateSize(elem)
		}
		return total
	case *document.Fields:
		total := valueOverhead + 4
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			total += len(pair.Key) + EstimateSize(pair.Value)
		}
		return total
	default:
		// int, float64, and other numeric Go types generated by this
		// package.
		return valueOverhead + 8
	}
}

// generateToTargetSize emits fields until the estimated size of the
// assembled document is within +/- SizeTolerancePercent of
// TargetByteSize, per spec.md §4.5. A final padding field closes the gap
// precisely, since randomly-sized fields alone would overshoot or
// undershoot the band by chance.
func (g *Generator) generateToTargetSize() *document.Fields {
	fields := document.NewFields()
	target := g.cfg.TargetByteSize
	tolerance := g.cfg.SizeTolerancePercent / 100
	lowerBound := int(float64(target) * (1 - tolerance))

	const padFieldName = "_size_pad"
	i := 1
	for EstimateSize(fields) < lowerBound {
		name := fmt.Sprintf("field_%d", i)
		i++
		fields.Set(name, g.randomScalar())
	}

	// Close the remaining gap with one padding string field sized by the
	// inverse of the string-cost formula:
	// cost = valueOverhead(4) + 2*len + keyLen + 4.
	// The pad can only add bytes: a gap smaller than the pad's fixed cost
	// (including a negative one) yields an empty pad string.
	remaining := target - EstimateSize(fields)
	keyCost := len(padFieldName)
	length := (remaining - 8 - keyCost) / 2
	if length < 0 {
		length = 0
	}
	fields.Set(padFieldName, padString(length))
	return fields
}

func padString(length int) string {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = 'x'
	}
	return string(buf)
}
