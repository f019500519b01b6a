// Package docgen provides the seeded document generator that produces
// structured test documents with controllable shape.
// Implements: spec.md §4.5
package docgen

import (
	"fmt"

	"github.com/whhaicheng/docbench/internal/domain/randsrc"
)

// ArrayElementKind selects what kind of value fills generated array
// fields.
type ArrayElementKind string

const (
	ArrayElementString ArrayElementKind = "string"
	ArrayElementNumber ArrayElementKind = "number"
	ArrayElementObject ArrayElementKind = "object"
	ArrayElementMixed  ArrayElementKind = "mixed"
)

// Template selects a fixed-shape preset document instead of a
// randomly-assembled one.
type Template string

const (
	TemplateNone             Template = ""
	TemplateECommerceOrder   Template = "ecommerce_order"
	TemplateUserProfile      Template = "user_profile"
	TemplateIoTSensorReading Template = "iot_sensor_reading"
)

// Config configures a Generator. Construct via NewConfig, which applies
// the documented defaults; fields left at their zero value behave as
// specified in spec.md §4.5.
type Config struct {
	Random *randsrc.Source

	FieldCount int

	MinStringLength int
	MaxStringLength int

	NumericFieldProbability float64
	BooleanFieldProbability float64

	NestingDepth   int
	FieldsPerLevel int

	TargetPath  string
	TargetValue any

	ArrayFieldCount  int
	ArrayMinSize     int
	ArrayMaxSize     int
	ArrayElementKind ArrayElementKind

	TargetByteSize       int // 0 means unset
	SizeTolerancePercent float64

	TargetFieldPosition int // 0 means unset; one-based per spec.md §4.5
	TargetFieldName     string

	Template Template
}

// NewConfig returns a Config with spec.md's documented defaults and the
// given random source.
func NewConfig(random *randsrc.Source) Config {
	return Config{
		Random:                  random,
		FieldCount:              20,
		MinStringLength:         5,
		MaxStringLength:         20,
		NumericFieldProbability: 0.3,
		BooleanFieldProbability: 0.1,
		NestingDepth:            0,
		FieldsPerLevel:          5,
		ArrayMinSize:            1,
		ArrayMaxSize:            5,
		ArrayElementKind:        ArrayElementString,
		SizeTolerancePercent:    20,
	}
}

// Validate reports configuration errors that would otherwise surface as
// confusing panics deep inside generation.
func (c Config) Validate() error {
	if c.Random == nil {
		return fmt.Errorf("docgen: Random source is required")
	}
	if c.FieldCount < 0 {
		return fmt.Errorf("docgen: FieldCount must be >= 0")
	}
	if c.ArrayFieldCount > c.FieldCount {
		return fmt.Errorf("docgen: ArrayFieldCount (%d) must not exceed FieldCount (%d)", c.ArrayFieldCount, c.FieldCount)
	}
	if c.MinStringLength > c.MaxStringLength {
		return fmt.Errorf("docgen: MinStringLength must not exceed MaxStringLength")
	}
	if c.ArrayMinSize > c.ArrayMaxSize {
		return fmt.Errorf("docgen: ArrayMinSize must not exceed ArrayMaxSize")
	}
	if c.TargetFieldPosition < 0 {
		return fmt.Errorf("docgen: TargetFieldPosition must be >= 0")
	}
	return nil
}
