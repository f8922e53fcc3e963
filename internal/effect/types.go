// Package effect implements the Effect Model: a typed view over the Schema
// Store that resolves a (category, index) pair to its switch state, type
// name, and the two conventional sliders whose identity depends on the
// currently selected type.
package effect

import "errors"

// ErrUnknownCategory is returned for a category name the model doesn't
// recognize.
var ErrUnknownCategory = errors.New("effect: unknown category")

// Categories lists every effect category in the order the device exposes
// them. "fx" is the only one whose instance count is model-dependent.
var Categories = []string{
	"comp", "dist", "preamp", "ns", "eq", "delay", "mstDelay", "chorus", "fx", "pedalFx",
}

// Slider is one of an instance's two conventional value sliders.
type Slider struct {
	Label string
	Value int
	Min   int
	Max   int
}

// State is the resolved view of one category instance at a point in time.
type State struct {
	Category string
	Index    string // "", "A"/"B", or "1".."N"
	Switch   bool
	TypeName string // the group name (e.g. "ns", "preampA") when the category has no TYPE field
	Slider1  *Slider
	Slider2  *Slider
}

const (
	sectionPatch  = "patch (temporary patch)"
	sectionPatch2 = "patch2 (temporary patch)"
	sectionPatch3 = "patch3 (temporary patch)"
)
