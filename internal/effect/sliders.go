package effect

// sliderFieldPair names the two field labels a category (or, for "fx", a
// specific type) exposes as its conventional pair of sliders. Either half
// may be empty, meaning that slider is absent for this category/type.
type sliderFieldPair struct {
	slider1 string
	slider2 string
}

// sliderFieldsForCategory returns the slider field pair for every category
// except "fx", whose pair depends on the currently selected type instead
// (see sliderFieldsForFxType). paramName is the category's own TYPE value,
// used only by "eq" to choose between LEVEL1 and LEVEL.
func sliderFieldsForCategory(category, paramName string) sliderFieldPair {
	switch category {
	case "comp":
		return sliderFieldPair{"SUSTAIN", "LEVEL"}
	case "dist":
		return sliderFieldPair{"DRIVE", "LEVEL"}
	case "preamp":
		return sliderFieldPair{"GAIN", "LEVEL"}
	case "ns":
		return sliderFieldPair{"THRESHOLD", "RELEASE"}
	case "eq":
		if paramName == "PARAMETRIC" {
			return sliderFieldPair{slider1: "LEVEL1"}
		}
		return sliderFieldPair{slider1: "LEVEL"}
	case "delay", "mstDelay", "chorus", "reverb":
		return sliderFieldPair{"EFFECT LEVEL", "DIRECT LEVEL"}
	case "pedalFx":
		return sliderFieldPair{"EFFECT LEVEL", "DIRECT MIX"}
	default:
		return sliderFieldPair{}
	}
}

// sliderFieldsForFxType is the full fx-category decision table: which two
// fields are shown depends entirely on the multi-effects block's currently
// selected type, since each type occupies a different field layout at the
// same address range.
func sliderFieldsForFxType(fxName string) sliderFieldPair {
	switch fxName {
	case "AC GUITAR SIM", "AC RESONANCE":
		return sliderFieldPair{slider1: "LEVEL"}
	case "AUTO WAH", "DEFRETTER BASS", "FLANGER", "PAN", "PHASER", "RING MOD",
		"ROTARY", "SITAR SIM", "SLICER", "TOUCH WAH", "TREMOLO", "VIBRATO",
		"FLANGER BASS":
		return sliderFieldPair{"EFFECT LEVEL", "DIRECT MIX"}
	case "CHORUS":
		return sliderFieldPair{"EFFECT LEVEL", "DIRECT LEVEL"}
	case "OVERTONE":
		return sliderFieldPair{"UPPER LEVEL", "DIRECT LEVEL"}
	case "OCTAVE":
		return sliderFieldPair{"OCTAVE LEVEL", "DIRECT LEVEL"}
	case "CLASSIC-VIBE", "DEFRETTER", "CHORUS BASS":
		return sliderFieldPair{"EFFECT LEVEL", "DEPTH"}
	case "SOUND HOLD":
		return sliderFieldPair{"EFFECT LEVEL", "RISE TIME"}
	case "S-BEND":
		return sliderFieldPair{"FALL TIME", "RISE TIME"}
	case "HUMANIZER":
		return sliderFieldPair{"LEVEL", "DEPTH"}
	case "DISTORTION":
		return sliderFieldPair{"DRIVE", "LEVEL"}
	case "MASTERING FX":
		return sliderFieldPair{"TONE", "NATURAL"}
	case "SLOW GEAR", "SLOW GEAR BASS":
		return sliderFieldPair{"LEVEL", "SENS"}
	case "COMPRESSOR":
		return sliderFieldPair{"LEVEL", "DIRECT MIX"}
	case "FEEDBACKER":
		return sliderFieldPair{"FEEDBACK", "OCT FEEDBACK"}
	case "HARMONIST":
		return sliderFieldPair{"HR1:LEVEL", "DIRECT LEVEL"}
	case "PITCH SHIFTER":
		return sliderFieldPair{"PS1:LEVEL", "DIRECT LEVEL"}
	default:
		return sliderFieldPair{}
	}
}

// hasTypeField reports whether category carries a TYPE field at all; "ns"
// and "delay" are switch-only blocks whose display name is synthesized as
// "{category}{index}" instead of read from the device.
func hasTypeField(category string) bool {
	return category != "ns" && category != "delay"
}
