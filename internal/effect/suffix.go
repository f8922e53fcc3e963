package effect

// fxTableSuffix maps the display name of a multi-effects ("fx" category)
// type to the suffix used both in its schema group name (e.g. "fx1Chorus")
// and its field table name ("PatchFxChorus"). Most names compress by
// stripping spaces and hyphens and title-casing each word; DISTORTION and
// MASTERING FX are the two exceptions, abbreviated to match the group and
// table names the redirect checks in startSectionForFx compare against.
var fxTableSuffix = map[string]string{
	"AC GUITAR SIM":   "AcGuitarSim",
	"AC RESONANCE":    "AcResonance",
	"AUTO WAH":        "AutoWah",
	"DEFRETTER BASS":  "DefretterBass",
	"FLANGER":         "Flanger",
	"PAN":             "Pan",
	"PHASER":          "Phaser",
	"RING MOD":        "RingMod",
	"ROTARY":          "Rotary",
	"SITAR SIM":       "SitarSim",
	"SLICER":          "Slicer",
	"TOUCH WAH":       "TouchWah",
	"TREMOLO":         "Tremolo",
	"VIBRATO":         "Vibrato",
	"FLANGER BASS":    "FlangerBass",
	"CHORUS":          "Chorus",
	"OVERTONE":        "Overtone",
	"OCTAVE":          "Octave",
	"CLASSIC-VIBE":    "ClassicVibe",
	"DEFRETTER":       "Defretter",
	"CHORUS BASS":     "ChorusBass",
	"SOUND HOLD":      "SoundHold",
	"S-BEND":          "SBend",
	"HUMANIZER":       "Humanizer",
	"DISTORTION":      "Dist",
	"MASTERING FX":    "MasterFx",
	"SLOW GEAR":       "SlowGear",
	"SLOW GEAR BASS":  "SlowGearBass",
	"COMPRESSOR":      "Compressor",
	"FEEDBACKER":      "Feedbacker",
	"HARMONIST":       "Harmonist",
	"PITCH SHIFTER":   "PitchShifter",
}

// tableSuffixForFxName returns the suffix for a known fx type name, and
// false for one the schema bundle doesn't recognize (e.g. a symbol read
// back from the device that the decision table hasn't been updated for).
func tableSuffixForFxName(name string) (string, bool) {
	s, ok := fxTableSuffix[name]
	return s, ok
}
