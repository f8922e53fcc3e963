package output

import (
	"fmt"

	"github.com/jdesfossez/gt1000ctl/internal/effect"
)

// StateTable renders a mirror snapshot's per-category effect states as one
// flat table, in the fixed category order effect.Categories defines.
func StateTable(perCategory map[string][]effect.State) *TableData {
	t := NewTableData("CATEGORY", "INDEX", "SW", "TYPE", "SLIDER1", "SLIDER2")

	for _, category := range effect.Categories {
		for _, state := range perCategory[category] {
			t.AddRow(category, displayIndex(state.Index), displaySwitch(state.Switch), state.TypeName,
				displaySlider(state.Slider1), displaySlider(state.Slider2))
		}
	}
	return t
}

func displayIndex(index string) string {
	if index == "" {
		return "-"
	}
	return index
}

func displaySwitch(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func displaySlider(s *effect.Slider) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%s=%d [%d..%d]", s.Label, s.Value, s.Min, s.Max)
}
