package order

import (
	"encoding/json"
	"fmt"
)

// Screen is the stage of the ordering flow currently on display.
type Screen int

const (
	ScreenOrdering Screen = iota
	ScreenSummaryLoading
	ScreenSummary
	ScreenFinalLoading
	ScreenConfirmation
)

var screenNames = map[Screen]string{
	ScreenOrdering:       "ordering",
	ScreenSummaryLoading: "summary_loading",
	ScreenSummary:        "summary",
	ScreenFinalLoading:   "final_loading",
	ScreenConfirmation:   "confirmation",
}

func (s Screen) String() string {
	if n, ok := screenNames[s]; ok {
		return n
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

// Loading reports whether the screen is a simulated processing stage.
func (s Screen) Loading() bool {
	return s == ScreenSummaryLoading || s == ScreenFinalLoading
}

// MarshalJSON encodes the screen by name.
func (s Screen) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a screen name.
func (s *Screen) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for k, v := range screenNames {
		if v == name {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown screen %q", name)
}
