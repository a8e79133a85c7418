package brace

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Severity int

const (
	Info Severity = iota
	Required
	Warning
)

var severityNames = [...]string{"info", "required", "warning"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for i, n := range severityNames {
		if n == name {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", name)
}

type Message struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

const (
	msgPreIncline   = "Recommendation: Pre-incline the Brace Frame by 2/3 of the calculated deflection."
	msgOmitB        = "Diagonal Bracing B can be omitted during concreting."
	msgRequireAB    = "Required: Diagonal Bracing A and B for concreting."
	msgCrane        = "Required: Diagonal Bracing for moving and lifting the formwork unit with the crane."
	msgRequireSB2   = "Required: Diagonal Bracing for concreting (height ≥ 5.00 m)."
	msgNoBracingSB2 = "No diagonal bracing required for concreting (height < 5.00 m)."
	msgMaxE125      = "Warning: Permissible width of influence exceeds maximum of 1.25 m."
	msgProvisional  = "Warning: Values are based on provisional load table rows. Check them against the manufacturer's load tables before use on site."
)

type ruleFunc func(height, e float64) []Message

var typeRules = map[BraceType]ruleFunc{
	TypeAB: func(height, e float64) []Message {
		var ms []Message
		if e <= 1.35 && height <= 5.25 {
			ms = append(ms, Message{Info, msgOmitB})
		} else {
			ms = append(ms, Message{Required, msgRequireAB})
		}
		return append(ms, Message{Required, msgCrane})
	},
	TypeSB2: func(height, e float64) []Message {
		var ms []Message
		if height >= 5.00 {
			ms = append(ms, Message{Required, msgRequireSB2})
		} else {
			ms = append(ms, Message{Info, msgNoBracingSB2})
		}
		ms = append(ms, Message{Required, msgCrane})
		if e > 1.25 {
			ms = append(ms, Message{Warning, msgMaxE125})
		}
		return ms
	},
}

// Rules returns the bracing notes for a frame in display order.
func Rules(braceType string, height, e float64) []Message {
	var ms []Message
	if hasDiagonalMarker(braceType) {
		ms = append(ms, Message{Info, msgPreIncline})
	}
	if rule, ok := typeRules[BraceType(braceType)]; ok {
		ms = append(ms, rule(height, e)...)
	}
	return ms
}

// hasDiagonalMarker reports whether a brace frame name carries one of the
// letters A, B or C. The whole name is searched, so the B of the "SB-"
// family prefix counts and every SB frame gets the pre-incline note.
func hasDiagonalMarker(braceType string) bool {
	return strings.Contains(braceType, "SB-") && strings.ContainsAny(braceType, "ABC")
}
