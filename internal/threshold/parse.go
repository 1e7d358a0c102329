package threshold

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPayload is returned when a structured configuration field
// does not parse after normalization. The caller rejects the whole upsert.
var ErrMalformedPayload = errors.New("malformed_payload")

// RGB is a color value as stored in the color-rule payloads, e.g. [0,176,80].
type RGB [3]uint8

// ColorRules maps a classification to the color it should render as. Two
// sets exist per customer month: indicator and circle.
type ColorRules map[Classification]RGB

// Normalize rewrites a single-quoted payload to double-quoted JSON. This is
// the one tolerance the store grants; anything else malformed is rejected
// rather than repaired. Payloads that already contain double quotes are
// passed through untouched.
func Normalize(payload string) string {
	value := strings.TrimSpace(payload)
	if strings.Contains(value, "'") && !strings.Contains(value, `"`) {
		value = strings.ReplaceAll(value, "'", `"`)
	}
	return value
}

// ParseRuleSet parses a threshold payload such as
// {"Color1": 90, "Color2": 80, "Color3": 70}.
func ParseRuleSet(payload string) (RuleSet, error) {
	var rules RuleSet
	if err := strictUnmarshal(payload, &rules); err != nil {
		return RuleSet{}, err
	}
	return rules, nil
}

// ParseColorRules parses a color payload such as
// {"Color1": [0,176,80], "Color2": [255,192,0], "Color3": [255,0,0], "Invalid": [128,128,128]}.
func ParseColorRules(payload string) (ColorRules, error) {
	raw := map[string]RGB{}
	if err := strictUnmarshal(payload, &raw); err != nil {
		return nil, err
	}
	rules := make(ColorRules, len(raw))
	for key, rgb := range raw {
		rules[canonicalClassification(key)] = rgb
	}
	return rules, nil
}

func strictUnmarshal(payload string, target any) error {
	normalized := Normalize(payload)
	if normalized == "" {
		return fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}
	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// canonicalClassification maps stored keys to the exported tier names.
// Payloads written by the UI historically used both "Color1" and "color1".
func canonicalClassification(key string) Classification {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "color1":
		return Color1
	case "color2":
		return Color2
	case "color3":
		return Color3
	default:
		return Invalid
	}
}
