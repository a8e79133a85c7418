package brace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules(t *testing.T) {
	testCases := []struct {
		id        string
		braceType string
		height    float64
		e         float64
		expected  []Message
	}{
		{
			id:        "SB-A+B low and narrow, bracing B may be omitted",
			braceType: "SB-A+B",
			height:    5.00,
			e:         1.30,
			expected: []Message{
				{Info, msgPreIncline},
				{Info, msgOmitB},
				{Required, msgCrane},
			},
		},
		{
			id:        "SB-A+B at the height and width limits",
			braceType: "SB-A+B",
			height:    5.25,
			e:         1.35,
			expected: []Message{
				{Info, msgPreIncline},
				{Info, msgOmitB},
				{Required, msgCrane},
			},
		},
		{
			id:        "SB-A+B too wide",
			braceType: "SB-A+B",
			height:    5.00,
			e:         1.40,
			expected: []Message{
				{Info, msgPreIncline},
				{Required, msgRequireAB},
				{Required, msgCrane},
			},
		},
		{
			id:        "SB-A+B too high",
			braceType: "SB-A+B",
			height:    5.50,
			e:         1.30,
			expected: []Message{
				{Info, msgPreIncline},
				{Required, msgRequireAB},
				{Required, msgCrane},
			},
		},
		{
			id:        "SB-2 from 5.00 m needs bracing",
			braceType: "SB-2",
			height:    5.00,
			e:         1.25,
			expected: []Message{
				{Info, msgPreIncline},
				{Required, msgRequireSB2},
				{Required, msgCrane},
			},
		},
		{
			id:        "SB-2 below 5.00 m with too wide spacing",
			braceType: "SB-2",
			height:    4.75,
			e:         1.30,
			expected: []Message{
				{Info, msgPreIncline},
				{Info, msgNoBracingSB2},
				{Required, msgCrane},
				{Warning, msgMaxE125},
			},
		},
		{
			id:        "unknown type with diagonal marker only gets the pre-incline note",
			braceType: "SB-C",
			height:    5.00,
			e:         1.00,
			expected:  []Message{{Info, msgPreIncline}},
		},
		{
			id:        "any SB name gets the pre-incline note",
			braceType: "SB-4",
			height:    5.00,
			e:         1.00,
			expected:  []Message{{Info, msgPreIncline}},
		},
		{
			id:        "unknown family",
			braceType: "XB-A",
			height:    5.00,
			e:         1.00,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.expected, Rules(tc.braceType, tc.height, tc.e))
		})
	}
}

func TestSeverityJSON(t *testing.T) {
	b, err := json.Marshal(Message{Severity: Warning, Text: msgMaxE125})
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"warning","text":"`+msgMaxE125+`"}`, string(b))

	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"required","text":"x"}`), &m))
	assert.Equal(t, Message{Required, "x"}, m)

	assert.Error(t, json.Unmarshal([]byte(`{"severity":"fatal"}`), &m))
	assert.Equal(t, "Severity(7)", Severity(7).String())
}
