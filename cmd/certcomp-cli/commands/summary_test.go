package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlattenSummary(t *testing.T) {
	published := "2021-01-31"
	testCases := []struct {
		name     string
		summary  any
		expected []summaryRow
	}{
		{
			name:     "status",
			summary:  map[string]string{"status": "OK"},
			expected: []summaryRow{{key: "status", value: "OK"}},
		},
		{
			name: "certifications",
			summary: map[string]any{"certifications": map[string]map[string][]string{
				"Associate": {"Azure Administrator Associate": {"AZ-104"}},
				"Expert":    {"Azure Solutions Architect Expert": {"AZ-303", "AZ-304"}},
			}},
			expected: []summaryRow{
				{key: "certifications.Associate.Azure Administrator Associate", value: "AZ-104"},
				{key: "certifications.Expert.Azure Solutions Architect Expert", value: "AZ-303; AZ-304"},
			},
		},
		{
			name: "null leaves",
			summary: map[string]*string{
				"AZ-103": &published,
				"AZ-900": nil,
			},
			expected: []summaryRow{
				{key: "AZ-103", value: "2021-01-31"},
				{key: "AZ-900", value: ""},
			},
		},
		{
			name: "array of objects",
			summary: map[string]any{"competencies": map[string]any{
				"Cloud": []map[string]any{{"competency": "Cloud Platform", "link": nil}},
			}},
			expected: []summaryRow{
				{key: "competencies.Cloud.0.competency", value: "Cloud Platform"},
				{key: "competencies.Cloud.0.link", value: ""},
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			rows, err := flattenSummary(test.summary)
			require.NoError(t, err)
			require.Equal(t, test.expected, rows)
		})
	}
}
