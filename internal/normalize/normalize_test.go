package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExamID(t *testing.T) {
	table := []struct {
		input    string
		expected string
		ok       bool
	}{
		{input: "Exam 70-532", expected: "70-532", ok: true},
		{input: "Exam az-900", expected: "AZ-900", ok: true},
		{input: "Transition MS-202", expected: "MS-202", ok: true},
		{input: "70-532: Upgrading your skills", expected: "70-532", ok: true},
		{input: "70-532:", expected: "70-532", ok: true},
		{input: "AI-100", expected: "AI-100", ok: true},
		{input: "ai-100", expected: "AI-100", ok: true},
		{input: "532", expected: "70-532", ok: true},
		{input: "MB-200 (beta) Microsoft Power Platform", expected: "MB-200", ok: true},
		{input: " AZ-104 ", expected: "AZ-104", ok: true},
		{input: "", ok: false},
		{input: "None", ok: false},
		{input: "   ", ok: false},
	}

	for _, row := range table {
		result, ok := ExamID(row.input)
		require.Equal(t, row.ok, ok, row.input)
		require.Equal(t, row.expected, result, row.input)
	}
}

func TestExamIDStripsPrefixes(t *testing.T) {
	codes := []string{"AZ-900", "dp-203", "70-483", "MB-910", "pl-300"}
	for _, code := range codes {
		for _, prefix := range []string{"Exam ", "Transition "} {
			result, ok := ExamID(prefix + code)
			require.True(t, ok)
			require.Equal(t, strings.ToUpper(code), result)
		}
	}
}

func TestLinkExamID(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "Exam 70-532: Developing Microsoft Azure Solutions", expected: "70-532"},
		{input: "Exam 532", expected: "70-532"},
		{input: "70-487", expected: "70-487"},
		{input: "az-203", expected: "az-203"},
		{input: "MB2-716 Microsoft Dynamics 365 Customization", expected: "MB2-716"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, LinkExamID(row.input), row.input)
	}
}

func TestCertID(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "https://www.microsoft.com/en-us/learning/azure-administrator.aspx", expected: "azureAdministrator"},
		{input: "https://www.microsoft.com/en-us/learning/azure-administrator.aspx/", expected: "azureAdministrator"},
		{input: "https://www.microsoft.com/en-us/learning/m365-security-administrator.aspx", expected: "m365SecurityAdministrator"},
		{input: "azure-fundamentals", expected: "azureFundamentals"},
		{input: "", expected: ""},
	}

	for _, row := range table {
		require.Equal(t, row.expected, CertID(row.input), row.input)
	}
}

func TestStripMarketing(t *testing.T) {
	require.Equal(
		t,
		"Pass Exam 70-483.",
		StripMarketing("Pass Exam 70-483. Be sure to explore the exam prep resources."),
	)
}

func TestExamUID(t *testing.T) {
	id, ok := ExamUID("exam.az-104")
	require.True(t, ok)
	require.Equal(t, "AZ-104", id)

	_, ok = ExamUID("certification.azure-administrator")
	require.False(t, ok)
}

func TestExamLabels(t *testing.T) {
	require.Equal(t, "70-483", DisplayExamCode("Exam 70-483"))
	require.Equal(t, "AZ-103", StripExamLabels("Exam AZ-103"))
	require.Equal(t, "AZ-302", StripExamLabels("Transition AZ-302"))
}
