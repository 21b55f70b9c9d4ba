package exams

import (
	"context"
	"fmt"

	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/tables"
)

// MappingEntry ties a learning content query to the exams its results prepare
// for.
type MappingEntry struct {
	Filter string   `json:"filter"`
	Terms  string   `json:"terms,omitempty"`
	Exams  []string `json:"exams"`
}

func roleProduct(role, product string) string {
	return fmt.Sprintf("((roles/any(t: t eq '%s'))) and ((products/any(t: t eq '%s')))", role, product)
}

func product(name string) string {
	return fmt.Sprintf("((products/any(t: t eq '%s')))", name)
}

// LearnMapping is the curated table of learning content queries per exam.
var LearnMapping = []MappingEntry{
	{Filter: roleProduct("ai-engineer", "azure"), Exams: []string{"AI-100"}},
	{Filter: roleProduct("administrator", "azure"), Exams: []string{"AZ-102", "AZ-103"}},
	{Filter: roleProduct("solution-architect", "azure"), Exams: []string{"AZ-300", "AZ-301", "AZ-302"}},
	{Filter: roleProduct("developer", "azure"), Exams: []string{"AZ-203"}},
	{Filter: product("azure"), Terms: "devops", Exams: []string{"AZ-403"}},
	{Filter: product("azure"), Terms: "security", Exams: []string{"AZ-500"}},
	{Filter: product("azure"), Terms: "fundamentals", Exams: []string{"AZ-900"}},
	{Filter: roleProduct("data-scientist", "azure"), Exams: []string{"DP-100"}},
	{Filter: roleProduct("data-engineer", "azure"), Exams: []string{"DP-200", "DP-201"}},
	{Filter: product("dynamics-customer-engagement"), Exams: []string{"MB-200"}},
	{Filter: product("dynamics-sales"), Exams: []string{"MB-210"}},
	{Filter: product("dynamics-marketing"), Exams: []string{"MB-220"}},
	{Filter: product("dynamics-customer-service"), Exams: []string{"MB-230"}},
	{Filter: product("dynamics-field-service"), Exams: []string{"MB-240"}},
	{Filter: product("dynamics"), Terms: "unified operations", Exams: []string{"MB-300"}},
	{Filter: product("dynamics-finance-operations"), Exams: []string{"MB-310", "MB-320", "MB-330"}},
	{Filter: product("dynamics"), Terms: "fundamentals", Exams: []string{"MB-900"}},
	{Filter: product("m365"), Terms: "desktop", Exams: []string{"MD-100", "MD-101"}},
	{Filter: roleProduct("administrator", "m365"), Exams: []string{"MS-100", "MS-101"}},
	{Filter: product("m365"), Terms: "messaging", Exams: []string{"MS-200", "MS-201", "MS-202"}},
	{Filter: product("m365"), Terms: "teamwork", Exams: []string{"MS-300", "MS-301", "MS-302"}},
	{Filter: product("m365"), Terms: "security", Exams: []string{"MS-500"}},
	{Filter: product("m365"), Terms: "fundamentals", Exams: []string{"MS-900"}},
}

// MapLearnContent drains every mapping entry and emits one preparation row
// per result and mapped exam. A failed entry fails the whole mapping.
func MapLearnContent(ctx context.Context, learn *learnapi.Client, mapping []MappingEntry) ([]tables.PreparationResource, error) {
	var rows []tables.PreparationResource
	for _, entry := range mapping {
		results, err := learnapi.FetchAllPages[learnapi.Content](ctx, learn, learnapi.Query{
			Filter: entry.Filter,
			Terms:  entry.Terms,
		})
		if err != nil {
			return nil, fmt.Errorf("learn mapping %s %q: %w", entry.Filter, entry.Terms, err)
		}
		for _, result := range results {
			title := result.Title
			link := learn.ContentURL(result.URL)
			for _, examID := range entry.Exams {
				rows = append(rows, tables.PreparationResource{
					ExamID: examID,
					Type:   result.ResourceType,
					Text:   &title,
					Link:   &link,
				})
			}
		}
	}
	return rows, nil
}
