package certifications

import (
	"context"
	"fmt"

	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/tables"
)

// CertType distinguishes the two kinds of entries in the unified listing.
type CertType string

const (
	CertTypeRoleBased  CertType = "role-based"
	CertTypeSkillBased CertType = "skill-based"
)

type unifiedEntry struct {
	CertID string   `json:"cert_id"`
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Level  string   `json:"level"`
	Type   CertType `json:"certification_type"`
}

// UnifiedSource reads one listing that carries explicit certification ids.
// Role based entries read their exams from the detail page, skill based
// entries go through the content api.
type UnifiedSource struct {
	sourceBase
}

func (s UnifiedSource) Extract(ctx context.Context, out *Result) error {
	var listing map[string][]unifiedEntry
	err := fetch.JSON(ctx, s.deps.Fetcher, s.endpoints.contentURL(s.endpoints.ListProperty), nil, &listing)
	if err != nil {
		s.deps.Tel.ReportBroken(report_listing, err)
		return fmt.Errorf("fetch certification listing: %w", err)
	}
	entries, ok := listing[s.endpoints.ListProperty]
	if !ok {
		err := fmt.Errorf("certification listing is missing property '%s'", s.endpoints.ListProperty)
		s.deps.Tel.ReportBroken(report_listing, err)
		return err
	}

	for _, entry := range entries {
		level, known := ParseLevel(entry.Level)
		if !known {
			s.deps.Tel.ReportWarning(report_level, "unknown certification level", entry.Level)
		}
		s.deps.Tel.ReportDebug("certification", entry.Name)

		switch entry.Type {
		case CertTypeRoleBased:
			err = s.extractRoleBased(ctx, entry, level, out)
		case CertTypeSkillBased:
			err = s.extractSkillBased(ctx, entry, level, out)
		default:
			s.deps.Tel.ReportWarning(report_cert_type, "unknown certification type", entry.CertID, entry.Type)
			continue
		}
		if err != nil {
			return fmt.Errorf("certification '%s': %w", entry.Name, err)
		}
	}
	return nil
}

func (s UnifiedSource) extractRoleBased(ctx context.Context, entry unifiedEntry, level Level, out *Result) error {
	link := s.endpoints.pageURL(entry.URL)
	cert := tables.Certification{
		CertID: entry.CertID,
		Level:  string(level),
		Title:  entry.Name,
		Link:   link,
	}

	doc, err := s.deps.Detail.Document(ctx, report_detail_page, link)
	if err != nil {
		return err
	}
	if doc == nil {
		out.AddCertification(cert)
		return nil
	}

	exams := RequiredExams(doc)
	requirement := passRequirement(exams)
	cert.Requirement = &requirement
	out.AddCertification(cert)
	for _, exam := range exams {
		out.AddExam(cert, exam)
	}
	return nil
}

func (s UnifiedSource) extractSkillBased(ctx context.Context, entry unifiedEntry, level Level, out *Result) error {
	link := s.endpoints.pageURL(entry.URL)
	contentID, ok, err := s.detailContentID(ctx, link)
	if err != nil || !ok {
		return err
	}
	content, ok, err := s.lookupContent(ctx, contentID)
	if err != nil || !ok {
		return err
	}

	requirement := content.requirement(level)
	cert := tables.Certification{
		CertID:      entry.CertID,
		Level:       string(level),
		Title:       entry.Name,
		Link:        link,
		Requirement: &requirement,
	}
	out.AddCertification(cert)
	for _, exam := range content.examIDs() {
		out.AddExam(cert, exam)
	}
	return nil
}
