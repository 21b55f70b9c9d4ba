package certifications

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tayganr/certcomp/internal/normalize"
	"github.com/tayganr/certcomp/lib/htmlutil"
)

// certContent is the per certification document served by the content api.
type certContent struct {
	CertPageDetails struct {
		Steps struct {
			Step2 struct {
				StepTagline string `json:"step_tagline"`
				Exams       []struct {
					ExamCode string `json:"exam_code"`
				} `json:"exams"`
			} `json:"step2"`
		} `json:"steps"`
		WhatIsInvolved struct {
			Step2Exams  string `json:"step2_exams"`
			Step1Skills string `json:"step1_skills"`
		} `json:"what_is_involved"`
	} `json:"cert_page_details"`
}

// ComposeRequirement builds the human readable requirement of a certification.
// The tagline wins when it names a legacy "70-" exam, multi step credentials
// are prefixed with their skills.
func ComposeRequirement(tagline, whatsInvolved, skills string, level Level) string {
	tagline = normalize.StripMarketing(tagline)
	whatsInvolved = normalize.StripMarketing(whatsInvolved)

	requirement := whatsInvolved
	if strings.Contains(tagline, "70-") {
		requirement = tagline
	}
	if multiStepLevels[level] && skills != "" {
		requirement = fmt.Sprintf("Step 1: %s Step 2: %s", skills, requirement)
	}
	return requirement
}

func (c certContent) requirement(level Level) string {
	return ComposeRequirement(
		c.CertPageDetails.Steps.Step2.StepTagline,
		c.CertPageDetails.WhatIsInvolved.Step2Exams,
		c.CertPageDetails.WhatIsInvolved.Step1Skills,
		level,
	)
}

func (c certContent) examIDs() []string {
	ids := make([]string, 0, len(c.CertPageDetails.Steps.Step2.Exams))
	for _, exam := range c.CertPageDetails.Steps.Step2.Exams {
		if id, ok := presentExamID(normalize.DisplayExamCode(exam.ExamCode)); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (e Endpoints) contentURL(property string) string {
	params := url.Values{}
	params.Set("localeCode", "en-us")
	params.Set("property", property)
	return e.ContentAPI + "?" + params.Encode()
}

// lookupContent fetches the content document of a certification. ok is false
// when the detail policy skipped the item.
func (s sourceBase) lookupContent(ctx context.Context, contentID string) (certContent, bool, error) {
	var doc map[string]certContent
	ok, err := s.deps.Detail.JSON(ctx, report_content_lookup, s.endpoints.contentURL(contentID), &doc)
	if err != nil || !ok {
		return certContent{}, false, err
	}
	content, found := doc[contentID]
	if !found {
		err := fmt.Errorf("content lookup for '%s' did not contain its own property", contentID)
		s.deps.Tel.ReportBroken(report_content_lookup, err)
		return certContent{}, false, err
	}
	return content, true, nil
}

// contentID reads the identifier embedded in the first inline script of a
// certification detail page, the script looks like `var id = "..."`.
func contentID(doc *goquery.Document) (string, bool) {
	script := doc.Find("#content > div > div > script").First()
	if script.Length() == 0 {
		return "", false
	}
	parts := strings.Split(script.Text(), `"`)
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// detailContentID fetches a certification page and returns its content id, ok
// is false when the page was skipped or carries no id.
func (s sourceBase) detailContentID(ctx context.Context, link string) (string, bool, error) {
	doc, err := s.deps.Detail.Document(ctx, report_detail_page, link)
	if err != nil || doc == nil {
		return "", false, err
	}
	id, ok := contentID(doc)
	if !ok {
		s.deps.Tel.ReportWarning(report_cert_id, "no content id on page", link)
	}
	return id, ok, nil
}

const requiredExamsRegion = "#msl-certification-azure > div:nth-of-type(1) > section > div > div > p:nth-of-type(1) > a"

// RequiredExams returns the exams listed in the required exams region of a
// role based certification page.
func RequiredExams(doc *goquery.Document) []string {
	exams := []string{}
	doc.Find(requiredExamsRegion).Each(func(_ int, a *goquery.Selection) {
		text, ok := htmlutil.OwnText(a)
		if !ok {
			return
		}
		id := strings.TrimSpace(normalize.StripExamLabels(text))
		if id == "" {
			return
		}
		exams = append(exams, id)
	})
	return exams
}

func passRequirement(exams []string) string {
	var b strings.Builder
	b.WriteString("Pass the following exam(s):")
	for _, exam := range exams {
		fmt.Fprintf(&b, " %s;", exam)
	}
	return b.String()
}

type sourceBase struct {
	deps      Deps
	endpoints Endpoints
}
