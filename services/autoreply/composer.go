package autoreply

import (
	"lexdesk/models"
	"lexdesk/services/i18n"
	"strings"
)

// Composer renders the auto-reply text from a rule and a ReplyContext. The
// output depends only on its inputs.
type Composer struct {
	// AppURL prefixes the quick-action links.
	AppURL string
	// EmergencyPhone is used when the firm has no emergency number of its own.
	EmergencyPhone string
}

func NewComposer(appURL, emergencyPhone string) *Composer {
	return &Composer{AppURL: strings.TrimSuffix(appURL, "/"), EmergencyPhone: emergencyPhone}
}

type composition struct {
	lang string
	rc   *ReplyContext
	f    *Formatter
	vars map[string]interface{}
}

func (p *composition) t(key string) string {
	return i18n.Translate(p.lang, key, p.vars)
}

func (p *composition) tWith(key string, extra map[string]interface{}) string {
	args := make(map[string]interface{}, len(p.vars)+len(extra))
	for k, v := range p.vars {
		args[k] = v
	}
	for k, v := range extra {
		args[k] = v
	}
	return i18n.Translate(p.lang, key, args)
}

// Compose renders the reply. Blocks appear in a fixed order and blocks with
// nothing to show are left out entirely.
func (c *Composer) Compose(rule Rule, rc *ReplyContext, lang string) string {
	f := NewFormatter(lang, rc.Firm.Location(), rc.Firm.CurrencyCode())
	p := &composition{lang: lang, rc: rc, f: f}
	p.vars = c.variables(rc, f, lang)

	blocks := []string{
		p.t("autoreply.greeting") + "\n" + p.t("autoreply.intro"),
		c.caseBlock(p),
		c.hearingBlock(p),
		c.lawyerBlock(p),
		c.upcomingBlock(p),
		c.documentsBlock(p),
		c.body(rule, p),
		c.actionsBlock(p),
		c.emergencyBlock(p),
		c.signature(p),
	}

	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			out = append(out, b)
		}
	}
	return strings.Join(out, "\n\n")
}

func (c *Composer) variables(rc *ReplyContext, f *Formatter, lang string) map[string]interface{} {
	vars := map[string]interface{}{
		"clientName":    rc.Client.Name,
		"lawyerName":    rc.Lawyer.Name,
		"lawyerEmail":   rc.Lawyer.Email,
		"lawyerPhone":   rc.Lawyer.Phone,
		"caseNumber":    rc.Case.CaseNumber,
		"caseTitle":     rc.Case.DisplayTitle(),
		"caseStatus":    i18n.Translate(lang, "status.case."+rc.Case.Status),
		"openedAt":      f.Date(rc.Case.OpenedAt),
		"caseURL":       c.CaseURL(rc.Case.ID),
		"documentsURL":  c.CaseURL(rc.Case.ID) + "/documents",
		"documentCount": f.Number(len(rc.Documents)),
		"firmName":      "",
		"firmEmail":     rc.Lawyer.Email,
		"hourlyRate":    "",
		"hearingDate":   "",
	}
	if rc.Firm != nil {
		vars["firmName"] = rc.Firm.Name
		if rc.Firm.InfoEmail != "" {
			vars["firmEmail"] = rc.Firm.InfoEmail
		}
		if rc.Firm.HourlyRate > 0 {
			vars["hourlyRate"] = f.Money(rc.Firm.HourlyRate)
		}
	}
	if h := nextHearing(rc); h != nil {
		vars["hearingDate"] = f.DateTime(h.ScheduledAt)
	}
	return vars
}

// CaseURL links to the case page in the web app.
func (c *Composer) CaseURL(caseID string) string {
	return c.AppURL + "/cases/" + caseID
}

// nextHearing is the hearing a reply talks about: the conversation's own
// hearing, else the nearest upcoming one.
func nextHearing(rc *ReplyContext) *models.Hearing {
	if rc.Hearing != nil {
		return rc.Hearing
	}
	if len(rc.UpcomingHearings) > 0 {
		return &rc.UpcomingHearings[0]
	}
	return nil
}

func (c *Composer) caseBlock(p *composition) string {
	lines := []string{
		p.t("autoreply.case.header"),
		p.t("autoreply.case.number"),
	}
	if p.rc.Case.Title != nil && *p.rc.Case.Title != "" {
		lines = append(lines, p.t("autoreply.case.title"))
	}
	lines = append(lines, p.t("autoreply.case.status"), p.t("autoreply.case.opened"))
	return strings.Join(lines, "\n")
}

func (c *Composer) hearingBlock(p *composition) string {
	h := p.rc.Hearing
	if h == nil {
		return ""
	}
	lines := []string{
		p.t("autoreply.hearing.header"),
		p.tWith("autoreply.hearing.date", map[string]interface{}{"date": p.f.DateTime(h.ScheduledAt)}),
	}
	if h.Location != "" {
		lines = append(lines, p.tWith("autoreply.hearing.location", map[string]interface{}{"location": h.Location}))
	}
	lines = append(lines, p.tWith("autoreply.hearing.status", map[string]interface{}{
		"status": i18n.Translate(p.lang, "status.hearing."+h.Status),
	}))
	if h.HasJudge() {
		lines = append(lines, p.tWith("autoreply.hearing.judge", map[string]interface{}{"judgeName": h.Judge.Name}))
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) lawyerBlock(p *composition) string {
	lines := []string{
		p.t("autoreply.lawyer.header"),
		p.t("autoreply.lawyer.name"),
		p.t("autoreply.lawyer.email"),
	}
	if p.rc.Lawyer.Phone != "" {
		lines = append(lines, p.t("autoreply.lawyer.phone"))
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) upcomingBlock(p *composition) string {
	if len(p.rc.UpcomingHearings) == 0 {
		return ""
	}
	lines := []string{p.t("autoreply.upcoming.header")}
	for _, h := range p.rc.UpcomingHearings {
		args := map[string]interface{}{"date": p.f.DateTime(h.ScheduledAt), "location": h.Location}
		if h.Location != "" {
			lines = append(lines, p.tWith("autoreply.upcoming.item_location", args))
		} else {
			lines = append(lines, p.tWith("autoreply.upcoming.item", args))
		}
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) documentsBlock(p *composition) string {
	if len(p.rc.Documents) == 0 {
		return ""
	}
	lines := []string{p.t("autoreply.documents.header")}
	for _, d := range p.rc.Documents {
		args := map[string]interface{}{
			"title": d.Title,
			"type":  d.DocumentType,
			"date":  p.f.ShortDate(d.CreatedAt),
		}
		if d.DocumentType != "" {
			lines = append(lines, p.tWith("autoreply.documents.item_typed", args))
		} else {
			lines = append(lines, p.tWith("autoreply.documents.item", args))
		}
	}
	return strings.Join(lines, "\n")
}

// body renders the category paragraph. Templates with a "_empty" variant use
// it when the data they talk about is missing.
func (c *Composer) body(rule Rule, p *composition) string {
	key := "autoreply.body." + rule.TemplateID()
	if !i18n.Has(p.lang, key) {
		key = "autoreply.body." + string(CategoryFallback)
	}
	if c.missingData(rule, p) && i18n.Has(p.lang, key+"_empty") {
		key += "_empty"
	}
	return p.t(key)
}

func (c *Composer) missingData(rule Rule, p *composition) bool {
	switch rule.Category {
	case CategoryHearingInfo:
		return nextHearing(p.rc) == nil
	case CategoryDocumentRequest:
		return len(p.rc.Documents) == 0
	case CategoryBilling:
		return p.rc.Firm == nil || p.rc.Firm.HourlyRate <= 0
	}
	return false
}

func (c *Composer) actionsBlock(p *composition) string {
	lines := []string{
		p.t("autoreply.actions.header"),
		p.t("autoreply.actions.view_case"),
	}
	if len(p.rc.Documents) > 0 {
		lines = append(lines, p.t("autoreply.actions.view_documents"))
	}
	lines = append(lines, p.t("autoreply.actions.reply"))
	return strings.Join(lines, "\n")
}

func (c *Composer) emergencyBlock(p *composition) string {
	header := p.t("autoreply.emergency.header")
	if phone := c.emergencyPhone(p.rc.Firm); phone != "" {
		return header + "\n" + p.tWith("autoreply.emergency.phone", map[string]interface{}{"phone": phone})
	}
	return header + "\n" + p.t("autoreply.emergency.email")
}

func (c *Composer) emergencyPhone(firm *models.Firm) string {
	if firm != nil && firm.EmergencyPhone != "" {
		return firm.EmergencyPhone
	}
	if c.EmergencyPhone != "" {
		return c.EmergencyPhone
	}
	if firm != nil {
		return firm.Phone
	}
	return ""
}

func (c *Composer) signature(p *composition) string {
	lines := []string{p.t("autoreply.signature.closing"), p.t("autoreply.signature.name")}
	if p.rc.Firm != nil && p.rc.Firm.Name != "" {
		lines = append(lines, p.t("autoreply.signature.firm"))
	}
	return strings.Join(lines, "\n")
}
