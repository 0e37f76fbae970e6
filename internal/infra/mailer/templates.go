package mailer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chimehq/roi-capture/internal/domain/leads"
	"github.com/chimehq/roi-capture/internal/domain/mail"
)

// Email content builders. Kept as plain string assembly: the bodies
// are short, and the marketing team edits them often enough that a
// template file indirection has not paid for itself.

// ConfirmationMessage builds the customer-facing results email.
func ConfirmationMessage(sub *leads.Submission, p leads.Projections) mail.Message {
	firstName := sub.FirstName
	if firstName == "" {
		firstName = "there"
	}
	business := sub.BusinessName
	if business == "" {
		business = "your business"
	}

	var html strings.Builder
	html.WriteString(`<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;color:#333">`)
	fmt.Fprintf(&html, `<h1>Your %s Growth Analysis</h1>`, sub.Industry)
	fmt.Fprintf(&html, `<p>Hi %s,</p>`, firstName)
	fmt.Fprintf(&html, `<p>Thank you for using our Revenue Growth Calculator! Based on your business metrics, we've identified significant growth opportunities for %s.</p>`, business)

	html.WriteString(`<h3>Your Growth Potential (Expected Scenario)</h3><ul>`)
	fmt.Fprintf(&html, `<li><strong>Additional Monthly Revenue:</strong> $%.0f</li>`, p.Expected.MonthlyIncrease)
	fmt.Fprintf(&html, `<li><strong>Additional Annual Revenue:</strong> $%.0f</li>`, p.Expected.AnnualBenefit)
	fmt.Fprintf(&html, `<li><strong>Break-even:</strong> %d months</li>`, p.Expected.BreakEvenMonths)
	html.WriteString(`</ul>`)

	html.WriteString(`<h3>Complete Projections</h3>`)
	for _, sc := range []struct {
		name string
		proj leads.Projection
	}{
		{"Conservative", p.Conservative},
		{"Expected", p.Expected},
		{"Optimistic", p.Optimistic},
	} {
		fmt.Fprintf(&html, `<p><strong>%s:</strong> $%.0f/month, $%.0f/year</p>`,
			sc.name, sc.proj.MonthlyIncrease, sc.proj.AnnualBenefit)
	}

	fmt.Fprintf(&html, `<p>These projections are based on your current monthly revenue of $%.0f and industry benchmarks for %s businesses.</p>`,
		sub.MonthlyRevenue, sub.Industry)
	html.WriteString(`</body></html>`)

	text := fmt.Sprintf(
		"Hi %s,\n\nYour expected growth scenario for %s:\n"+
			"  Additional monthly revenue: $%.0f\n"+
			"  Additional annual revenue:  $%.0f\n"+
			"  Break-even: %d months\n",
		firstName, business,
		p.Expected.MonthlyIncrease, p.Expected.AnnualBenefit, p.Expected.BreakEvenMonths)

	return mail.Message{
		To:           sub.Email,
		Subject:      fmt.Sprintf("Your ROI Analysis Results - %s", firstName),
		HTMLBody:     html.String(),
		TextBody:     text,
		SubmissionID: string(sub.ID),
		Kind:         "confirmation",
	}
}

// InternalNotification builds the sales-team alert for a new lead.
func InternalNotification(to string, sub *leads.Submission, breakdown leads.ScoreBreakdown) mail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "New %s lead: %s %s (%s)\n", sub.Tier, sub.FirstName, sub.LastName, sub.BusinessName)
	fmt.Fprintf(&b, "Score: %d (demographic %d, behavioral %d, fit %d)\n",
		sub.LeadScore, breakdown.Demographic, breakdown.Behavioral, breakdown.Fit)
	fmt.Fprintf(&b, "Email: %s\n", sub.Email)
	fmt.Fprintf(&b, "Monthly revenue: $%.0f | Industry: %s | Stage: %s\n",
		sub.MonthlyRevenue, sub.Industry, sub.BusinessStage)
	fmt.Fprintf(&b, "Follow up within %d hour(s).\n", leads.FollowUpHours(sub.Tier))

	if len(breakdown.Details) > 0 {
		b.WriteString("\nScore details:\n")
		keys := make([]string, 0, len(breakdown.Details))
		for k := range breakdown.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %d\n", k, breakdown.Details[k])
		}
	}

	text := b.String()
	return mail.Message{
		To:           to,
		Subject:      fmt.Sprintf("[%s lead] %s - score %d", sub.Tier, sub.BusinessName, sub.LeadScore),
		HTMLBody:     "<pre>" + text + "</pre>",
		TextBody:     text,
		SubmissionID: string(sub.ID),
		Kind:         "internal_notification",
	}
}
