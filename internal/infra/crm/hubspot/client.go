// Package hubspot implements the CRM port against the HubSpot v3 API.
// Only standard contact/deal properties are used so the integration
// works on any portal without custom property setup.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chimehq/roi-capture/internal/domain/crm"
)

const defaultBaseURL = "https://api.hubapi.com"

// Deal-contact association type id in the HubSpot v3 API.
const dealToContactAssociation = 3

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(apiKey string, log *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, crm.ErrNotConfigured
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}, nil
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

type objectRequest struct {
	Properties map[string]string `json:"properties"`
}

type objectResponse struct {
	ID string `json:"id"`
}

func stageLabel(stage string) string {
	switch stage {
	case "Startup":
		return "startup"
	case "Growth":
		return "growing"
	case "Established":
		return "established"
	case "Mature":
		return "enterprise"
	default:
		return "growing"
	}
}

// UpsertContact searches by email, then patches the existing contact
// or creates a new one. Returns the HubSpot contact id.
func (c *Client) UpsertContact(ctx context.Context, contact crm.Contact) (string, error) {
	props := map[string]string{
		"email":          contact.Email,
		"firstname":      contact.FirstName,
		"lastname":       contact.LastName,
		"company":        contact.Company,
		"website":        contact.Website,
		"phone":          contact.Phone,
		"industry":       contact.Industry,
		"lifecyclestage": contact.LifecycleStage,
		// Standard fields repurposed for scoring context
		"jobtitle": fmt.Sprintf("%s Priority Lead (Score: %d)", contact.Tier, contact.LeadScore),
		"state":    stageLabel(contact.BusinessStage),
		"city":     fmt.Sprintf("Monthly Revenue: $%.0f", contact.MonthlyRevenue),
	}

	search := searchRequest{
		FilterGroups: []filterGroup{{
			Filters: []filter{{PropertyName: "email", Operator: "EQ", Value: contact.Email}},
		}},
		Properties: []string{"id", "email", "firstname", "lastname"},
	}

	var found searchResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", search, &found); err != nil {
		return "", fmt.Errorf("contact search: %w", err)
	}

	if len(found.Results) > 0 {
		id := found.Results[0].ID
		if err := c.do(ctx, http.MethodPatch, "/crm/v3/objects/contacts/"+id, objectRequest{Properties: props}, nil); err != nil {
			return "", fmt.Errorf("contact update: %w", err)
		}
		c.log.Info("hubspot contact updated", zap.String("contact_id", id))
		return id, nil
	}

	var created objectResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts", objectRequest{Properties: props}, &created); err != nil {
		return "", fmt.Errorf("contact create: %w", err)
	}
	c.log.Info("hubspot contact created", zap.String("contact_id", created.ID))
	return created.ID, nil
}

func dealStage(tier string) string {
	switch tier {
	case "Hot":
		return "qualifiedtobuy"
	case "Warm":
		return "presentationscheduled"
	case "Cold":
		return "appointmentscheduled"
	default:
		return "qualifiedtobuy"
	}
}

// CreateDeal creates the deal and associates it with the contact.
func (c *Client) CreateDeal(ctx context.Context, deal crm.Deal) (string, error) {
	props := map[string]string{
		"dealname":  deal.Name,
		"amount":    fmt.Sprintf("%d", int(deal.Amount)),
		"dealstage": dealStage(deal.Stage),
		"pipeline":  deal.Pipeline,
		"closedate": deal.CloseDate.Format("2006-01-02"),
		"dealtype":  "newbusiness",
	}
	if props["pipeline"] == "" {
		props["pipeline"] = "default"
	}

	var created objectResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/deals", objectRequest{Properties: props}, &created); err != nil {
		return "", fmt.Errorf("deal create: %w", err)
	}

	if deal.ContactID != "" {
		path := fmt.Sprintf("/crm/v3/objects/deals/%s/associations/contacts/%s/%d",
			created.ID, deal.ContactID, dealToContactAssociation)
		if err := c.do(ctx, http.MethodPut, path, struct{}{}, nil); err != nil {
			// The deal exists either way; association failure is not fatal.
			c.log.Warn("hubspot deal association failed",
				zap.String("deal_id", created.ID),
				zap.String("contact_id", deal.ContactID),
				zap.Error(err))
		}
	}

	c.log.Info("hubspot deal created", zap.String("deal_id", created.ID))
	return created.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("hubspot %s %s: status %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
