package middleware

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/chimehq/roi-capture/internal/domain/leads"
)

// Form validation and sanitization utilities

// ValidIndustries lists the dropdown choices accepted by the form.
var ValidIndustries = []string{
	"Fashion & Apparel", "Electronics", "Health & Wellness", "Home & Garden",
	"Beauty & Cosmetics", "Food & Beverage", "Pet Products", "Sports & Fitness",
	"Automotive", "Books & Media", "Toys & Games", "Other",
}

// ValidBusinessStages lists accepted business stage choices.
var ValidBusinessStages = []string{"Startup", "Growth", "Established", "Mature"}

// ValidChallenges lists accepted challenge choices.
var ValidChallenges = []string{
	"Manual processes", "Low conversion rates", "High cart abandonment",
	"Poor customer retention", "Inventory management", "Marketing inefficiency",
	"Customer service issues", "Data analysis challenges", "Other",
}

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	namePattern   = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	domainPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?)*$`)
	phoneStrip    = regexp.MustCompile(`[\s\-\(\)\+\.]`)
)

// toFloat coerces JSON values (float64, string, int) to float64.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ValidatePositiveNumber checks numeric form values
func ValidatePositiveNumber(value interface{}, fieldName string, allowZero bool) (float64, error) {
	num, ok := toFloat(value)
	if !ok {
		return 0, fmt.Errorf("%s must be a valid number", fieldName)
	}
	if allowZero && num < 0 {
		return 0, fmt.Errorf("%s must be zero or positive", fieldName)
	}
	if !allowZero && num <= 0 {
		return 0, fmt.Errorf("%s must be positive", fieldName)
	}
	return num, nil
}

// ValidatePositiveInteger checks integer form values
func ValidatePositiveInteger(value interface{}, fieldName string) (int, error) {
	num, ok := toFloat(value)
	if !ok || num != math.Trunc(num) {
		return 0, fmt.Errorf("%s must be a valid integer", fieldName)
	}
	if num <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", fieldName)
	}
	return int(num), nil
}

// ValidatePercentage checks 0-100 values with at most 2 decimal places
func ValidatePercentage(value interface{}, fieldName string) (float64, error) {
	num, ok := toFloat(value)
	if !ok {
		return 0, fmt.Errorf("%s must be a valid percentage", fieldName)
	}
	if num < 0 || num > 100 {
		return 0, fmt.Errorf("%s must be between 0 and 100", fieldName)
	}
	if math.Abs(num*100-math.Round(num*100)) > 1e-9 {
		return 0, fmt.Errorf("%s can have maximum 2 decimal places", fieldName)
	}
	return num, nil
}

// ValidateEmail validates and normalizes an email address
func ValidateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("Email is required")
	}
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("Invalid email format")
	}
	// RFC 5321 limit
	if len(email) > 254 {
		return "", fmt.Errorf("Email address too long")
	}
	return email, nil
}

// ValidateAlphabetic validates name fields (letters, spaces, hyphens, apostrophes)
func ValidateAlphabetic(value, fieldName string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", fieldName)
	}
	if len(value) < 2 {
		return "", fmt.Errorf("%s must be at least 2 characters", fieldName)
	}
	if len(value) > 50 {
		return "", fmt.Errorf("%s must be less than 50 characters", fieldName)
	}
	if !namePattern.MatchString(value) {
		return "", fmt.Errorf("%s can only contain letters, spaces, hyphens, and apostrophes", fieldName)
	}
	return value, nil
}

// ValidateWebsite validates an optional website URL, defaulting the scheme to https
func ValidateWebsite(website string) (string, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return "", nil
	}

	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}

	parsed, err := url.Parse(website)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("Invalid website URL")
	}
	if !domainPattern.MatchString(parsed.Host) {
		return "", fmt.Errorf("Invalid domain name")
	}

	out := parsed.Scheme + "://" + parsed.Host + parsed.Path
	if parsed.RawQuery != "" {
		out += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		out += "#" + parsed.Fragment
	}
	return out, nil
}

// ValidatePhone validates an optional phone number, keeping the original format
func ValidatePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}

	cleaned := phoneStrip.ReplaceAllString(phone, "")
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("Phone number can only contain digits and formatting characters")
		}
	}
	if len(cleaned) < 7 || len(cleaned) > 15 {
		return "", fmt.Errorf("Phone number must be between 7 and 15 digits")
	}
	return phone, nil
}

// ValidateDropdownChoice validates a dropdown selection against its choice list
func ValidateDropdownChoice(value, fieldName string, validChoices []string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%s is required", fieldName)
	}
	for _, choice := range validChoices {
		if value == choice {
			return value, nil
		}
	}
	return "", fmt.Errorf("Invalid %s selection", fieldName)
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// ValidateCalculation validates the numeric and dropdown fields needed
// to compute projections. All failing fields are reported together.
func ValidateCalculation(data map[string]interface{}) (*leads.Submission, leads.FieldErrors) {
	errs := leads.FieldErrors{}
	sub := &leads.Submission{}

	if v, err := ValidatePositiveNumber(data["monthly_revenue"], "Monthly revenue", false); err != nil {
		errs["monthly_revenue"] = err.Error()
	} else {
		sub.MonthlyRevenue = v
	}

	if v, err := ValidatePositiveNumber(data["average_order_value"], "Average order value", false); err != nil {
		errs["average_order_value"] = err.Error()
	} else {
		sub.AverageOrderValue = v
	}

	if v, err := ValidatePositiveInteger(data["monthly_orders"], "Monthly orders"); err != nil {
		errs["monthly_orders"] = err.Error()
	} else {
		sub.MonthlyOrders = v
	}

	if v, err := ValidatePositiveInteger(data["manual_hours_per_week"], "Manual hours per week"); err != nil {
		errs["manual_hours_per_week"] = err.Error()
	} else {
		sub.ManualHoursPerWeek = v
	}

	if v, err := ValidateDropdownChoice(stringField(data, "industry"), "Industry", ValidIndustries); err != nil {
		errs["industry"] = err.Error()
	} else {
		sub.Industry = v
	}

	if v, err := ValidateDropdownChoice(stringField(data, "business_stage"), "Business stage", ValidBusinessStages); err != nil {
		errs["business_stage"] = err.Error()
	} else {
		sub.BusinessStage = leads.BusinessStage(v)
	}

	// Optional percentage fields
	if raw, ok := data["conversion_rate"]; ok && raw != nil {
		if v, err := ValidatePercentage(raw, "Conversion rate"); err != nil {
			errs["conversion_rate"] = err.Error()
		} else {
			sub.ConversionRate = v
		}
	}
	if raw, ok := data["cart_abandonment_rate"]; ok && raw != nil {
		if v, err := ValidatePercentage(raw, "Cart abandonment rate"); err != nil {
			errs["cart_abandonment_rate"] = err.Error()
		} else {
			sub.CartAbandonmentRate = v
		}
	}
	if raw, ok := data["monthly_ad_spend"]; ok && raw != nil {
		if v, err := ValidatePositiveNumber(raw, "Monthly ad spend", true); err != nil {
			errs["monthly_ad_spend"] = err.Error()
		} else {
			sub.MonthlyAdSpend = v
		}
	}

	// Challenges are optional; every entry must come from the choice list.
	switch raw := data["challenges"].(type) {
	case nil:
	case string:
		if raw != "" {
			if _, err := ValidateDropdownChoice(raw, "Challenge", ValidChallenges); err != nil {
				errs["challenges"] = fmt.Sprintf("Invalid challenge: %s", raw)
			} else {
				sub.Challenges = []string{raw}
			}
		}
	case []interface{}:
		for _, item := range raw {
			s, ok := item.(string)
			if !ok {
				errs["challenges"] = "Challenges must be a list of strings"
				break
			}
			if _, err := ValidateDropdownChoice(s, "Challenge", ValidChallenges); err != nil {
				errs["challenges"] = fmt.Sprintf("Invalid challenge: %s", s)
				break
			}
			sub.Challenges = append(sub.Challenges, s)
		}
	default:
		errs["challenges"] = "Challenges must be a list"
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return sub, nil
}

// ValidateSubmission validates a full submission: calculation fields
// plus contact information. Missing optional rates fall back to
// industry averages so scoring and projections always have inputs.
func ValidateSubmission(data map[string]interface{}) (*leads.Submission, leads.FieldErrors) {
	errs := leads.FieldErrors{}

	sub, calcErrs := ValidateCalculation(data)
	if calcErrs != nil {
		for k, v := range calcErrs {
			errs[k] = v
		}
		sub = &leads.Submission{}
	}

	if _, ok := data["conversion_rate"]; !ok {
		sub.ConversionRate = defaultConversionRate(sub.Industry)
	}
	if _, ok := data["cart_abandonment_rate"]; !ok {
		// Industry average
		sub.CartAbandonmentRate = 70.0
	}

	if v, err := ValidateAlphabetic(stringField(data, "first_name"), "First name"); err != nil {
		errs["first_name"] = err.Error()
	} else {
		sub.FirstName = v
	}

	if v, err := ValidateAlphabetic(stringField(data, "last_name"), "Last name"); err != nil {
		errs["last_name"] = err.Error()
	} else {
		sub.LastName = v
	}

	if v, err := ValidateEmail(stringField(data, "email")); err != nil {
		errs["email"] = err.Error()
	} else {
		sub.Email = v
	}

	business := strings.TrimSpace(stringField(data, "business_name"))
	if business == "" {
		business = strings.TrimSpace(stringField(data, "company"))
	}
	if business == "" {
		errs["business_name"] = "Business name is required"
	} else {
		sub.BusinessName = SanitizeString(business)
	}

	if v, err := ValidateWebsite(stringField(data, "website")); err != nil {
		errs["website"] = err.Error()
	} else {
		sub.Website = v
	}

	if v, err := ValidatePhone(stringField(data, "phone")); err != nil {
		errs["phone"] = err.Error()
	} else {
		sub.Phone = v
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return sub, nil
}

func defaultConversionRate(industry string) float64 {
	switch industry {
	case "Electronics":
		return 2.5
	case "Fashion & Apparel":
		return 2.8
	default:
		return 2.0
	}
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
