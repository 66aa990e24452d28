package domain

// Company represents an organization whose employees submit expenses. Every
// company owns exactly one approval policy and a base currency that all
// policy thresholds are defined in.
type Company struct {
	CompanyID        string `json:"companyID"` // Primary Key (e.g., UUID)
	Name             string `json:"name"`
	Country          string `json:"country"`          // ISO 3166-1 alpha-2
	BaseCurrencyCode string `json:"baseCurrencyCode"` // FK -> Currency.currencyCode
	AuditFields
}

// CurrencyForCountry returns the default base currency for a country code,
// falling back to USD for countries outside the supported set.
func CurrencyForCountry(country string) string {
	switch country {
	case "US":
		return "USD"
	case "GB":
		return "GBP"
	case "IN":
		return "INR"
	case "CA":
		return "CAD"
	case "DE":
		return "EUR"
	default:
		return "USD"
	}
}
