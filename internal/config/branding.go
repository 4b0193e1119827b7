package config

// =============================================================================
// BRANDING
// =============================================================================

// Branding is the company, bank and pricing metadata printed on every invoice.
// It is read once per generation pass and passed around by value.
type Branding struct {
	// UnitPrice is the price of one item in whole currency units.
	UnitPrice int64 `mapstructure:"harga_satuan" json:"harga_satuan"`

	CompanyName    string `mapstructure:"company_name" json:"company_name"`
	CompanyTagline string `mapstructure:"company_tagline" json:"company_tagline"`
	CompanyAddress string `mapstructure:"company_address" json:"company_address"`
	CompanyPhone   string `mapstructure:"company_phone" json:"company_phone"`
	CompanyEmail   string `mapstructure:"company_email" json:"company_email"`
	CompanyWebsite string `mapstructure:"company_website" json:"company_website"`

	BankName    string `mapstructure:"bank_name" json:"bank_name"`
	BankAccount string `mapstructure:"bank_account" json:"bank_account"`
	BankHolder  string `mapstructure:"bank_holder" json:"bank_holder"`

	// CurrencyLabel prefixes every formatted amount ("Rp 1.500.000").
	CurrencyLabel string `mapstructure:"currency_label" json:"currency_label"`

	// ProductName is the description of the single invoice line.
	ProductName string `mapstructure:"product_name" json:"product_name"`
}

// DefaultBranding returns the built-in branding used when nothing is configured.
func DefaultBranding() Branding {
	return Branding{
		UnitPrice:      100000,
		CompanyName:    "TOKO KAOS KEREN",
		CompanyTagline: "Quality T-Shirts for Everyone",
		CompanyAddress: "Jl. Contoh No. 123, Jakarta, Indonesia",
		CompanyPhone:   "+62 812-3456-7890",
		CompanyEmail:   "order@tokokaoskeren.com",
		CompanyWebsite: "www.tokokaoskeren.com",
		BankName:       "Bank BCA",
		BankAccount:    "1234567890",
		BankHolder:     "PT TOKO KAOS KEREN",
		CurrencyLabel:  "Rp",
		ProductName:    "Kaos Custom",
	}
}

// fields returns the branding keyed by its store document keys.
func (b Branding) fields() map[string]interface{} {
	return map[string]interface{}{
		"harga_satuan":    b.UnitPrice,
		"company_name":    b.CompanyName,
		"company_tagline": b.CompanyTagline,
		"company_address": b.CompanyAddress,
		"company_phone":   b.CompanyPhone,
		"company_email":   b.CompanyEmail,
		"company_website": b.CompanyWebsite,
		"bank_name":       b.BankName,
		"bank_account":    b.BankAccount,
		"bank_holder":     b.BankHolder,
		"currency_label":  b.CurrencyLabel,
		"product_name":    b.ProductName,
	}
}

// WithDefaults restores the fields an invoice cannot be laid out without
// (company name, currency label, product line, non-negative price).
func (b Branding) WithDefaults() Branding {
	d := DefaultBranding()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&b.CompanyName, d.CompanyName)
	fill(&b.CurrencyLabel, d.CurrencyLabel)
	fill(&b.ProductName, d.ProductName)
	if b.UnitPrice < 0 {
		b.UnitPrice = d.UnitPrice
	}
	return b
}
