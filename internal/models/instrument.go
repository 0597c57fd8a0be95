package models

// Instrument is one entry of the investable catalog.
type Instrument struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Symbol        string `json:"symbol"`
	Currency      string `json:"currency"`
	PaysDividends bool   `json:"pays_dividends"`
}

// DividendLabel returns the yes/no label shown on the catalog page.
func (i Instrument) DividendLabel() string {
	if i.PaysDividends {
		return "Sí"
	}
	return "No"
}
