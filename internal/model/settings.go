package model

import "time"

// SiteSettings is the single content document behind the landing page.
// Name doubles as the PIX merchant name.
type SiteSettings struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(120);not null"`
	Tagline     string    `json:"tagline" gorm:"type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
	Phone       string    `json:"phone" gorm:"type:varchar(32)"`
	Email       string    `json:"email" gorm:"type:varchar(255)"`
	Instagram   string    `json:"instagram" gorm:"type:varchar(120)"`
	PaymentLink string    `json:"paymentLink" gorm:"column:paymentLink;type:text"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"column:updatedAt"`
}

func (SiteSettings) TableName() string {
	return "site_settings"
}

// DefaultSiteSettings returns the content used until an admin edits it.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		Name:        "NeuroVita",
		Tagline:     "Memória Afiada, Energia Plena",
		Description: "Suplemento natural para potencializar sua memória e disposição diária.",
		Phone:       "(11) 99999-9999",
		Email:       "contato@neurovita.com.br",
		Instagram:   "@neurovita",
		PaymentLink: "",
	}
}

// SettingsPatch updates individual settings fields; null resets a field to its default.
type SettingsPatch struct {
	Name        Optional[string] `json:"name"`
	Tagline     Optional[string] `json:"tagline"`
	Description Optional[string] `json:"description"`
	Phone       Optional[string] `json:"phone"`
	Email       Optional[string] `json:"email"`
	Instagram   Optional[string] `json:"instagram"`
	PaymentLink Optional[string] `json:"paymentLink"`
}

// ApplyTo merges the patch into s and reports whether anything changed.
func (p SettingsPatch) ApplyTo(s *SiteSettings) bool {
	def := DefaultSiteSettings()
	changed := p.Name.Apply(&s.Name, def.Name)
	changed = p.Tagline.Apply(&s.Tagline, def.Tagline) || changed
	changed = p.Description.Apply(&s.Description, def.Description) || changed
	changed = p.Phone.Apply(&s.Phone, def.Phone) || changed
	changed = p.Email.Apply(&s.Email, def.Email) || changed
	changed = p.Instagram.Apply(&s.Instagram, def.Instagram) || changed
	changed = p.PaymentLink.Apply(&s.PaymentLink, def.PaymentLink) || changed
	return changed
}

// ProductImages holds the three landing page product photos.
type ProductImages struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Main      string    `json:"main" gorm:"type:text"`
	Secondary string    `json:"secondary" gorm:"type:text"`
	Tertiary  string    `json:"tertiary" gorm:"type:text"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updatedAt"`
}

func (ProductImages) TableName() string {
	return "product_images"
}

// DefaultProductImages returns the stock photos shipped with the storefront.
func DefaultProductImages() ProductImages {
	return ProductImages{
		Main:      "https://images.unsplash.com/photo-1763668331599-487470fb85b2?crop=entropy&cs=srgb&fm=jpg&q=85",
		Secondary: "https://images.unsplash.com/photo-1763668444855-401b58dceb20?crop=entropy&cs=srgb&fm=jpg&q=85",
		Tertiary:  "https://images.unsplash.com/photo-1763668177859-0ed5669a795e?crop=entropy&cs=srgb&fm=jpg&q=85",
	}
}

// ImagesPatch updates individual image slots; null restores the stock photo.
type ImagesPatch struct {
	Main      Optional[string] `json:"main"`
	Secondary Optional[string] `json:"secondary"`
	Tertiary  Optional[string] `json:"tertiary"`
}

// ApplyTo merges the patch into img and reports whether anything changed.
func (p ImagesPatch) ApplyTo(img *ProductImages) bool {
	def := DefaultProductImages()
	changed := p.Main.Apply(&img.Main, def.Main)
	changed = p.Secondary.Apply(&img.Secondary, def.Secondary) || changed
	changed = p.Tertiary.Apply(&img.Tertiary, def.Tertiary) || changed
	return changed
}

// PaymentSettings is the read-only payment configuration seen by the payment flow.
type PaymentSettings struct {
	Gateway           string
	APIKey            string
	TestMode          bool
	ExpirationMinutes int
}

// DefaultExpirationMinutes applies when no window is configured.
const DefaultExpirationMinutes = 30

// Expiration returns the configured PIX validity window.
func (p PaymentSettings) Expiration() time.Duration {
	minutes := p.ExpirationMinutes
	if minutes <= 0 {
		minutes = DefaultExpirationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// UsesGateway reports whether charges should go to the external provider.
func (p PaymentSettings) UsesGateway() bool {
	return p.APIKey != "" && !p.TestMode
}
