package models

// Text block limits of the scroll section.
const (
	MinTextBlocks = 3
	MaxTextBlocks = 5
)

// FooterSettings is the site footer, stored as a single settings blob.
type FooterSettings struct {
	CompanyName  string `json:"company_name"  form:"company_name"  validate:"max=255"`
	Address      string `json:"address"       form:"address"       validate:"max=500"`
	Phone        string `json:"phone"         form:"phone"         validate:"max=50"`
	Email        string `json:"email"         form:"email"         validate:"omitempty,email"`
	WorkingHours string `json:"working_hours" form:"working_hours" validate:"max=255"`
	Copyright    string `json:"copyright"     form:"copyright"     validate:"max=255"`
	Telegram     string `json:"telegram"      form:"telegram"      validate:"omitempty,url"`
	WhatsApp     string `json:"whatsapp"      form:"whatsapp"      validate:"omitempty,url"`
	YouTube      string `json:"youtube"       form:"youtube"       validate:"omitempty,url"`
	VK           string `json:"vk"            form:"vk"            validate:"omitempty,url"`
}

// Requisites holds the company's legal and bank details.
type Requisites struct {
	FullName      string `json:"full_name"      form:"full_name"      validate:"required,max=500"`
	ShortName     string `json:"short_name"     form:"short_name"     validate:"max=255"`
	INN           string `json:"inn"            form:"inn"            validate:"omitempty,numeric,min=10,max=12"`
	KPP           string `json:"kpp"            form:"kpp"            validate:"omitempty,numeric,len=9"`
	OGRN          string `json:"ogrn"           form:"ogrn"           validate:"omitempty,numeric,min=13,max=15"`
	LegalAddress  string `json:"legal_address"  form:"legal_address"  validate:"max=500"`
	PostalAddress string `json:"postal_address" form:"postal_address" validate:"max=500"`
	BankName      string `json:"bank_name"      form:"bank_name"      validate:"max=255"`
	BIK           string `json:"bik"            form:"bik"            validate:"omitempty,numeric,len=9"`
	Account       string `json:"account"        form:"account"        validate:"omitempty,numeric,len=20"`
	CorrAccount   string `json:"corr_account"   form:"corr_account"   validate:"omitempty,numeric,len=20"`
}

// TextBlock is one pinned text of the scroll section.
type TextBlock struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// ScrollSection is the pinned-text-over-video section of the home page.
type ScrollSection struct {
	Title      string      `json:"title"       validate:"required,max=255"`
	Subtitle   string      `json:"subtitle"    validate:"max=500"`
	VideoURL   string      `json:"video_url"   validate:"max=500"`
	TextBlocks []TextBlock `json:"text_blocks" validate:"min=3,max=5,dive"`
}
