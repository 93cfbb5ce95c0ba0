// Package models contains database model definitions.
package models

import "time"

// Base holds the columns every ordered content row carries.
// SortOrder decides display order, IsActive gates visibility on the public site.
type Base struct {
	ID        uint64    `gorm:"primaryKey"          json:"id"         form:"-"`
	SortOrder int       `gorm:"not null;index"      json:"sort_order" form:"sort_order" validate:"gte=0"`
	IsActive  bool      `gorm:"not null"            json:"is_active"  form:"is_active"`
	CreatedAt time.Time `json:"created_at"          form:"-"`
	UpdatedAt time.Time `json:"updated_at"          form:"-"`
}

// Hero is the headline block on top of the home page.
type Hero struct {
	Base
	Title         string `gorm:"size:255;not null" json:"title"          form:"title"          validate:"required,max=255"`
	Subtitle      string `gorm:"size:255"          json:"subtitle"       form:"subtitle"       validate:"max=255"`
	Description   string `gorm:"type:text"         json:"description"    form:"description"`
	ButtonText    string `gorm:"size:100"          json:"button_text"    form:"button_text"    validate:"max=100"`
	ButtonLink    string `gorm:"size:500"          json:"button_link"    form:"button_link"    validate:"max=500"`
	BackgroundURL string `gorm:"size:500"          json:"background_url" form:"background_url" validate:"max=500"`
}

// TableName overrides gorm's pluralization.
func (Hero) TableName() string { return "hero" }

// AboutItem is one text/media pair of the about section.
type AboutItem struct {
	Base
	Title       string `gorm:"size:255;not null" json:"title"       form:"title"       validate:"required,max=255"`
	Description string `gorm:"type:text"         json:"description" form:"description"`
	ImageURL    string `gorm:"size:500"          json:"image_url"   form:"image_url"   validate:"max=500"`
}

// TableName overrides gorm's pluralization.
func (AboutItem) TableName() string { return "about_items" }

// Product is a showcased product card.
type Product struct {
	Base
	Title       string `gorm:"size:255;not null" json:"title"       form:"title"       validate:"required,max=255"`
	Description string `gorm:"type:text"         json:"description" form:"description"`
	ImageURL    string `gorm:"size:500"          json:"image_url"   form:"image_url"   validate:"max=500"`
	Link        string `gorm:"size:500"          json:"link"        form:"link"        validate:"max=500"`
}

// Video is a video presentation.
type Video struct {
	Base
	Title        string `gorm:"size:255;not null" json:"title"         form:"title"         validate:"required,max=255"`
	Description  string `gorm:"type:text"         json:"description"   form:"description"`
	VideoURL     string `gorm:"size:500;not null" json:"video_url"     form:"video_url"     validate:"required,max=500"`
	ThumbnailURL string `gorm:"size:500"          json:"thumbnail_url" form:"thumbnail_url" validate:"max=500"`
}

// Document is a downloadable file (datasheets, certificates, manuals).
type Document struct {
	Base
	Title       string `gorm:"size:255;not null" json:"title"       form:"title"       validate:"required,max=255"`
	Description string `gorm:"type:text"         json:"description" form:"description"`
	FileURL     string `gorm:"size:500;not null" json:"file_url"    form:"file_url"    validate:"required,max=500"`
	FileType    string `gorm:"size:20"           json:"file_type"   form:"file_type"   validate:"max=20"`
	FileSize    int64  `json:"file_size"         form:"file_size"   validate:"gte=0"`
}

// NavigationItem is a link of the site menu.
type NavigationItem struct {
	Base
	Label string `gorm:"size:100;not null" json:"label" form:"label" validate:"required,max=100"`
	URL   string `gorm:"size:500;not null" json:"url"   form:"url"   validate:"required,max=500"`
}

// ProductModal is an info overlay opened when a hotspot area of the products image is clicked.
// Position is given in percent of the image size.
type ProductModal struct {
	Base
	AreaID      string  `gorm:"size:100;not null;index" json:"area_id"     form:"area_id"     validate:"required,max=100"`
	Title       string  `gorm:"size:255;not null"       json:"title"       form:"title"       validate:"required,max=255"`
	Description string  `gorm:"type:text"               json:"description" form:"description"`
	ImageURL    string  `gorm:"size:500"                json:"image_url"   form:"image_url"   validate:"max=500"`
	PositionX   float64 `json:"position_x"              form:"position_x"  validate:"gte=0,lte=100"`
	PositionY   float64 `json:"position_y"              form:"position_y"  validate:"gte=0,lte=100"`
	Width       int     `json:"width"                   form:"width"       validate:"gte=0"`
}

// TechnicalSpec is one row of a product's specification table.
type TechnicalSpec struct {
	Base
	ProductID uint64 `gorm:"index"             json:"product_id" form:"product_id"`
	Name      string `gorm:"size:255;not null" json:"name"       form:"name"       validate:"required,max=255"`
	Value     string `gorm:"size:255;not null" json:"value"      form:"value"      validate:"required,max=255"`
	Unit      string `gorm:"size:50"           json:"unit"       form:"unit"       validate:"max=50"`
}

// Row returns the embedded common columns; it lets generic code reach them through any content type.
func (b *Base) Row() *Base { return b }
