package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Template is a reusable email template. The HTML body carries {{variable}}
// placeholders resolved at send time from TemplateVariable defaults.
type Template struct {
	bun.BaseModel `bun:"table:templates,alias:t"`

	ID          string    `bun:"id,pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description"`
	Subject     string    `bun:"subject" json:"subject"`
	HTMLBody    string    `bun:"html_body" json:"html_body"`
	TextBody    string    `bun:"text_body" json:"text_body"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// TemplateVariable is a named placeholder belonging to a template.
type TemplateVariable struct {
	bun.BaseModel `bun:"table:template_variables,alias:tv"`

	ID           string    `bun:"id,pk,type:uuid" json:"id"`
	TemplateID   string    `bun:"template_id,notnull,type:uuid" json:"template_id"` // FK to templates(id)
	Name         string    `bun:"name,notnull" json:"name"`
	DefaultValue string    `bun:"default_value" json:"default_value"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
