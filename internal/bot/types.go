// Package bot holds the domain types and store contracts shared across the
// service: FAQ catalogue entries, crawled knowledge, runtime settings,
// accounts, and the inbound/outbound message shapes.
package bot

import "time"

// FAQ is one question/answer pair. A non-nil ParentID marks it as a
// sub-question of a top-level entry; nesting is at most one level deep.
type FAQ struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FAQNode is a top-level FAQ with its sub-questions attached, the shape the
// admin listing returns.
type FAQNode struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	SubFAQs  []FAQ  `json:"sub_faqs"`
}

// KnowledgeEntry is one stored crawl result.
type KnowledgeEntry struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is the extracted form of one fetched document.
type Page struct {
	URL     string
	Title   string
	Content string
	Images  []string
}

// CrawlCounters reports the outcome of one training batch.
type CrawlCounters struct {
	Fetched int
	Failed  int
}

// User is an admin account.
type User struct {
	ID       int64
	Username string
	Password string
	Email    string
}

// ResetToken is a single-use password reset grant.
type ResetToken struct {
	Email     string
	Token     string
	ExpiresAt time.Time
	Used      bool
}

// MessageEvent is an inbound text message extracted from a webhook
// notification.
type MessageEvent struct {
	From string
	Text string
}

// DeliveryResult reports the platform's answer to an outbound send.
type DeliveryResult struct {
	OK         bool
	StatusCode int
}

// Setting keys form a fixed set; the settings table never grows beyond them.
const (
	SettingAPIToken      = "whatsapp_api_token"
	SettingPhoneNumber   = "whatsapp_phone_number"
	SettingPhoneNumberID = "whatsapp_phone_number_id"
	SettingVerifyToken   = "webhook_verify_token"
	SettingGreeting      = "greeting_message"
	SettingSMTPServer    = "smtp_server"
	SettingSMTPPort      = "smtp_port"
	SettingSMTPUsername  = "smtp_username"
	SettingSMTPPassword  = "smtp_password"
	SettingAdminEmail    = "admin_email"
)

// SettingKeys lists every recognized setting key.
var SettingKeys = []string{
	SettingAPIToken,
	SettingPhoneNumber,
	SettingPhoneNumberID,
	SettingVerifyToken,
	SettingGreeting,
	SettingSMTPServer,
	SettingSMTPPort,
	SettingSMTPUsername,
	SettingSMTPPassword,
	SettingAdminEmail,
}
