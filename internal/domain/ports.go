package domain

import "context"

type AgentRepository interface {
	ListAgents(ctx context.Context, skip, limit int) ([]Agent, error)
	GetAgent(ctx context.Context, id int64) (Agent, error)
	CreateAgent(ctx context.Context, a Agent) (Agent, error)
	UpdateAgent(ctx context.Context, a Agent) (Agent, error)
}

type CompanyRepository interface {
	LatestCompany(ctx context.Context) (CompanyInfo, error)
	GetCompany(ctx context.Context, id int64) (CompanyInfo, error)
	CreateCompany(ctx context.Context, c CompanyInfo) (CompanyInfo, error)
	UpdateCompany(ctx context.Context, c CompanyInfo) (CompanyInfo, error)
}

type InteractionRepository interface {
	CreateInteraction(ctx context.Context, i Interaction) (Interaction, error)
	ListSessionInteractions(ctx context.Context, sessionID string, limit int) ([]Interaction, error)
}

type LeadRepository interface {
	CreateLead(ctx context.Context, l Lead) (Lead, error)
}

type PropertyRepository interface {
	SearchProperties(ctx context.Context, f PropertyFilter) ([]Property, error)
	GetProperty(ctx context.Context, id string) (Property, error)
	CreateProperty(ctx context.Context, p Property) (Property, error)
	UpdateProperty(ctx context.Context, p Property) (Property, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, u User) (User, error)
	UpdateUserContact(ctx context.Context, id int64, fullName, phone *string) error
}

type ListingRepository interface {
	// UpsertListing inserts or updates by wp_id and returns the row id.
	UpsertListing(ctx context.Context, l Listing) (int64, error)
	ReplaceListingMedia(ctx context.Context, listingID int64, imgs []ListingImage, docs []ListingDocument) error
	ListListings(ctx context.Context) ([]Listing, error)
	UpdateListingText(ctx context.Context, l Listing) error
}

type HealthRepository interface {
	TableCounts(ctx context.Context) (map[string]int64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Turn is one prior message of a chat, oldest first.
type Turn struct {
	Role string `json:"role" validate:"oneof=user assistant"`
	Text string `json:"content" validate:"max=4000"`
}

type LLM interface {
	Answer(ctx context.Context, lang, text string, history []Turn) (string, error)
}

type Notifier interface {
	SendWelcome(ctx context.Context, l Lead) error
	SendSalesAlert(ctx context.Context, c Contact) error
}

type WordPressClient interface {
	// ListListings returns one page of raw posts and the total page count.
	ListListings(ctx context.Context, page int) ([]map[string]any, int, error)
	Ping(ctx context.Context) error
}
