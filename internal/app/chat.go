package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"satn_chatbot/internal/domain"
	"satn_chatbot/internal/intent"
)

const (
	DefaultChatLimit = 6
	MaxChatLimit     = 12

	RouteSearch   = "search"
	RouteLLM      = "llm"
	RouteFallback = "fallback"

	// NotConfiguredReply is sent for general questions when no LLM is wired.
	NotConfiguredReply = "⚠️ Backend configuration issue: OPENAI_API_KEY is not set. Please notify the site administrator."
)

type ChatRequest struct {
	SessionID string
	Name      string
	Email     string
	Phone     string
	Message   string
	Lang      string
	Limit     int
	History   []domain.Turn
}

type ChatResult struct {
	SessionID     string
	Reply         string
	Language      string
	UserID        *int64
	InteractionID int64
	Properties    []domain.Property
	QuickReplies  []string
	Filters       intent.Slots
	Route         string
}

type ChatService struct {
	users        domain.UserRepository
	props        *PropertyService
	interactions *InteractionService
	llm          domain.LLM
	notify       *Dispatcher
}

// NewChatService wires the chat flow. llm may be nil, in which case
// non-search messages get NotConfiguredReply.
func NewChatService(users domain.UserRepository, props *PropertyService, inter *InteractionService, llm domain.LLM, d *Dispatcher) *ChatService {
	return &ChatService{users: users, props: props, interactions: inter, llm: llm, notify: d}
}

func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return ChatResult{}, fmt.Errorf("%w: message is required", domain.ErrInvalid)
	}
	limit := req.Limit
	switch {
	case limit == 0:
		limit = DefaultChatLimit
	case limit < 1 || limit > MaxChatLimit:
		return ChatResult{}, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalid, MaxChatLimit)
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var userID *int64
	if email := normEmail(req.Email); email != "" {
		u, err := s.chatUser(ctx, strings.TrimSpace(req.Name), email, strings.TrimSpace(req.Phone))
		if err != nil {
			return ChatResult{}, fmt.Errorf("chat user: %w", err)
		}
		userID = &u.ID
	}

	lang, ok := intent.NormalizeLang(req.Lang)
	if !ok {
		lang = intent.DetectLang(msg)
	}

	slots := intent.Parse(intent.ToEnglish(msg, lang))
	res := ChatResult{SessionID: sessionID, Language: lang, UserID: userID, Filters: slots}

	switch {
	case slots.HasSearchIntent():
		found, err := s.props.Search(ctx, slots.Filter(MaxChatLimit))
		if err != nil {
			return ChatResult{}, err
		}
		res.Route = RouteSearch
		res.Reply = intent.FromEnglish(composeReply(slots, len(found)), lang)
		if len(found) > limit {
			found = found[:limit]
		}
		res.Properties = found
		res.QuickReplies = quickReplies(slots, len(found))
	case s.llm != nil:
		answer, err := s.llm.Answer(ctx, lang, msg, req.History)
		if err != nil {
			return ChatResult{}, err
		}
		res.Route = RouteLLM
		res.Reply = answer
		res.QuickReplies = generalQuickReplies
	default:
		res.Route = RouteFallback
		res.Reply = NotConfiguredReply
		res.QuickReplies = generalQuickReplies
	}
	if res.Properties == nil {
		res.Properties = []domain.Property{}
	}

	reply := res.Reply
	inter, err := s.interactions.Log(ctx, domain.Interaction{
		SessionID:   sessionID,
		Channel:     domain.DefaultChannel,
		Language:    &lang,
		UserMessage: msg,
		BotResponse: &reply,
		UserID:      userID,
	})
	if err != nil {
		return ChatResult{}, fmt.Errorf("log interaction: %w", err)
	}
	res.InteractionID = inter.ID

	log.Debug().Str("session", sessionID).Str("route", res.Route).Str("lang", lang).
		Int("properties", len(res.Properties)).Msg("chat turn")
	return res, nil
}

// chatUser finds the user by email, refreshing name/phone when they changed,
// or creates one. A new user raises a sales alert.
func (s *ChatService) chatUser(ctx context.Context, name, email, phone string) (domain.User, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		var newName, newPhone *string
		if name != "" && deref(u.FullName) != name {
			newName = &name
		}
		if phone != "" && deref(u.Phone) != phone {
			newPhone = &phone
		}
		if newName == nil && newPhone == nil {
			return u, nil
		}
		if newName == nil {
			newName = u.FullName
		}
		if newPhone == nil {
			newPhone = u.Phone
		}
		if err := s.users.UpdateUserContact(ctx, u.ID, newName, newPhone); err != nil {
			return domain.User{}, err
		}
		u.FullName, u.Phone = newName, newPhone
		return u, nil
	case !errors.Is(err, domain.ErrNotFound):
		return domain.User{}, err
	}

	u, err = s.users.CreateUser(ctx, domain.User{
		Email:    &email,
		FullName: ptrStr(name),
		Phone:    ptrStr(phone),
		IsActive: true,
	})
	if errors.Is(err, domain.ErrConflict) {
		// lost a race with a concurrent first message
		return s.users.GetUserByEmail(ctx, email)
	}
	if err != nil {
		return domain.User{}, err
	}
	s.notify.SalesAlert(domain.Contact{Name: name, Email: email, Phone: phone, Source: "chat"})
	return u, nil
}

func composeReply(s intent.Slots, count int) string {
	if count > 0 {
		parts := []string{fmt.Sprintf("Found %d option", count)}
		if count != 1 {
			parts[0] += "s"
		}
		if s.Location != "" {
			parts = append(parts, "in "+s.Location)
		}
		if s.Beds != nil && *s.Beds > 0 {
			parts = append(parts, fmt.Sprintf("with ≥%d bed(s)", *s.Beds))
		}
		if s.MaxPrice != nil && *s.MaxPrice > 0 {
			parts = append(parts, "under "+intent.FormatAmount(*s.MaxPrice))
		} else if s.MinPrice != nil && *s.MinPrice > 0 {
			parts = append(parts, "from "+intent.FormatAmount(*s.MinPrice))
		}
		return strings.Join(parts, " ") + ". Showing the top results."
	}

	var hint []string
	if s.Location == "" {
		hint = append(hint, "add a location")
	}
	if s.Beds == nil || *s.Beds == 0 {
		hint = append(hint, "set beds")
	}
	if s.MinPrice == nil && s.MaxPrice == nil {
		hint = append(hint, "include a budget")
	}
	if len(hint) == 0 {
		return "Sorry, I couldn't find matching properties. Try adjusting your filters."
	}
	return "Sorry, I couldn't find matching properties. Try to " + strings.Join(hint, ", ") + "."
}

var generalQuickReplies = []string{"Show available properties", "Talk to an agent"}

func quickReplies(s intent.Slots, count int) []string {
	var out []string
	if s.Location == "" {
		out = append(out, "Add a location")
	}
	if s.Beds == nil {
		out = append(out, "Set bedrooms")
	}
	if s.MinPrice == nil && s.MaxPrice == nil {
		out = append(out, "Set a budget")
	}
	if count > 0 {
		out = append(out, "Download chat summary")
	}
	return append(out, "Talk to an agent")
}
