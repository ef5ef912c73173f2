package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"salesassistant-backend/database"
	"salesassistant-backend/models"
	"salesassistant-backend/observability"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrInvalidEvent marks a malformed inbound webhook payload (client fault).
	ErrInvalidEvent = errors.New("inbound event missing customer address or message text")
	// ErrUnknownBusiness means no tenant matched the event's routing key.
	ErrUnknownBusiness = errors.New("no business matches routing key")
)

// InboundMessage is the boundary event for one received chat message.
type InboundMessage struct {
	InstanceId    string // routing key: the UltraMsg instance the event was delivered for
	CustomerPhone string
	Body          string
}

// Pipeline orchestrates one inbound message end to end. It is the only
// component with cross-cutting control flow; everything below it either
// returns explicit values or degrades to fallbacks.
type Pipeline struct {
	DB         *gorm.DB
	Replies    *ReplyGenerator
	Dispatcher *Dispatcher
}

// ResolveConversation looks up the most recent conversation for the
// (business, phone) pair, creating an active one with empty context when none
// exists. The partial unique index on open conversations turns a concurrent
// first-contact race into a create conflict, resolved here by re-reading.
func ResolveConversation(db *gorm.DB, businessId, customerPhone string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := db.Where("business_id = ? AND customer_phone = ?", businessId, customerPhone).
		Order("created_at DESC").
		First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversation = models.Conversation{
		BusinessId:    businessId,
		CustomerPhone: customerPhone,
		Status:        models.ConversationActive,
		Context:       datatypes.JSONMap{},
	}
	if createErr := db.Create(&conversation).Error; createErr != nil {
		// Lost the race: another request created the row first. Use theirs.
		var existing models.Conversation
		if readErr := db.Where("business_id = ? AND customer_phone = ?", businessId, customerPhone).
			Order("created_at DESC").
			First(&existing).Error; readErr != nil {
			return nil, createErr
		}
		return &existing, nil
	}
	return &conversation, nil
}

// AppendMessage writes one immutable message row and advances the
// conversation's last-activity timestamp. Callers bound content size upstream.
func AppendMessage(db *gorm.DB, conversationId, senderType, messageType, content string, metadata datatypes.JSONMap) (*models.Message, error) {
	message := models.Message{
		ConversationId: conversationId,
		Content:        content,
		SenderType:     senderType,
		MessageType:    messageType,
		Metadata:       metadata,
	}
	if err := db.Create(&message).Error; err != nil {
		return nil, err
	}

	err := db.Model(&models.Conversation{}).
		Where("id = ?", conversationId).
		Update("last_message_at", time.Now().UTC()).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// HandleInbound runs the full sequence for one webhook event:
// resolve tenant -> resolve conversation -> persist inbound -> load catalog ->
// assemble prompt -> generate reply -> persist reply -> dispatch.
// Dispatch failure is logged but never rolls back the persisted turn; the
// conversation record is the durable source of truth, delivery is best-effort.
func (p *Pipeline) HandleInbound(ctx context.Context, event InboundMessage) error {
	customerPhone := strings.TrimSpace(event.CustomerPhone)
	body := strings.TrimSpace(event.Body)
	if customerPhone == "" || body == "" {
		observability.InboundMessages.WithLabelValues("rejected").Inc()
		return ErrInvalidEvent
	}

	business, err := database.GetBusinessByRoutingKey(p.DB, event.InstanceId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.InboundMessages.WithLabelValues("unknown_business").Inc()
			return ErrUnknownBusiness
		}
		return err
	}

	conversation, err := ResolveConversation(p.DB, business.Id, customerPhone)
	if err != nil {
		return err
	}

	if _, err := AppendMessage(p.DB, conversation.Id, models.SenderCustomer, models.MessageText, body, nil); err != nil {
		return err
	}

	catalog, err := database.GetActiveCatalog(p.DB, business.Id)
	if err != nil {
		return err
	}

	prompt := BuildPrompt(business, catalog, conversation.Context, body)
	reply := p.Replies.GenerateReply(ctx, business, prompt)

	if _, err := AppendMessage(p.DB, conversation.Id, models.SenderAssistant, models.MessageText, reply, nil); err != nil {
		return err
	}

	// Best-effort delivery; a provider failure here is already logged by the
	// dispatcher and must not fail the pipeline.
	p.Dispatcher.SendText(ctx, business, customerPhone, reply)

	observability.InboundMessages.WithLabelValues("processed").Inc()
	return nil
}
