package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Входящие события.
const (
	EventJoin          = "join"
	EventJoinContract  = "join_contract"
	EventLeaveContract = "leave_contract"
	EventSendMessage   = "send_message"
	EventTyping        = "typing"
)

// Исходящие события.
const (
	EventReceiveMessage         = "receive_message"
	EventNewMessageNotification = "new_message_notification"
	EventUserTyping             = "user_typing"
	EventError                  = "error"
)

// MaxMessageLength - предельная длина текста сообщения в рунах.
const MaxMessageLength = 5000

var (
	errMalformedFrame = errors.New("некорректный формат сообщения")
	errUnknownEvent   = errors.New("неизвестный тип события")
)

var validate = validator.New()

// Envelope - общий вид кадра в обе стороны: {"type": "...", "data": {...}}.
type Envelope struct {
	Type string          `json:"type" validate:"required"`
	Data json.RawMessage `json:"data"`
}

// JoinPayload - подписка на личный канал.
type JoinPayload struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// ContractPayload - подписка на канал контракта или отписка от него.
type ContractPayload struct {
	ContractID string `json:"contractId" validate:"required,uuid"`
}

// SendMessagePayload - сообщение в чат контракта.
type SendMessagePayload struct {
	ContractID string `json:"contractId" validate:"required,uuid"`
	SenderID   string `json:"senderId" validate:"required,uuid"`
	ReceiverID string `json:"receiverId" validate:"required,uuid,nefield=SenderID"`
	Message    string `json:"message" validate:"required,max=5000"`
}

// TypingPayload - индикатор набора текста.
type TypingPayload struct {
	ContractID string `json:"contractId" validate:"required,uuid"`
	UserID     string `json:"userId" validate:"required,uuid"`
	IsTyping   bool   `json:"isTyping"`
}

// ReceiveMessageEvent рассылается в канал контракта.
type ReceiveMessageEvent struct {
	ContractID uuid.UUID `json:"contractId"`
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewMessageNotification отправляется в личный канал получателя.
type NewMessageNotification struct {
	ContractID uuid.UUID `json:"contractId"`
	SenderID   uuid.UUID `json:"senderId"`
	Message    string    `json:"message"`
}

// UserTypingEvent рассылается в канал контракта всем, кроме печатающего.
type UserTypingEvent struct {
	UserID   uuid.UUID `json:"userId"`
	IsTyping bool      `json:"isTyping"`
}

// ErrorEvent возвращается только отправителю ошибочного кадра.
type ErrorEvent struct {
	Message string `json:"message"`
}

// decodeFrame разбирает кадр в типизированную структуру события и проверяет её.
// Возвращает тип события и указатель на payload.
func decodeFrame(raw []byte) (string, any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, errMalformedFrame
	}
	if err := validate.Struct(env); err != nil {
		return "", nil, errMalformedFrame
	}

	var payload any
	switch env.Type {
	case EventJoin:
		payload = &JoinPayload{}
	case EventJoinContract, EventLeaveContract:
		payload = &ContractPayload{}
	case EventSendMessage:
		payload = &SendMessagePayload{}
	case EventTyping:
		payload = &TypingPayload{}
	default:
		return env.Type, nil, errUnknownEvent
	}

	if len(env.Data) == 0 {
		return env.Type, nil, errMalformedFrame
	}
	if err := json.Unmarshal(env.Data, payload); err != nil {
		return env.Type, nil, errMalformedFrame
	}
	if err := validate.Struct(payload); err != nil {
		return env.Type, nil, validationError(err)
	}
	return env.Type, payload, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("поле %s не прошло проверку %s", fe.Field(), fe.Tag())
	}
	return errMalformedFrame
}

// encodeEvent формирует исходящий кадр.
func encodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		return nil, fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}
	return raw, nil
}
