package ws

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gig-escrow/internal/metrics"
	"github.com/ignatzorin/gig-escrow/internal/validation"
)

const membershipTimeout = 5 * time.Second

var (
	errForeignChannel   = errors.New("нельзя подписаться на чужой канал")
	errNotParty         = errors.New("нет доступа к контракту")
	errSenderMismatch   = errors.New("отправитель не совпадает с пользователем соединения")
	errEmptyMessage     = errors.New("сообщение не может быть пустым")
	errNotJoined        = errors.New("сначала подпишитесь на канал контракта")
	errMembershipFailed = errors.New("не удалось проверить доступ к контракту")
)

// HandleFrame разбирает входящий кадр клиента и выполняет событие.
// Любая ошибка возвращается только отправителю событием error, соединение остаётся открытым.
func (h *Hub) HandleFrame(ctx context.Context, client *Client, raw []byte) {
	event, payload, err := decodeFrame(raw)
	if err != nil {
		h.reject(client, event, reasonOf(err), err)
		return
	}
	metrics.RelayEventsTotal.WithLabelValues(event).Inc()

	switch p := payload.(type) {
	case *JoinPayload:
		err = h.onJoin(client, p)
	case *ContractPayload:
		if event == EventJoinContract {
			err = h.onJoinContract(ctx, client, p)
		} else {
			h.leave(client, ContractRoom(uuid.MustParse(p.ContractID)))
		}
	case *SendMessagePayload:
		err = h.onSendMessage(ctx, client, p)
	case *TypingPayload:
		err = h.onTyping(client, p)
	}

	if err != nil {
		h.reject(client, event, reasonOf(err), err)
	}
}

func (h *Hub) onJoin(client *Client, p *JoinPayload) error {
	if uuid.MustParse(p.UserID) != client.userID {
		return errForeignChannel
	}
	return h.join(client, UserRoom(client.userID))
}

func (h *Hub) onJoinContract(ctx context.Context, client *Client, p *ContractPayload) error {
	contractID := uuid.MustParse(p.ContractID)
	if err := h.checkParty(ctx, contractID, client.userID); err != nil {
		return err
	}
	return h.join(client, ContractRoom(contractID))
}

func (h *Hub) onSendMessage(ctx context.Context, client *Client, p *SendMessagePayload) error {
	senderID := uuid.MustParse(p.SenderID)
	if senderID != client.userID {
		return errSenderMismatch
	}
	text := strings.TrimSpace(p.Message)
	if text == "" {
		return errEmptyMessage
	}

	contractID := uuid.MustParse(p.ContractID)
	receiverID := uuid.MustParse(p.ReceiverID)
	if err := h.checkParty(ctx, contractID, senderID); err != nil {
		return err
	}
	if err := h.checkParty(ctx, contractID, receiverID); err != nil {
		return err
	}

	if err := h.publish(ContractRoom(contractID), EventReceiveMessage, ReceiveMessageEvent{
		ContractID: contractID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    text,
		Timestamp:  h.now().UTC(),
	}, nil); err != nil {
		return err
	}

	return h.publish(UserRoom(receiverID), EventNewMessageNotification, NewMessageNotification{
		ContractID: contractID,
		SenderID:   senderID,
		Message:    validation.Preview(text, validation.MessagePreviewLength),
	}, nil)
}

func (h *Hub) onTyping(client *Client, p *TypingPayload) error {
	if uuid.MustParse(p.UserID) != client.userID {
		return errSenderMismatch
	}
	room := ContractRoom(uuid.MustParse(p.ContractID))
	if !h.inRoom(client, room) {
		return errNotJoined
	}
	return h.publish(room, EventUserTyping, UserTypingEvent{
		UserID:   client.userID,
		IsTyping: p.IsTyping,
	}, client)
}

func (h *Hub) checkParty(ctx context.Context, contractID, userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, membershipTimeout)
	defer cancel()

	ok, err := h.membership.IsContractParty(ctx, contractID, userID)
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"contract_id": contractID,
			"user_id":     userID,
			"error":       err.Error(),
		}).Error("ошибка проверки участника контракта")
		return errMembershipFailed
	}
	if !ok {
		return errNotParty
	}
	return nil
}

func (h *Hub) reject(client *Client, event, reason string, err error) {
	metrics.RelayErrorsTotal.WithLabelValues(reason).Inc()
	h.log.WithFields(logrus.Fields{
		"user_id": client.userID,
		"event":   event,
		"reason":  reason,
	}).Debug(err.Error())
	h.sendTo(client, EventError, ErrorEvent{Message: err.Error()})
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, errMalformedFrame):
		return "malformed"
	case errors.Is(err, errUnknownEvent):
		return "unknown_event"
	case errors.Is(err, errForeignChannel), errors.Is(err, errNotParty), errors.Is(err, errSenderMismatch):
		return "forbidden"
	case errors.Is(err, errNotJoined), errors.Is(err, errEmptyMessage):
		return "rejected"
	case errors.Is(err, errMembershipFailed), errors.Is(err, errHubStopped), errors.Is(err, errClientGone):
		return "internal"
	default:
		return "validation"
	}
}
