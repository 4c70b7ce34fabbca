package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/dkovac/renthub/internal/service"
	"github.com/dkovac/renthub/internal/transport/http/middleware"
	"github.com/dkovac/renthub/pkg/validator"
)

type ConversationHandler struct {
	convService *service.ConversationService
	msgService  *service.MessageService
}

func NewConversationHandler(convService *service.ConversationService, msgService *service.MessageService) *ConversationHandler {
	return &ConversationHandler{
		convService: convService,
		msgService:  msgService,
	}
}

func (h *ConversationHandler) CreateOrGet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateConversationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.CounterpartID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_COUNTERPART", "counterpart_id is required")
		return
	}

	conv, err := h.convService.CreateOrGet(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotMessageSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_MESSAGE_SELF", "Cannot start a conversation with yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrPropertyNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Property not found")
		case errors.Is(err, service.ErrConversationConflict):
			writeError(w, http.StatusConflict, "CONFLICT", "Conversation was just created, retry")
		default:
			log.Printf("ERROR create or get conversation: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, conv)
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	convs, err := h.convService.List(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list conversations: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, convs)
}

// Get returns a conversation together with its newest page of
// messages. Opening it this way marks the whole thread read for the
// caller, so the messages are fetched before the conversation record.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	convID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID")
		return
	}

	msgs, err := h.msgService.GetMessages(r.Context(), userID, convID, 1, 0)
	if err != nil {
		h.writeConversationError(w, err, "get conversation messages")
		return
	}

	conv, err := h.convService.Get(r.Context(), userID, convID)
	if err != nil {
		h.writeConversationError(w, err, "get conversation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation": conv,
		"messages":     msgs.Messages,
		"pagination":   msgs.Pagination,
	})
}

func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	convID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID")
		return
	}

	if err := h.convService.Delete(r.Context(), userID, middleware.IsAdmin(r.Context()), convID); err != nil {
		h.writeConversationError(w, err, "delete conversation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ConversationHandler) writeConversationError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Conversation not found")
	case errors.Is(err, service.ErrNotParticipant):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this conversation")
	case errors.Is(err, service.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, "INVALID_PAGE", "Page must be 1 or greater")
	default:
		log.Printf("ERROR %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}
