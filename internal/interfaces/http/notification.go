package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"parcela/internal/domain/notification"
	"parcela/internal/shared/middleware"
)

const maxDeviceBodySize = 4 * 1024

type NotificationHandler struct {
	tokens notification.TokenRepository
}

func NewNotificationHandler(tokens notification.TokenRepository) *NotificationHandler {
	return &NotificationHandler{tokens: tokens}
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"` // ios, android
}

// HandleRegisterDevice handles POST /api/notifications/register-device
func (h *NotificationHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDeviceBodySize)
	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	err := h.tokens.Register(r.Context(), notification.DeviceToken{
		Token:    req.Token,
		UserID:   userID,
		Platform: req.Platform,
		Active:   true,
	})
	if err != nil {
		if errors.Is(err, notification.ErrInvalidToken) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Error registering device for user %d: %v", userID, err)
		http.Error(w, "Failed to register device", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"token":   req.Token,
	})
}
