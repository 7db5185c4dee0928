package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/arvind-kp/sevaconnect_backend/internal/models"
	"github.com/arvind-kp/sevaconnect_backend/internal/realtime"
	"github.com/arvind-kp/sevaconnect_backend/internal/utils"
)

// NotificationHandler stores notifications and streams them to open
// sockets. Persist first, push second: the live push is best effort and
// the list endpoint is the source of truth.
type NotificationHandler struct {
	DB        *gorm.DB
	Hub       *realtime.Hub
	RDB       *redis.Client
	JWTSecret string
}

func NewNotificationHandler(db *gorm.DB, hub *realtime.Hub, rdb *redis.Client, jwtSecret string) *NotificationHandler {
	return &NotificationHandler{DB: db, Hub: hub, RDB: rdb, JWTSecret: jwtSecret}
}

// Create stores a notification row and publishes it for socket fanout.
func (h *NotificationHandler) Create(ctx context.Context, userID uuid.UUID, title, body string) {
	n := models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
	}
	if err := h.DB.WithContext(ctx).Create(&n).Error; err != nil {
		log.Printf("notification: store for user %s: %v", userID, err)
		return
	}

	if h.RDB != nil {
		realtime.PublishNotification(ctx, h.RDB, realtime.NotifyEvent{
			UserID: userID,
			Data:   n,
		})
	}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	var notifications []models.Notification
	if err := h.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		return fail500(c, "failed to load notifications")
	}

	var unread int64
	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return fail500(c, "failed to load notifications")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"notifications": notifications,
			"unread_count":  unread,
		},
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid notification id")
	}

	res := h.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return fail500(c, "failed to update notification")
	}
	if res.RowsAffected == 0 {
		return fail200(c, "notification not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	if err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		return fail500(c, "failed to update notifications")
	}

	return c.JSON(fiber.Map{"success": true})
}

// WebSocketHandler upgrades a notification stream. Browsers cannot set
// headers on websocket upgrades so the JWT arrives as a query parameter.
func (h *NotificationHandler) WebSocketHandler(c *websocket.Conn) {
	token := c.Query("token")
	if token == "" {
		log.Println("notification ws: token missing")
		c.Close()
		return
	}

	claims, err := utils.ParseJWT(h.JWTSecret, token)
	if err != nil {
		log.Printf("notification ws: bad token: %v", err)
		c.Close()
		return
	}

	userUUID, err := uuid.Parse(claims.UserID)
	if err != nil {
		log.Printf("notification ws: bad user id in token: %v", err)
		c.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Conn:   realtime.NewWebSocketConn(c),
		Send:   make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer h.Hub.UnregisterClient(client)

	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// Drain client frames to keep the connection alive; pings only.
	for {
		var payload map[string]interface{}
		if err := c.ReadJSON(&payload); err != nil {
			return
		}
	}
}
