// handlers/notifications.go - Notification feed endpoints
package handlers

import (
	"edscrum/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications lists the authenticated user's notifications, newest
// first.
// GET /api/notifications
func GetNotifications(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	notifications, err := notificationService.ListForUser(userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "notifications": notifications})
}

// MarkNotificationRead marks one of the caller's notifications as read.
// PUT /api/notifications/:id/read
func MarkNotificationRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	notificationID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := notificationService.MarkRead(userID, notificationID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Notification marked as read"})
}

// MarkAllNotificationsRead marks every notification of the caller as read.
// PUT /api/notifications/read-all
func MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	if err := notificationService.MarkAllRead(userID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "All notifications marked as read"})
}
