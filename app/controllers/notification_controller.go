package controllers

import (
	"net/http"
	"strconv"

	"github.com/gmcandra/mebelshop/pkg/middleware"
	"github.com/gmcandra/mebelshop/pkg/notification"
	"github.com/gmcandra/mebelshop/pkg/response"
)

// NotificationController serves the in-app inbox.
type NotificationController struct{}

func NewNotificationController() *NotificationController {
	return &NotificationController{}
}

func (c *NotificationController) Index(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := notification.Inbox(userID, limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "inbox unavailable")
		return
	}
	if records == nil {
		records = []notification.Record{}
	}
	response.Success(w, records)
}

func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	id, ok := idParam(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := notification.MarkRead(userID, id); err != nil {
		response.Error(w, http.StatusInternalServerError, "mark read failed")
		return
	}
	response.Success(w, map[string]string{"message": "marked read"})
}
