package controllers

import (
	"net/http"

	"github.com/gmcandra/mebelshop/pkg/middleware"
	"github.com/gmcandra/mebelshop/pkg/response"
	"github.com/gmcandra/mebelshop/pkg/ws"
)

// WSController upgrades authenticated clients onto the live order feed.
type WSController struct {
	hub *ws.Hub
}

func NewWSController(hub *ws.Hub) *WSController {
	return &WSController{hub: hub}
}

func (c *WSController) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	ws.Upgrade(w, r, c.hub, userID)
}
