package ws

import (
	"net/http"
	"strconv"

	"clinic_queue/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Апгрейдер разрешает все источники, как и CORS-политика API.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS godoc
// @Summary		Подписка на события очередей
// @Description	Открывает WebSocket. Клиент отправляет {"type":"subscribe","queueId":N}, чтобы получать события очереди, и {"type":"unsubscribe"}, чтобы отписаться
// @Tags			websocket
// @Success		101
// @Router			/ws [get]
func (h *Hub) ServeWS(c *gin.Context) {
	h.serve(c, 0)
}

// ServeQueueWS godoc
// @Summary		Подписка на события одной очереди
// @Description	Открывает WebSocket, уже подписанный на очередь из пути
// @Tags			websocket
// @Param			id	path	int	true	"ID очереди"
// @Success		101
// @Failure		400	{object}	response.ErrorResponse	"Неверный идентификатор очереди (INVALID_QUEUE_ID)"
// @Router			/api/queues/{id}/ws [get]
func (h *Hub) ServeQueueWS(c *gin.Context) {
	queueID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || queueID == 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_QUEUE_ID",
			Message: "Неверный идентификатор очереди",
		})
		return
	}
	h.serve(c, uint(queueID))
}

func (h *Hub) serve(c *gin.Context, queueID uint) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой.
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := newClient(h, conn)
	if !h.Register(client) {
		conn.Close()
		return
	}
	if queueID != 0 {
		h.Subscribe(client, queueID)
	}

	go client.writePump()
	client.readPump()
}
