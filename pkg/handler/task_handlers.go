package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/service"
	"github.com/openpaw/pawdeck/pkg/store"
	"github.com/openpaw/pawdeck/pkg/utils"
)

type TaskHandler struct {
	tasks   *service.TaskService
	emitter *event.Emitter
}

func NewTaskHandler(tasks *service.TaskService, emitter *event.Emitter) *TaskHandler {
	return &TaskHandler{tasks: tasks, emitter: emitter}
}

func (h *TaskHandler) View(c *gin.Context) {
	ok(c, h.tasks.View())
}

func (h *TaskHandler) Activate(c *gin.Context) {
	if err := h.tasks.Activate(c.Request.Context()); err != nil {
		fail(c, err, h.tasks.View())
		return
	}
	ok(c, h.tasks.View())
}

type filterRequest struct {
	Filter *string          `json:"filter"`
	Search *string          `json:"search"`
	Mode   *models.ViewMode `json:"mode"`
}

// SetFilter updates any of filter, search and view mode.
func (h *TaskHandler) SetFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Filter != nil {
		if err := h.tasks.SetFilter(*req.Filter); err != nil {
			fail(c, err, nil)
			return
		}
	}
	if req.Mode != nil {
		if err := h.tasks.SetViewMode(*req.Mode); err != nil {
			fail(c, err, nil)
			return
		}
	}
	if req.Search != nil {
		h.tasks.SetSearch(*req.Search)
	}
	ok(c, h.tasks.View())
}

func (h *TaskHandler) Create(c *gin.Context) {
	form := models.NewTaskForm()
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), form.WithType(form.TaskType))
	if err != nil {
		fail(c, err, h.tasks.View())
		return
	}
	ok(c, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, "id is required")
		return
	}
	form := models.NewTaskForm()
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := h.tasks.Update(c.Request.Context(), id, form.WithType(form.TaskType))
	if err != nil {
		fail(c, err, h.tasks.View())
		return
	}
	ok(c, task)
}

func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	id := c.Param("id")
	var req models.TaskStatusPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.tasks.ChangeStatus(c.Request.Context(), id, req.Status); err != nil {
		fail(c, err, h.tasks.View())
		return
	}
	ok(c, h.tasks.View())
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, "id is required")
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, h.tasks.View())
		return
	}
	ok(c, h.tasks.View())
}

type dropRequest struct {
	TaskID string `json:"task_id" binding:"required"`
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
}

// Drop resolves a board drag gesture.
func (h *TaskHandler) Drop(c *gin.Context) {
	var req dropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task_id, from and to are required")
		return
	}
	if err := h.tasks.Drop(c.Request.Context(), req.TaskID, req.From, req.To); err != nil {
		fail(c, err, h.tasks.View())
		return
	}
	ok(c, h.tasks.View())
}

// Watch streams the task view over WebSocket with list-watch semantics:
//   - {type:"SNAPSHOT", data:TaskView} right after connecting
//   - another SNAPSHOT after every task collection change
//   - {type:"BOOKMARK", data:{resourceVersion}} as a heartbeat
//
// Query params:
//   - since: last resourceVersion the client has seen; the initial snapshot is
//     always sent, resume.ok reports whether nothing changed since
func (h *TaskHandler) Watch(c *gin.Context) {
	logger := utils.GetLogger()

	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("task watch upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sinceRV := uint64(0)
	if v := c.Query("since"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			sinceRV = n
		}
	}

	// Changes are coalesced: a pending signal means "send a fresh snapshot".
	changed := make(chan struct{}, 1)
	signal := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	unsubTasks := h.emitter.On(event.TasksChanged, func(event.Event) { signal() })
	defer unsubTasks()
	unsubStore := h.emitter.On(event.StoreChanged, func(ev event.Event) {
		if sc, ok := ev.(event.StoreChangedEvent); ok && sc.Kind == string(store.KindTasks) {
			signal()
		}
	})
	defer unsubStore()

	view := h.tasks.View()
	if err := event.WriteJSON(conn, gin.H{
		"type":   "SNAPSHOT",
		"data":   view,
		"resume": gin.H{"since": sinceRV, "ok": sinceRV != 0 && sinceRV == view.ResourceVersion},
	}); err != nil {
		logger.Info("task watch initial snapshot write failed", "error", err)
		return
	}

	done := event.Keepalive(conn, 32*1024)
	pingTicker := time.NewTicker(event.PingInterval)
	defer pingTicker.Stop()
	bookmarkTicker := time.NewTicker(10 * time.Second)
	defer bookmarkTicker.Stop()

	lastRV := view.ResourceVersion
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-done:
			return
		case <-pingTicker.C:
			if err := event.Ping(conn); err != nil {
				logger.Info("task watch ping failed", "error", err)
				return
			}
		case <-bookmarkTicker.C:
			if err := event.WriteJSON(conn, gin.H{"type": "BOOKMARK", "data": gin.H{"resourceVersion": h.tasks.ResourceVersion()}}); err != nil {
				logger.Info("task watch bookmark write failed", "error", err)
				return
			}
		case <-changed:
			view := h.tasks.View()
			if view.ResourceVersion == lastRV {
				continue
			}
			lastRV = view.ResourceVersion
			if err := event.WriteJSON(conn, gin.H{"type": "SNAPSHOT", "data": view}); err != nil {
				logger.Info("task watch snapshot write failed", "error", err)
				return
			}
		}
	}
}
