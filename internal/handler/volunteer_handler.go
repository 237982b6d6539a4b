package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/realtime"
	"github.com/noah-isme/academy-api/pkg/response"
)

const streamKeepAlive = 25 * time.Second

type volunteerService interface {
	List(ctx context.Context, academyID string, filter models.VolunteerFilter) ([]models.Volunteer, *models.Pagination, error)
	Get(ctx context.Context, academyID, id string) (*models.Volunteer, error)
	Create(ctx context.Context, academyID string, req service.VolunteerRequest) (*models.Volunteer, error)
	Update(ctx context.Context, academyID, id string, req service.VolunteerRequest) (*models.Volunteer, error)
	Delete(ctx context.Context, academyID, id string) error
	Subscribe(ctx context.Context, academyID string) (realtime.Subscription, error)
}

type subscriberGauge interface {
	RealtimeSubscribed(delta float64)
}

// VolunteerHandler exposes volunteer endpoints and their change feed.
type VolunteerHandler struct {
	volunteers volunteerService
	gauge      subscriberGauge
	keepAlive  time.Duration
}

// NewVolunteerHandler constructs VolunteerHandler.
func NewVolunteerHandler(volunteers volunteerService, gauge subscriberGauge) *VolunteerHandler {
	return &VolunteerHandler{volunteers: volunteers, gauge: gauge, keepAlive: streamKeepAlive}
}

// List godoc
// @Summary List volunteers
// @Tags Volunteers
// @Produce json
// @Param search query string false "Search by name or DNI"
// @Param area query string false "Filter by area"
// @Param active query bool false "Filter by active state"
// @Success 200 {object} response.Envelope
// @Router /volunteers [get]
func (h *VolunteerHandler) List(c *gin.Context) {
	filter := models.VolunteerFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Area:   c.Query("area"),
		Active: boolQuery(c, "active"),
	}
	filter.Page, filter.PageSize = pageQuery(c)
	items, pagination, err := h.volunteers.List(c.Request.Context(), academyID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get volunteer
// @Tags Volunteers
// @Produce json
// @Param id path string true "Volunteer ID"
// @Success 200 {object} response.Envelope
// @Router /volunteers/{id} [get]
func (h *VolunteerHandler) Get(c *gin.Context) {
	volunteer, err := h.volunteers.Get(c.Request.Context(), academyID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volunteer, nil)
}

// Create godoc
// @Summary Create volunteer
// @Tags Volunteers
// @Accept json
// @Produce json
// @Param payload body service.VolunteerRequest true "Volunteer payload"
// @Success 201 {object} response.Envelope
// @Router /volunteers [post]
func (h *VolunteerHandler) Create(c *gin.Context) {
	var req service.VolunteerRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	volunteer, err := h.volunteers.Create(c.Request.Context(), academyID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, volunteer)
}

// Update godoc
// @Summary Update volunteer
// @Tags Volunteers
// @Accept json
// @Produce json
// @Param id path string true "Volunteer ID"
// @Param payload body service.VolunteerRequest true "Volunteer payload"
// @Success 200 {object} response.Envelope
// @Router /volunteers/{id} [put]
func (h *VolunteerHandler) Update(c *gin.Context) {
	var req service.VolunteerRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	volunteer, err := h.volunteers.Update(c.Request.Context(), academyID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volunteer, nil)
}

// Delete godoc
// @Summary Delete volunteer
// @Tags Volunteers
// @Param id path string true "Volunteer ID"
// @Success 204
// @Router /volunteers/{id} [delete]
func (h *VolunteerHandler) Delete(c *gin.Context) {
	if err := h.volunteers.Delete(c.Request.Context(), academyID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stream godoc
// @Summary Volunteer change feed
// @Description Server-sent events: volunteer.created, volunteer.updated, volunteer.deleted.
// @Tags Volunteers
// @Produce text/event-stream
// @Param access_token query string false "Token for clients that cannot send headers"
// @Success 200
// @Router /volunteers/stream [get]
func (h *VolunteerHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	sub, err := h.volunteers.Subscribe(ctx, academyID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer sub.Close()

	if h.gauge != nil {
		h.gauge.RealtimeSubscribed(1)
		defer h.gauge.RealtimeSubscribed(-1)
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"academy_id": academyID(c)})
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(evt.Type, evt)
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
		}
		c.Writer.Flush()
	}
}
