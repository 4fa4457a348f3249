package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/database"
	"github.com/mrlokans/weengz-air/internal/entities"
)

type AuditController struct {
	events AuditReader
	log    logrus.FieldLogger
}

func NewAuditController(events AuditReader, log logrus.FieldLogger) *AuditController {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuditController{events: events, log: log}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?type=import|export|purge&status=success|partial|failed&origin=cli
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, limit, offset := parsePagination(c, 25, 100)
	filter := entities.AuditFilter{
		Type:   entities.AuditEventType(c.Query("type")),
		Status: entities.AuditStatus(c.Query("status")),
		Origin: c.Query("origin"),
	}

	events, total, err := ac.events.GetEvents(filter, limit, offset)
	if err != nil {
		respondInternalError(c, ac.log, err, "load audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    page < totalPages,
		TotalPages: totalPages,
	})
}

// GetAuditEvent handles GET /api/audit/:id
func (ac *AuditController) GetAuditEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	event, err := ac.events.GetEventByID(id)
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, "audit event")
		return
	}
	if err != nil {
		respondInternalError(c, ac.log, err, "load audit event")
		return
	}
	c.JSON(http.StatusOK, event)
}
