package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mes-platform/reflow-service/internal/application"
	"github.com/mes-platform/reflow-service/internal/domain"
	"github.com/mes-platform/reflow-service/pkg/logging"
	"github.com/mes-platform/reflow-service/pkg/middleware"
)

// ReflowHandler exposes the scheduling engine over HTTP.
type ReflowHandler struct {
	service *application.ReflowService
	logger  *logging.Logger
}

// NewReflowHandler creates a new ReflowHandler.
func NewReflowHandler(service *application.ReflowService, logger *logging.Logger) *ReflowHandler {
	return &ReflowHandler{service: service, logger: logger}
}

// Reflow handles POST /api/v1/reflow. A well-formed batch that cannot be
// scheduled returns 422 with the full violation list; malformed input
// returns 400.
func (h *ReflowHandler) Reflow(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req application.ReflowRequest
	if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	input, appErr := application.ToReflowInput(&req)
	if appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	result, err := h.service.Reflow(c.Request.Context(), input)
	if err != nil {
		if agg, ok := domain.AsAggregate(err); ok {
			c.JSON(http.StatusUnprocessableEntity, application.ToViolationsResponse(agg))
			return
		}
		responder.RespondInternalError(err)
		return
	}

	c.JSON(http.StatusOK, application.ToReflowResponse(result))
}
