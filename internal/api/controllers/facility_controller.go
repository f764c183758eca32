package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carefinder/internal/models/request_models"
	"carefinder/internal/models/response_models"
	"carefinder/internal/services"
	"carefinder/pkg/utils"
)

type FacilityController struct {
	finder   services.FacilityFinderInterface
	renderer *services.ReportRenderer
}

func NewFacilityController(finder services.FacilityFinderInterface, renderer *services.ReportRenderer) *FacilityController {
	return &FacilityController{
		finder:   finder,
		renderer: renderer,
	}
}

// GET /api/v1/facilities/nearby?radius=5000&max=10&ip=&format=text|json
func (f *FacilityController) FindNearby(c *gin.Context) {
	var query request_models.NearbyFacilitiesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	report, err := f.finder.FindNearby(c.Request.Context(), services.FindOptions{
		RadiusMeters: query.Radius,
		MaxResults:   query.Max,
		IP:           query.IP,
	})

	if query.Format == "json" {
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		utils.RespondSuccess(c, response_models.NearbyFacilities{
			Report: report,
			Text:   f.renderer.Render(report),
		}, "Facilities fetched successfully")
		return
	}

	if err != nil {
		c.Header("X-Error-Class", utils.ErrorClass(err))
		c.String(textErrorStatus(err), f.renderer.RenderError(err))
		return
	}
	c.String(http.StatusOK, f.renderer.Render(report))
}

func textErrorStatus(err error) int {
	switch utils.ErrorClass(err) {
	case "configuration":
		return http.StatusServiceUnavailable
	case "invalid_argument":
		return http.StatusBadRequest
	case "internal":
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
