package controllers

import (
	"github.com/gin-gonic/gin"
	"net/http"

	"carefinder/internal/models/db_models"
	"carefinder/internal/models/request_models"
	"carefinder/internal/models/response_models"
	"carefinder/internal/services"
	"carefinder/pkg/utils"
)

type LookupController struct {
	lookupService services.LookupServiceInterface
}

func NewLookupController(lookupService services.LookupServiceInterface) *LookupController {
	return &LookupController{lookupService: lookupService}
}

func (l *LookupController) ListLookups(c *gin.Context) {
	query := request_models.ListLookupsQuery{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page parameters")
		return
	}

	lookups, err := l.lookupService.ListLookups(c.Request.Context(), query.Page, query.PageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	resp := make([]response_models.Lookup, 0, len(lookups))
	for _, lookup := range lookups {
		resp = append(resp, toLookupResponse(lookup))
	}
	utils.RespondSuccess(c, resp, "Lookups fetched successfully")
}

func (l *LookupController) GetLookup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.RespondError(c, http.StatusBadRequest, "Lookup ID is required")
		return
	}

	lookup, err := l.lookupService.GetLookup(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, toLookupResponse(*lookup), "Lookup fetched successfully")
}

func toLookupResponse(l db_models.LookupLog) response_models.Lookup {
	return response_models.Lookup{
		ID:              l.ID.String(),
		CreatedAt:       l.CreatedAt,
		RadiusMeters:    l.RadiusMeters,
		MaxResults:      l.MaxResults,
		LocationLabel:   l.LocationLabel,
		FacilityCount:   l.FacilityCount,
		IncompleteCount: l.IncompleteCount,
		Outcome:         l.Outcome,
		ErrorClass:      l.ErrorClass,
		DurationMs:      l.DurationMs,
	}
}
