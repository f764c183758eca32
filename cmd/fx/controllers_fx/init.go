package controllers_fx

import (
	"go.uber.org/fx"

	"carefinder/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewFacilityController),
	fx.Provide(controllers.NewLookupController))
