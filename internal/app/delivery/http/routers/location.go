package routers

import (
	"careflow-service/internal/app/delivery/http/controllers"
	"careflow-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachLocationRoutes(router chi.Router, middlewares *middlewares.Middlewares, locationController *controllers.LocationController) {
	router.With(middlewares.Authenticate).Get("/", locationController.ListLocations)
}
