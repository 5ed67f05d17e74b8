package routers

import (
	"careflow-service/internal/app/delivery/http/controllers"
	"careflow-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachVisitTypeRoutes(router chi.Router, middlewares *middlewares.Middlewares, visitController *controllers.VisitController) {
	router.With(middlewares.Authenticate).Get("/visit-types", visitController.ListVisitTypes)
}

func attachVisitRoutes(router chi.Router, middlewares *middlewares.Middlewares, visitController *controllers.VisitController) {
	router.With(middlewares.Authenticate).Post("/", visitController.StartVisit)
}
