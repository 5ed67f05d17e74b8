package routers

import (
	"careflow-service/internal/app/delivery/http/controllers"
	"careflow-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachFormRoutes(router chi.Router, middlewares *middlewares.Middlewares, formController *controllers.FormController) {
	router.With(middlewares.Authenticate).Get("/forms", formController.ListAvailableForms)
}
