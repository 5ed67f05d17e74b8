package routers

import (
	"careflow-service/internal/app/delivery/http/controllers"
	"careflow-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachWizardOpenRoutes(router chi.Router, middlewares *middlewares.Middlewares, wizardController *controllers.WizardController) {
	router.With(middlewares.Authenticate).Post("/", wizardController.Open)
}

func attachWizardRoutes(router chi.Router, middlewares *middlewares.Middlewares, wizardController *controllers.WizardController) {
	router.With(middlewares.Authenticate).Get("/", wizardController.Get)
	router.With(middlewares.Authenticate).Delete("/", wizardController.Close)
	router.With(middlewares.Authenticate).Post("/select", wizardController.Select)
	router.With(middlewares.Authenticate).Post("/details", wizardController.SubmitDetails)
	router.With(middlewares.Authenticate).Post("/commit", wizardController.Commit)
	router.With(middlewares.Authenticate).Post("/back", wizardController.Back)
	router.With(middlewares.Authenticate).Post("/start-over", wizardController.StartOver)
}
