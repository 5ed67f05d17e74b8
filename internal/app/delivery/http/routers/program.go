package routers

import (
	"careflow-service/internal/app/delivery/http/controllers"
	"careflow-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachProgramRoutes(router chi.Router, middlewares *middlewares.Middlewares, programController *controllers.ProgramController) {
	router.With(middlewares.Authenticate).Get("/", programController.ListProgramsForPatient)
}
