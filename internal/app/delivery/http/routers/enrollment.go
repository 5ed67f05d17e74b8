package routers

import (
	"careflow-service/internal/app/delivery/http/controllers"
	"careflow-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachEnrollmentRoutes(router chi.Router, middlewares *middlewares.Middlewares, enrollmentController *controllers.EnrollmentController) {
	router.With(middlewares.Authenticate).Get("/", enrollmentController.ListEnrollments)
	router.With(middlewares.Authenticate).Post("/", enrollmentController.Enroll)
}

func attachDisenrollRoutes(router chi.Router, middlewares *middlewares.Middlewares, enrollmentController *controllers.EnrollmentController) {
	router.With(middlewares.Authenticate).Post("/disenroll", enrollmentController.Disenroll)
}
