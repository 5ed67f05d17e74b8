package routers

import (
	"careflow-service/internal/app/delivery/http/controllers"
	"careflow-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachAuditRoutes(router chi.Router, middlewares *middlewares.Middlewares, auditController *controllers.AuditController) {
	router.With(middlewares.Authenticate).Get("/", auditController.ListPatientEvents)
}
