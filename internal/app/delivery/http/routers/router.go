package routers

import (
	"fmt"
	"net/http"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/app/delivery/http/controllers"
	"careflow-service/internal/app/delivery/http/middlewares"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
	middlewares *middlewares.Middlewares,
	programController *controllers.ProgramController,
	enrollmentController *controllers.EnrollmentController,
	wizardController *controllers.WizardController,
	visitController *controllers.VisitController,
	formController *controllers.FormController,
	locationController *controllers.LocationController,
	auditController *controllers.AuditController,
) {

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging(logger))

	// Rate limiting middleware using httprate
	rateLimiter := httprate.LimitByIP(internalConfig.App.MaxRequests, time.Second)
	router.Use(rateLimiter)

	router.Use(middlewares.ErrorHandler)

	endpointPrefix := fmt.Sprintf("/%s", internalConfig.App.EndpointPrefix)
	versionPrefix := fmt.Sprintf("/%s", internalConfig.App.Version)

	router.Route(endpointPrefix, func(r chi.Router) {
		r.Route(versionPrefix, func(r chi.Router) {
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				utils.BuildSuccessResponse(w, constvars.StatusOK, "ok", nil)
			})

			r.Route("/patients/{patient_id}", func(r chi.Router) {
				r.Route("/programs", func(r chi.Router) {
					attachProgramRoutes(r, middlewares, programController)
				})

				r.Route("/enrollments", func(r chi.Router) {
					attachEnrollmentRoutes(r, middlewares, enrollmentController)

					r.Route("/{enrollment_id}", func(r chi.Router) {
						attachVisitTypeRoutes(r, middlewares, visitController)
						attachFormRoutes(r, middlewares, formController)
					})
				})

				r.Route("/enrollment-wizard", func(r chi.Router) {
					attachWizardOpenRoutes(r, middlewares, wizardController)
				})

				r.Route("/visits", func(r chi.Router) {
					attachVisitRoutes(r, middlewares, visitController)
				})

				r.Route("/program-events", func(r chi.Router) {
					attachAuditRoutes(r, middlewares, auditController)
				})
			})

			r.Route("/enrollments/{enrollment_id}", func(r chi.Router) {
				attachDisenrollRoutes(r, middlewares, enrollmentController)
			})

			r.Route("/enrollment-wizard/{wizard_id}", func(r chi.Router) {
				attachWizardRoutes(r, middlewares, wizardController)
			})

			r.Route("/locations", func(r chi.Router) {
				attachLocationRoutes(r, middlewares, locationController)
			})
		})
	})
}
