package api

import (
	"net/http"

	"github.com/JaimeStill/lyceum/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Projects.Handler().Routes(),
		domain.Tenants.Handler().Routes(),
		domain.Credentials.Handler().Routes(),
		domain.TrainingData.Handler().Routes(),
		domain.Training.Handler().Routes(),
	)
}
