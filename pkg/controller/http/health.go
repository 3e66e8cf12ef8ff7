package http

import (
	"net/http"

	"github.com/m-mizutani/tagpack/pkg/domain/interfaces"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/m-mizutani/tagpack/pkg/domain/types"
)

type healthHandler struct {
	packagerUC interfaces.PackagerUseCase
	repository string
}

func (h *healthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	status := &model.HealthStatus{
		Status:     "healthy",
		Service:    types.ServiceName,
		Version:    types.Version,
		Repository: h.repository,
	}
	if h.packagerUC != nil {
		status.Packaging = h.packagerUC.Running()
	}

	writeJSON(w, r, status)
}
