package http

import (
	"net/http"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// HTTPStatus maps a denial reason to the response status code
func HTTPStatus(code workflow.ReasonCode) int {
	switch code {
	case workflow.ReasonTargetStatusRequired, workflow.ReasonUnknownIntent, workflow.ReasonInvalidStatus:
		return http.StatusBadRequest
	case workflow.ReasonUnknownError:
		return http.StatusInternalServerError
	}

	switch code.Layer() {
	case workflow.LayerPermission:
		return http.StatusForbidden
	case workflow.LayerStatus:
		return http.StatusConflict
	case workflow.LayerBusinessRule, workflow.LayerPolicy:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
