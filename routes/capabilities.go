package routes

import (
	"net/http"
	"sync"

	"github.com/pocketbase/pocketbase/core"

	"backend/ai"
	"backend/exports"
	"backend/geo"
)

// Optional capabilities are probed once at startup; absent ones degrade to
// text-only behavior instead of failing requests.
type capabilitySet struct {
	Document bool `json:"document"`
	Calendar bool `json:"calendar"`
	Map      bool `json:"map"`
}

var (
	probeOnce    sync.Once
	capabilities capabilitySet
)

func probeCapabilities() capabilitySet {
	probeOnce.Do(func() {
		capabilities = capabilitySet{
			Document: exports.DocumentAvailable(),
			Calendar: true,
			Map:      geo.MapAvailable(),
		}
	})
	return capabilities
}

func (api *PlannerAPI) capabilities(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, map[string]any{
		"capabilities": probeCapabilities(),
		"credentials": map[string]bool{
			"model":  ai.ModelToken() != "",
			"search": ai.SearchKey() != "",
		},
	})
}
