package app

import (
	"github.com/vk/facetgo/facets/bus"
	"github.com/vk/facetgo/facets/httpclient"
	"github.com/vk/facetgo/facets/logger"
	"github.com/vk/facetgo/facets/queue"
	"github.com/vk/facetgo/internal/engine"
)

// coreProviders is the definitive list of all facet providers that are
// compiled into the facetgo binary.
var coreProviders = []engine.Provider{
	&logger.Module{},
	&queue.Module{},
	&bus.Module{},
	&httpclient.Module{},
}
