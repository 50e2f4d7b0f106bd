package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics registers the Prometheus scrape endpoint on app and returns the
// request instrumentation middleware. Collectors are registered once per
// process; later calls reuse them.
func InitMetrics(app *fiber.App, serviceName, path string) fiber.Handler {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	prom.RegisterAt(app, path)
	return prom.Middleware
}
