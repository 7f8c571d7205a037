package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/heroes/version"
)

var started = time.Now()

type buildReport struct {
	Service string       `json:"service"`
	Version string       `json:"version"`
	Build   version.Info `json:"build"`
	Uptime  string       `json:"uptime"`
	Started string       `json:"started"`
}

// Info reports the build of the running binary and how long it has been up.
func Info(serviceName string) gin.HandlerFunc {
	build := version.Get()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, buildReport{
			Service: serviceName,
			Version: build.Short(),
			Build:   build,
			Uptime:  time.Since(started).Truncate(time.Second).String(),
			Started: started.UTC().Format(time.RFC3339),
		})
	}
}
