package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/heroes/component"
)

// Summary renders the startup report: components (self-described through
// component.Describable), HTTP routes (component.RouteProvider) and live
// health from the registry.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a new bootstrap summary writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         os.Stdout,
	}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display prints the summary for every component in registry.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	if registry == nil {
		fmt.Fprintln(w)
		return
	}
	all := registry.All()
	if len(all) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	fmt.Fprintf(w, "\nComponents\n")
	var routes []component.Route
	for i, c := range all {
		desc := component.Description{Name: c.Name()}
		if d, ok := c.(component.Describable); ok {
			desc = d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
		}
		line := desc.Name
		if desc.Type != "" {
			line += " [" + desc.Type + "]"
		}
		if desc.Details != "" {
			line += ": " + desc.Details
		}
		if desc.Port > 0 {
			line += fmt.Sprintf(" (:%d)", desc.Port)
		}
		fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(all)), line)

		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s\n", treePrefix(i, len(routes)), r.Method, r.Path)
		}
	}

	health := registry.HealthAll(ctx)
	fmt.Fprintf(w, "\nHealth\n")
	healthy := 0
	for i, h := range health {
		msg := ""
		if h.Message != "" {
			msg = " (" + h.Message + ")"
		}
		if h.Status == component.StatusHealthy {
			healthy++
		}
		fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(health)), healthMark(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
	}
	fmt.Fprintf(w, "\n%d/%d components healthy\n\n", healthy, len(health))
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthMark(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✓"
	case component.StatusDegraded:
		return "!"
	case component.StatusUnhealthy:
		return "✗"
	default:
		return "?"
	}
}
