package config

import (
	"os"
	"path/filepath"
)

// Resolver picks the config and .env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles are the files LoadConfig will read. Empty means none.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles keeps explicit paths from opts and searches the standard
// locations for the rest.
func (r *Resolver) ResolveFiles(service string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(configCandidates(service))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(envCandidates(service))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// configCandidates starts next to the service's main package and ends in
// the user config directory.
func configCandidates(service string) []string {
	paths := []string{
		"./cmd/" + service + "/config.yml",
		"../cmd/" + service + "/config.yml",
		"../../cmd/" + service + "/config.yml",
		"./config/config.yml",
		"./config.yml",
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, service, "config.yml"))
	}
	return paths
}

// envCandidates prefers .env.<service> anywhere over a plain .env.
func envCandidates(service string) []string {
	var paths []string
	for _, name := range []string{".env." + service, ".env"} {
		paths = append(paths, "./cmd/"+service+"/"+name, "./config/"+name, "./"+name, "../"+name)
	}
	return paths
}
