package config

import "strings"

var envReplacer = strings.NewReplacer(".", "_")

// flagKey maps a flag name such as "paths-root" to the viper key
// "paths.root". Only the first dash separates section from field, so
// "server-http-port" becomes "server.http_port".
func flagKey(name string) string {
	section, field, ok := strings.Cut(name, "-")
	if !ok {
		return name
	}
	return section + "." + strings.ReplaceAll(field, "-", "_")
}
