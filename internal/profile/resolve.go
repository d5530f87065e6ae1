package profile

import "github.com/matheus3301/nikki/internal/config"

const DefaultName = "default"

// Resolve picks the active profile: the --profile flag, then
// default_profile from the global config, then "default".
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	g, err := config.LoadGlobal(GlobalConfigPath())
	if err == nil && g.DefaultProfile != "" {
		return g.DefaultProfile
	}
	return DefaultName
}
