package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckConfigCompatibility checks whether an export config written for
// configVersion can be run by a tool at toolVersion.
//
// Compatibility Rules:
//   - An empty config version is accepted (the file predates versioning)
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - Minor version of the config must not be newer than the tool's
//
// Examples:
//   - Tool 1.2.0, Config 1.2.0 -> OK
//   - Tool 1.3.0, Config 1.2.0 -> OK (older config)
//   - Tool 1.2.0, Config 1.3.0 -> ERROR (config uses newer fields)
//   - Tool 2.0.0, Config 1.2.0 -> ERROR (major differs)
func CheckConfigCompatibility(toolVersion, configVersion string) error {
	toolVersion = strings.TrimPrefix(strings.TrimSpace(toolVersion), "v")
	configVersion = strings.TrimPrefix(strings.TrimSpace(configVersion), "v")

	if configVersion == "" {
		return nil
	}

	if toolVersion == "main" || configVersion == "main" {
		return nil
	}

	toolSemver, err := semver.NewVersion(toolVersion)
	if err != nil {
		return fmt.Errorf("invalid tool version '%s': %w", toolVersion, err)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return fmt.Errorf("invalid config version '%s': %w", configVersion, err)
	}

	if toolSemver.Major() != configSemver.Major() {
		return fmt.Errorf("major version mismatch: tool is %d.x.x but config requires %d.x.x",
			toolSemver.Major(), configSemver.Major())
	}

	if configSemver.Minor() > toolSemver.Minor() {
		return fmt.Errorf("config requires %d.%d.x but tool is %d.%d.x",
			configSemver.Major(), configSemver.Minor(),
			toolSemver.Major(), toolSemver.Minor())
	}

	return nil
}
