package internal

import (
	"os"
	"os/exec"
)

// UnbreakDocker makes test containers reachable from inside a dev
// container. The dev container and the spawned postgres container land on
// different docker networks, so joining the default bridge network gives
// them one in common. Outside docker the command fails harmlessly.
func UnbreakDocker() {
	if hostname, err := os.Hostname(); err == nil {
		exec.Command("docker", "network", "connect", "bridge", hostname).Run()
	}
}
