package instance

import (
	"os"
	"strings"
)

const fallbackID = "fuelstation-0"

// GetID identifies this process among worker replicas. FUELSTATION_INSTANCE_ID
// wins over HOSTNAME, which is what container runtimes set.
func GetID() string {
	for _, key := range []string{"FUELSTATION_INSTANCE_ID", "HOSTNAME"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	return fallbackID
}
