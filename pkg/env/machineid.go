package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
)

const appID = "orbipacket"

// StationID derives a stable station name from the machine id,
// falling back to the host name.
func StationID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil || len(id) < 8 {
		if host, err := os.Hostname(); err == nil && host != "" {
			return host
		}
		return "station"
	}
	return "gs-" + id[:8]
}
