// Package env provides host facts used to name a running board.
package env

import (
	"os"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine ID so the board ID does not expose it.
const AppID = "mcal.go"

// idLen is the length the board ID is shortened to.
const idLen = 12

// MachineID retrieves the unique ID identifying the machine.
func MachineID() (string, error) {
	return machineid.ProtectedID(AppID)
}

// BoardID returns MCAL_ID if set, else a short ID derived from the machine,
// else the host name.
func BoardID() string {
	if id := os.Getenv("MCAL_ID"); id != "" {
		return id
	}
	id, err := MachineID()
	if err == nil && id != "" {
		return shorten(id)
	}
	glog.V(2).Infof("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil {
		return strings.ToLower(host)
	}
	return "board"
}

func shorten(id string) string {
	if len(id) > idLen {
		return id[:idLen]
	}
	return id
}
