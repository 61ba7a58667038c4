package orbipacket

import (
	"fmt"
	"strconv"
	"strings"
)

// DeviceID identifies a subsystem onboard the flight unit.
// It is a 5-bit code on the wire; codes without a named device are invalid.
type DeviceID uint8

// Assigned device ids.
const (
	System DeviceID = iota
	TimeSync
	GPS
	Camera
	Accelerometer
	Gyroscope
	Altimeter
	Magnetometer
	PressureSensor
	TemperatureSensor
	HumiditySensor
	RadiationSensor
	Mission1
	Mission2
	Mission3
	Mission4

	numDeviceIDs int = iota
)

// MaxDeviceID is the largest code representable in the control byte.
const MaxDeviceID = 0x1f

type deviceInfo struct {
	name    string
	display string
}

var devices = [numDeviceIDs]deviceInfo{
	System:            {"system", "System Device"},
	TimeSync:          {"timesync", "Time Sync Device"},
	GPS:               {"gps", "GPS Device"},
	Camera:            {"camera", "Camera Device"},
	Accelerometer:     {"accelerometer", "Accelerometer Device"},
	Gyroscope:         {"gyroscope", "Gyroscope Device"},
	Altimeter:         {"altimeter", "Altimeter Device"},
	Magnetometer:      {"magnetometer", "Magnetometer Device"},
	PressureSensor:    {"pressure", "Pressure Sensor Device"},
	TemperatureSensor: {"temperature", "Temperature Sensor Device"},
	HumiditySensor:    {"humidity", "Humidity Sensor Device"},
	RadiationSensor:   {"radiation", "Radiation Sensor Device"},
	Mission1:          {"mission1", "Mission Device"},
	Mission2:          {"mission2", "Mission Device"},
	Mission3:          {"mission3", "Mission Device"},
	Mission4:          {"mission4", "Mission Device"},
}

// DeviceIDFromByte validates a raw code. Every value either maps to
// an assigned device or returns an *InvalidIDError.
func DeviceIDFromByte(code uint8) (DeviceID, error) {
	if int(code) >= numDeviceIDs {
		return 0, &InvalidIDError{ID: code}
	}
	return DeviceID(code), nil
}

// ParseDeviceID accepts a short device name (as returned by Name)
// or a decimal code.
func ParseDeviceID(s string) (DeviceID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for n := range devices {
		if devices[n].name == s {
			return DeviceID(n), nil
		}
	}
	code, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown device %q", s)
	}
	return DeviceIDFromByte(uint8(code))
}

// DeviceIDs lists all assigned devices in code order.
func DeviceIDs() []DeviceID {
	ids := make([]DeviceID, numDeviceIDs)
	for n := range ids {
		ids[n] = DeviceID(n)
	}
	return ids
}

// IsValid indicates the id is assigned to a device.
func (id DeviceID) IsValid() bool {
	return int(id) < numDeviceIDs
}

// Name returns the short stable name, e.g. "gps".
func (id DeviceID) Name() string {
	if !id.IsValid() {
		return "device" + strconv.Itoa(int(id))
	}
	return devices[id].name
}

// String implements fmt.Stringer, e.g. "GPS Device (ID 2)".
func (id DeviceID) String() string {
	if !id.IsValid() {
		return fmt.Sprintf("Unknown Device (ID %d)", uint8(id))
	}
	return fmt.Sprintf("%s (ID %d)", devices[id].display, uint8(id))
}
