package toshiba

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/joshp123/acwatch/internal/units"
)

var ErrStateData = errors.New("toshiba: malformed ACStateData")

// minStateDataLen covers every field offset once the two padding nibbles are inserted.
const minStateDataLen = 30

type PowerState uint8

const (
	PowerUnknown PowerState = iota
	PowerOn
	PowerOff
)

func (p PowerState) String() string {
	switch p {
	case PowerOn:
		return "ON"
	case PowerOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

type Mode uint8

const (
	ModeUnknown Mode = iota
	ModeAuto
	ModeCool
	ModeHeat
	ModeDry
	ModeFan
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "AUTO"
	case ModeCool:
		return "COOL"
	case ModeHeat:
		return "HEAT"
	case ModeDry:
		return "DRY"
	case ModeFan:
		return "FAN"
	default:
		return "UNKNOWN"
	}
}

type FanMode uint8

const (
	FanUnknown FanMode = iota
	FanAuto
	FanQuiet
	FanLow
	FanMediumLow
	FanMedium
	FanMediumHigh
	FanHigh
	FanNone
)

func (f FanMode) String() string {
	switch f {
	case FanAuto:
		return "AUTO"
	case FanQuiet:
		return "QUIET"
	case FanLow:
		return "LOW"
	case FanMediumLow:
		return "MEDIUM_LOW"
	case FanMedium:
		return "MEDIUM"
	case FanMediumHigh:
		return "MEDIUM_HIGH"
	case FanHigh:
		return "HIGH"
	case FanNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

var (
	powerCodes = map[byte]PowerState{0x30: PowerOn, 0x31: PowerOff}
	modeCodes  = map[byte]Mode{0x41: ModeAuto, 0x42: ModeCool, 0x43: ModeHeat, 0x44: ModeDry, 0x45: ModeFan}
	fanCodes   = map[byte]FanMode{
		0x41: FanAuto,
		0x31: FanQuiet,
		0x32: FanLow,
		0x33: FanMediumLow,
		0x34: FanMedium,
		0x35: FanMediumHigh,
		0x36: FanHigh,
		0x00: FanNone,
	}
)

// StateData is the decoded form of a unit's packed ACStateData hex string.
type StateData struct {
	PowerStatus       PowerState
	Mode              Mode
	TargetTemperature uint8
	FanMode           FanMode
	SwingMode         uint8
	PowerSelection    uint8
	MeritA            uint8
	MeritB            uint8
	AirPureIon        uint8
	IndoorTemp        uint8
	OutdoorTemp       uint8
	SelfCleaning      uint8
}

// ParseStateData decodes an ACStateData string. The cloud packs the two
// merit nibbles into one byte, so a zero nibble is inserted before each
// before reading fixed two-character fields.
func ParseStateData(raw string) (StateData, error) {
	if len(raw) < minStateDataLen {
		return StateData{}, fmt.Errorf("%w: %d chars, want at least %d", ErrStateData, len(raw), minStateDataLen)
	}
	padded := raw[:12] + "0" + raw[12:13] + "0" + raw[13:]

	var firstErr error
	field := func(offset int) byte {
		v, err := strconv.ParseUint(padded[offset:offset+2], 16, 8)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: offset %d: %q", ErrStateData, offset, padded[offset:offset+2])
		}
		return byte(v)
	}

	state := StateData{
		PowerStatus:       powerCodes[field(0)],
		Mode:              modeCodes[field(2)],
		TargetTemperature: field(4),
		FanMode:           fanCodes[field(6)],
		SwingMode:         field(8),
		PowerSelection:    field(10),
		MeritA:            field(12),
		MeritB:            field(14),
		AirPureIon:        field(16),
		IndoorTemp:        field(18),
		OutdoorTemp:       field(20),
		SelfCleaning:      field(30),
	}
	if firstErr != nil {
		return StateData{}, firstErr
	}
	return state, nil
}

// Attributes returns the state in canonical display order.
func (s StateData) Attributes() units.Attributes {
	return units.NewAttributes(
		units.Attribute{Key: "power_status", Value: units.String(s.PowerStatus.String())},
		units.Attribute{Key: "mode", Value: units.String(s.Mode.String())},
		units.Attribute{Key: "target_temperature", Value: units.Number(float64(s.TargetTemperature))},
		units.Attribute{Key: "fan_mode", Value: units.String(s.FanMode.String())},
		units.Attribute{Key: "swing_mode", Value: units.Number(float64(s.SwingMode))},
		units.Attribute{Key: "power_selection", Value: units.Number(float64(s.PowerSelection))},
		units.Attribute{Key: "merit_a", Value: units.Number(float64(s.MeritA))},
		units.Attribute{Key: "merit_b", Value: units.Number(float64(s.MeritB))},
		units.Attribute{Key: "air_pure_ion", Value: units.Number(float64(s.AirPureIon))},
		units.Attribute{Key: "indoor_temp", Value: units.Number(float64(s.IndoorTemp))},
		units.Attribute{Key: "outdoor_temp", Value: units.Number(float64(s.OutdoorTemp))},
		units.Attribute{Key: "self_cleaning", Value: units.Number(float64(s.SelfCleaning))},
	)
}
