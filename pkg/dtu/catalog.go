package dtu

// Command ids (§4.5). The device-side interface-description-language file
// set is the authority for these; CMD_HB_RES_DTO = 0x0030 is pinned by the
// heartbeat scenario (§8 S1), the rest are assigned distinct values in the
// same numbering space.
const (
	cmdRealDataResDTO     uint16 = 0x0104
	cmdRealResDTO         uint16 = 0x0106
	cmdGetConfig          uint16 = 0x0110
	cmdSetConfig          uint16 = 0x0111
	cmdNetworkInfoRes     uint16 = 0x0120
	cmdAppInfoDataResDTO  uint16 = 0x0130
	cmdAppGetHistPowerRes uint16 = 0x0140
	cmdCommandResDTO      uint16 = 0x0150
	cmdCloudCommandResDTO uint16 = 0x0151
	cmdHBResDTO           uint16 = 0x0030

	cmdGWInfoResDTO     uint16 = 0x0210
	cmdGWNetInfoRes     uint16 = 0x0211
	cmdESRegResDTO      uint16 = 0x0220
	cmdESDataDTO        uint16 = 0x0221
	cmdESUserSetResDTO  uint16 = 0x0222
)

// framing distinguishes the two on-wire layouts a command may use (§9:
// "tagged variants for framing keep the command catalog a pure data
// table").
type framing int

const (
	framingStandard framing = iota
	framingExtended
)

// commandDescriptor is the immutable per-operation record described in §3.
type commandDescriptor struct {
	id             uint16
	framing        framing
	encryptExempt  bool
	paged          bool
	defaultNumber  uint16 // extended frames only; §4.5's "number" parameter
}

// catalog holds every operation's descriptor (§4.5). It is a plain data
// table, not a class hierarchy, deliberately: adding an operation means
// adding a row, not a type.
var catalog = map[uint16]commandDescriptor{
	cmdRealDataResDTO:     {id: cmdRealDataResDTO, framing: framingStandard, encryptExempt: false, paged: false},
	cmdRealResDTO:         {id: cmdRealResDTO, framing: framingStandard, encryptExempt: false, paged: true},
	cmdGetConfig:          {id: cmdGetConfig, framing: framingStandard, encryptExempt: true, paged: false},
	cmdSetConfig:          {id: cmdSetConfig, framing: framingStandard, encryptExempt: true, paged: false},
	cmdNetworkInfoRes:     {id: cmdNetworkInfoRes, framing: framingStandard, encryptExempt: false, paged: false},
	cmdAppInfoDataResDTO:  {id: cmdAppInfoDataResDTO, framing: framingStandard, encryptExempt: true, paged: false},
	cmdAppGetHistPowerRes: {id: cmdAppGetHistPowerRes, framing: framingStandard, encryptExempt: false, paged: true},
	cmdCommandResDTO:      {id: cmdCommandResDTO, framing: framingStandard, encryptExempt: false, paged: false},
	cmdCloudCommandResDTO: {id: cmdCloudCommandResDTO, framing: framingStandard, encryptExempt: false, paged: false},
	cmdHBResDTO:           {id: cmdHBResDTO, framing: framingStandard, encryptExempt: false, paged: false},

	cmdGWInfoResDTO:    {id: cmdGWInfoResDTO, framing: framingExtended, encryptExempt: true, paged: false, defaultNumber: 255},
	cmdGWNetInfoRes:    {id: cmdGWNetInfoRes, framing: framingExtended, encryptExempt: true, paged: false, defaultNumber: 255},
	cmdESRegResDTO:     {id: cmdESRegResDTO, framing: framingExtended, encryptExempt: true, paged: false, defaultNumber: 255},
	cmdESDataDTO:       {id: cmdESDataDTO, framing: framingExtended, encryptExempt: true, paged: false, defaultNumber: 1},
	cmdESUserSetResDTO: {id: cmdESUserSetResDTO, framing: framingExtended, encryptExempt: true, paged: false, defaultNumber: 1},
}

// timezoneOffsetSeconds is the fixed +08:00 offset the protocol expects in
// every request's "offset" field, regardless of host timezone (§9).
const timezoneOffsetSeconds int32 = 28800

// defaultFirmwareURL is the hard-coded firmware image used by UpgradeFirmware
// when the caller doesn't supply one (§6).
const defaultFirmwareURL = "http://fwupdate.hoymiles.com/cfs/bin/2311/06/,1488725943932555264.bin"
