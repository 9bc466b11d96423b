package schema

// Each type below corresponds to one request or response payload schema
// named in the command catalog (spec.md §4.5). Field numbers are assigned
// per message and only cover the fields the transport populates (on
// requests) or reads (on responses); the full device schema carries many
// more fields that are out of scope for this client.

// ---- Real data (v1) ----

// RealDataRequest is the payload the client sends for CMD_REAL_DATA_RES_DTO.
type RealDataRequest struct {
	TimeYMDHMS string
	Time       int64
	Offset     int32
	ErrorCode  int32
}

func (m *RealDataRequest) Marshal() ([]byte, error) {
	var w Writer
	w.String(1, m.TimeYMDHMS)
	w.Varint(2, m.Time)
	w.Varint(3, int64(m.Offset))
	w.Varint(4, int64(m.ErrorCode))
	return w.Bytes(), nil
}

// RealDataResponse is the device's reply. Its telemetry fields are out of
// scope; only enough structure is kept to detect a non-empty reply.
type RealDataResponse struct {
	Raw []byte
}

func UnmarshalRealDataResponse(data []byte) (*RealDataResponse, error) {
	return &RealDataResponse{Raw: data}, nil
}

// ---- Real data (new), paginated ----

type RealDataNewRequest struct {
	TimeYMDHMS string
	Offset     int32
	Time       int64
	Cp         int32
}

func (m *RealDataNewRequest) Marshal() ([]byte, error) {
	var w Writer
	w.String(1, m.TimeYMDHMS)
	w.Varint(2, int64(m.Offset))
	w.Varint(3, m.Time)
	w.Varint(4, int64(m.Cp))
	return w.Bytes(), nil
}

// RealDataNewResponse carries the pagination fields plus the repeated
// per-inverter telemetry blob the multi-page assembler concatenates.
type RealDataNewResponse struct {
	Ap      int32
	Cp      int32
	SgsData [][]byte
}

func UnmarshalRealDataNewResponse(data []byte) (*RealDataNewResponse, error) {
	m := &RealDataNewResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		switch num {
		case 1:
			m.Ap = int32(varint)
		case 2:
			m.Cp = int32(varint)
		case 3:
			entry := make([]byte, len(raw))
			copy(entry, raw)
			m.SgsData = append(m.SgsData, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// MergeRealDataNewResponse implements spec.md §4.4's field-wise merge:
// repeated fields concatenate, scalars last-write-wins.
func MergeRealDataNewResponse(acc, page *RealDataNewResponse) *RealDataNewResponse {
	if acc == nil {
		acc = &RealDataNewResponse{}
	}
	acc.Ap = page.Ap
	acc.Cp = page.Cp
	acc.SgsData = append(acc.SgsData, page.SgsData...)
	return acc
}

// ---- Config read/write ----

type GetConfigRequest struct {
	Offset int32
	Time   int64
}

func (m *GetConfigRequest) Marshal() ([]byte, error) {
	var w Writer
	w.Varint(1, int64(m.Offset))
	w.Varint(2, m.Time)
	return w.Bytes(), nil
}

// ConfigFields holds the device configuration fields that a config write
// must echo back verbatim when only a handful of them are being changed
// (see original_source/hoymiles_wifi/utils.py's initialize_set_config).
type ConfigFields struct {
	LockPassword      uint32
	LockTime          uint32
	LimitPowerMyPower uint32
	ZeroExport433Addr uint32
	ZeroExportEnable  uint32
	NetmodeSelect     uint32
	ChannelSelect     uint32
	ServerSendTime    uint32
	ServerPort        uint32
	ApnSet            uint32
	MeterKind         uint32
	MeterInterface    uint32
	WifiSSID          []byte
	WifiPassword      []byte
	ServerDomainName  []byte
	InvType           uint32
	DtuSN             uint64
	AccessModel       uint32
	Mac               [6]uint32
	DhcpSwitch        uint32
	IPAddr            [4]uint32
	SubnetMask        [4]uint32
	DefaultGateway    [4]uint32
	ApnName           []byte
	ApnPassword       []byte
	Sub1gSweepSwitch  uint32
	Sub1gWorkChannel  uint32
	CableDNS          [4]uint32
	DtuApSSID         []byte
	DtuApPass         []byte
}

// field numbers for ConfigFields, shared between GetConfigResponse and
// SetConfigRequest so a response can be copied field-for-field into a
// write request.
const (
	fLockPassword = iota + 1
	fLockTime
	fLimitPowerMyPower
	fZeroExport433Addr
	fZeroExportEnable
	fNetmodeSelect
	fChannelSelect
	fServerSendTime
	fServerPort
	fApnSet
	fMeterKind
	fMeterInterface
	fWifiSSID
	fWifiPassword
	fServerDomainName
	fInvType
	fDtuSN
	fAccessModel
	fMac0
	fMac1
	fMac2
	fMac3
	fMac4
	fMac5
	fDhcpSwitch
	fIPAddr0
	fIPAddr1
	fIPAddr2
	fIPAddr3
	fSubnetMask0
	fSubnetMask1
	fSubnetMask2
	fSubnetMask3
	fDefaultGateway0
	fDefaultGateway1
	fDefaultGateway2
	fDefaultGateway3
	fApnName
	fApnPassword
	fSub1gSweepSwitch
	fSub1gWorkChannel
	fCableDNS0
	fCableDNS1
	fCableDNS2
	fCableDNS3
	fDtuApSSID
	fDtuApPass
	// fields that only appear on the write side
	fTime
	fOffset
	fAppPage
)

func (c *ConfigFields) marshalInto(w *Writer) {
	w.Uvarint(fLockPassword, uint64(c.LockPassword))
	w.Uvarint(fLockTime, uint64(c.LockTime))
	w.Uvarint(fLimitPowerMyPower, uint64(c.LimitPowerMyPower))
	w.Uvarint(fZeroExport433Addr, uint64(c.ZeroExport433Addr))
	w.Uvarint(fZeroExportEnable, uint64(c.ZeroExportEnable))
	w.Uvarint(fNetmodeSelect, uint64(c.NetmodeSelect))
	w.Uvarint(fChannelSelect, uint64(c.ChannelSelect))
	w.Uvarint(fServerSendTime, uint64(c.ServerSendTime))
	w.Uvarint(fServerPort, uint64(c.ServerPort))
	w.Uvarint(fApnSet, uint64(c.ApnSet))
	w.Uvarint(fMeterKind, uint64(c.MeterKind))
	w.Uvarint(fMeterInterface, uint64(c.MeterInterface))
	w.ByteField(fWifiSSID, c.WifiSSID)
	w.ByteField(fWifiPassword, c.WifiPassword)
	w.ByteField(fServerDomainName, c.ServerDomainName)
	w.Uvarint(fInvType, uint64(c.InvType))
	w.Fixed64(fDtuSN, c.DtuSN)
	w.Uvarint(fAccessModel, uint64(c.AccessModel))
	w.Uvarint(fMac0, uint64(c.Mac[0]))
	w.Uvarint(fMac1, uint64(c.Mac[1]))
	w.Uvarint(fMac2, uint64(c.Mac[2]))
	w.Uvarint(fMac3, uint64(c.Mac[3]))
	w.Uvarint(fMac4, uint64(c.Mac[4]))
	w.Uvarint(fMac5, uint64(c.Mac[5]))
	w.Uvarint(fDhcpSwitch, uint64(c.DhcpSwitch))
	w.Uvarint(fIPAddr0, uint64(c.IPAddr[0]))
	w.Uvarint(fIPAddr1, uint64(c.IPAddr[1]))
	w.Uvarint(fIPAddr2, uint64(c.IPAddr[2]))
	w.Uvarint(fIPAddr3, uint64(c.IPAddr[3]))
	w.Uvarint(fSubnetMask0, uint64(c.SubnetMask[0]))
	w.Uvarint(fSubnetMask1, uint64(c.SubnetMask[1]))
	w.Uvarint(fSubnetMask2, uint64(c.SubnetMask[2]))
	w.Uvarint(fSubnetMask3, uint64(c.SubnetMask[3]))
	w.Uvarint(fDefaultGateway0, uint64(c.DefaultGateway[0]))
	w.Uvarint(fDefaultGateway1, uint64(c.DefaultGateway[1]))
	w.Uvarint(fDefaultGateway2, uint64(c.DefaultGateway[2]))
	w.Uvarint(fDefaultGateway3, uint64(c.DefaultGateway[3]))
	w.ByteField(fApnName, c.ApnName)
	w.ByteField(fApnPassword, c.ApnPassword)
	w.Uvarint(fSub1gSweepSwitch, uint64(c.Sub1gSweepSwitch))
	w.Uvarint(fSub1gWorkChannel, uint64(c.Sub1gWorkChannel))
	w.Uvarint(fCableDNS0, uint64(c.CableDNS[0]))
	w.Uvarint(fCableDNS1, uint64(c.CableDNS[1]))
	w.Uvarint(fCableDNS2, uint64(c.CableDNS[2]))
	w.Uvarint(fCableDNS3, uint64(c.CableDNS[3]))
	w.ByteField(fDtuApSSID, c.DtuApSSID)
	w.ByteField(fDtuApPass, c.DtuApPass)
}

func (c *ConfigFields) unmarshalField(num int, wireType uint8, varint uint64, raw []byte) {
	switch num {
	case fLockPassword:
		c.LockPassword = uint32(varint)
	case fLockTime:
		c.LockTime = uint32(varint)
	case fLimitPowerMyPower:
		c.LimitPowerMyPower = uint32(varint)
	case fZeroExport433Addr:
		c.ZeroExport433Addr = uint32(varint)
	case fZeroExportEnable:
		c.ZeroExportEnable = uint32(varint)
	case fNetmodeSelect:
		c.NetmodeSelect = uint32(varint)
	case fChannelSelect:
		c.ChannelSelect = uint32(varint)
	case fServerSendTime:
		c.ServerSendTime = uint32(varint)
	case fServerPort:
		c.ServerPort = uint32(varint)
	case fApnSet:
		c.ApnSet = uint32(varint)
	case fMeterKind:
		c.MeterKind = uint32(varint)
	case fMeterInterface:
		c.MeterInterface = uint32(varint)
	case fWifiSSID:
		c.WifiSSID = append([]byte(nil), raw...)
	case fWifiPassword:
		c.WifiPassword = append([]byte(nil), raw...)
	case fServerDomainName:
		c.ServerDomainName = append([]byte(nil), raw...)
	case fInvType:
		c.InvType = uint32(varint)
	case fDtuSN:
		c.DtuSN = fixed64(raw)
	case fAccessModel:
		c.AccessModel = uint32(varint)
	case fMac0:
		c.Mac[0] = uint32(varint)
	case fMac1:
		c.Mac[1] = uint32(varint)
	case fMac2:
		c.Mac[2] = uint32(varint)
	case fMac3:
		c.Mac[3] = uint32(varint)
	case fMac4:
		c.Mac[4] = uint32(varint)
	case fMac5:
		c.Mac[5] = uint32(varint)
	case fDhcpSwitch:
		c.DhcpSwitch = uint32(varint)
	case fIPAddr0:
		c.IPAddr[0] = uint32(varint)
	case fIPAddr1:
		c.IPAddr[1] = uint32(varint)
	case fIPAddr2:
		c.IPAddr[2] = uint32(varint)
	case fIPAddr3:
		c.IPAddr[3] = uint32(varint)
	case fSubnetMask0:
		c.SubnetMask[0] = uint32(varint)
	case fSubnetMask1:
		c.SubnetMask[1] = uint32(varint)
	case fSubnetMask2:
		c.SubnetMask[2] = uint32(varint)
	case fSubnetMask3:
		c.SubnetMask[3] = uint32(varint)
	case fDefaultGateway0:
		c.DefaultGateway[0] = uint32(varint)
	case fDefaultGateway1:
		c.DefaultGateway[1] = uint32(varint)
	case fDefaultGateway2:
		c.DefaultGateway[2] = uint32(varint)
	case fDefaultGateway3:
		c.DefaultGateway[3] = uint32(varint)
	case fApnName:
		c.ApnName = append([]byte(nil), raw...)
	case fApnPassword:
		c.ApnPassword = append([]byte(nil), raw...)
	case fSub1gSweepSwitch:
		c.Sub1gSweepSwitch = uint32(varint)
	case fSub1gWorkChannel:
		c.Sub1gWorkChannel = uint32(varint)
	case fCableDNS0:
		c.CableDNS[0] = uint32(varint)
	case fCableDNS1:
		c.CableDNS[1] = uint32(varint)
	case fCableDNS2:
		c.CableDNS[2] = uint32(varint)
	case fCableDNS3:
		c.CableDNS[3] = uint32(varint)
	case fDtuApSSID:
		c.DtuApSSID = append([]byte(nil), raw...)
	case fDtuApPass:
		c.DtuApPass = append([]byte(nil), raw...)
	}
}

// GetConfigResponse is the device's current configuration.
type GetConfigResponse struct {
	ConfigFields
}

func UnmarshalGetConfigResponse(data []byte) (*GetConfigResponse, error) {
	m := &GetConfigResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		m.unmarshalField(num, wireType, varint, raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SetConfigRequest is the full configuration the client writes back,
// initialized by copying a GetConfigResponse and overriding only the
// fields the caller intends to change.
type SetConfigRequest struct {
	ConfigFields
	Time     int64
	Offset   int32
	AppPage  int32
	Netmode  uint32 // not encoded by Marshal; the network mode sent is ConfigFields.NetmodeSelect
}

// NewSetConfigRequest copies every field from a GetConfigResponse, the way
// initialize_set_config does, so that a partial write does not clobber
// unrelated device state.
func NewSetConfigRequest(current *GetConfigResponse) *SetConfigRequest {
	return &SetConfigRequest{ConfigFields: current.ConfigFields}
}

func (m *SetConfigRequest) Marshal() ([]byte, error) {
	var w Writer
	m.ConfigFields.marshalInto(&w)
	w.Varint(fTime, m.Time)
	w.Varint(fOffset, int64(m.Offset))
	w.Varint(fAppPage, int64(m.AppPage))
	return w.Bytes(), nil
}

// ---- Network info ----

type NetworkInfoRequest struct {
	Offset int32
	Time   int64
}

func (m *NetworkInfoRequest) Marshal() ([]byte, error) {
	var w Writer
	w.Varint(1, int64(m.Offset))
	w.Varint(2, m.Time)
	return w.Bytes(), nil
}

type NetworkInfoResponse struct {
	Raw []byte
}

func UnmarshalNetworkInfoResponse(data []byte) (*NetworkInfoResponse, error) {
	return &NetworkInfoResponse{Raw: data}, nil
}

// ---- App information data ----

type AppInfoDataRequest struct {
	TimeYMDHMS string
	Offset     int32
	Time       int64
}

func (m *AppInfoDataRequest) Marshal() ([]byte, error) {
	var w Writer
	w.String(1, m.TimeYMDHMS)
	w.Varint(2, int64(m.Offset))
	w.Varint(3, m.Time)
	return w.Bytes(), nil
}

// IsEncryptedBitIndex is the bit of DTUInfo.Dfs that advertises encryption
// support (see Glossary: "EncRand").
const IsEncryptedBitIndex = 4

// DTUInfo carries the handful of DTU-level fields the transport reads.
type DTUInfo struct {
	DtuHwVersion uint32
	DtuSwVersion uint32
	Dfs          uint32
}

// IsEncrypted reports whether bit IsEncryptedBitIndex of Dfs is set.
func (d DTUInfo) IsEncrypted() bool {
	return d.Dfs&(1<<IsEncryptedBitIndex) != 0
}

// PVInfo carries the per-inverter fields the transport reads.
type PVInfo struct {
	SerialNumber uint64
	PvHwVersion  uint32
	PvSwVersion  uint32
}

type AppInfoDataResponse struct {
	DtuInfo DTUInfo
	PvInfo  []PVInfo
}

func UnmarshalAppInfoDataResponse(data []byte) (*AppInfoDataResponse, error) {
	m := &AppInfoDataResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		switch num {
		case 1:
			m.DtuInfo.DtuHwVersion = uint32(varint)
		case 2:
			m.DtuInfo.DtuSwVersion = uint32(varint)
		case 3:
			m.DtuInfo.Dfs = uint32(varint)
		case 4:
			pv := PVInfo{}
			pr := NewReader(raw)
			if err := pr.Each(func(n int, wt uint8, v uint64, r []byte) error {
				switch n {
				case 1:
					pv.SerialNumber = fixed64(r)
				case 2:
					pv.PvHwVersion = uint32(v)
				case 3:
					pv.PvSwVersion = uint32(v)
				}
				return nil
			}); err != nil {
				return err
			}
			m.PvInfo = append(m.PvInfo, pv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ---- Historical power, paginated ----

type AppGetHistPowerRequest struct {
	ControlPoint  int32
	Offset        int32
	RequestedTime int64
	RequestedDay  int32
}

func (m *AppGetHistPowerRequest) Marshal() ([]byte, error) {
	var w Writer
	w.Varint(1, int64(m.ControlPoint))
	w.Varint(2, int64(m.Offset))
	w.Varint(3, m.RequestedTime)
	w.Varint(4, int64(m.RequestedDay))
	return w.Bytes(), nil
}

type AppGetHistPowerResponse struct {
	Ap         int32
	Cp         int32
	PowerDatapoints []int32
}

func UnmarshalAppGetHistPowerResponse(data []byte) (*AppGetHistPowerResponse, error) {
	m := &AppGetHistPowerResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		switch num {
		case 1:
			m.Ap = int32(varint)
		case 2:
			m.Cp = int32(varint)
		case 3:
			m.PowerDatapoints = append(m.PowerDatapoints, int32(varint))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// MergeAppGetHistPowerResponse implements spec.md §4.4's merge for the
// historical-power pagination.
func MergeAppGetHistPowerResponse(acc, page *AppGetHistPowerResponse) *AppGetHistPowerResponse {
	if acc == nil {
		acc = &AppGetHistPowerResponse{}
	}
	acc.Ap = page.Ap
	acc.Cp = page.Cp
	acc.PowerDatapoints = append(acc.PowerDatapoints, page.PowerDatapoints...)
	return acc
}

// ---- Generic/cloud command ----

// CommandRequest is shared by CMD_COMMAND_RES_DTO and
// CMD_CLOUD_COMMAND_RES_DTO, matching the original implementation's reuse
// of a single CommandPB schema for both.
type CommandRequest struct {
	Time       int64
	Action     int32
	PackageNub int32
	Tid        int64
	Data       []byte
	DevKind    int32
	MiToSn     []uint64
}

func (m *CommandRequest) Marshal() ([]byte, error) {
	var w Writer
	w.Varint(1, m.Time)
	w.Varint(2, int64(m.Action))
	w.Varint(3, int64(m.PackageNub))
	w.Varint(4, m.Tid)
	w.ByteField(5, m.Data)
	w.Varint(6, int64(m.DevKind))
	for _, sn := range m.MiToSn {
		w.Fixed64(7, sn)
	}
	return w.Bytes(), nil
}

type CommandResponse struct {
	ErrCode int32
}

func UnmarshalCommandResponse(data []byte) (*CommandResponse, error) {
	m := &CommandResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		if num == 1 {
			m.ErrCode = int32(varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ---- Heartbeat ----

type HeartbeatRequest struct {
	TimeYMDHMS string
	Offset     int32
	Time       int64
}

func (m *HeartbeatRequest) Marshal() ([]byte, error) {
	var w Writer
	w.String(1, m.TimeYMDHMS)
	w.Varint(2, int64(m.Offset))
	w.Varint(3, m.Time)
	return w.Bytes(), nil
}

type HeartbeatResponse struct {
	Raw []byte
}

func UnmarshalHeartbeatResponse(data []byte) (*HeartbeatResponse, error) {
	return &HeartbeatResponse{Raw: data}, nil
}

// ---- Information data (legacy, same command id as app info data) ----

type InfoDataRequest struct {
	TimeYMDHMS string
	Offset     int32
	Time       int64
}

func (m *InfoDataRequest) Marshal() ([]byte, error) {
	var w Writer
	w.String(1, m.TimeYMDHMS)
	w.Varint(2, int64(m.Offset))
	w.Varint(3, m.Time)
	return w.Bytes(), nil
}

type InfoDataResponse struct {
	DtuInfo DTUInfo
	PvInfo  []PVInfo
}

func UnmarshalInfoDataResponse(data []byte) (*InfoDataResponse, error) {
	resp, err := UnmarshalAppInfoDataResponse(data)
	if err != nil {
		return nil, err
	}
	return &InfoDataResponse{DtuInfo: resp.DtuInfo, PvInfo: resp.PvInfo}, nil
}

// ---- Extended-frame commands ----

type GatewayInfoRequest struct{}

func (m *GatewayInfoRequest) Marshal() ([]byte, error) { return nil, nil }

type GatewayInfoResponse struct {
	HardwareVersion uint32
	SoftwareVersion uint32
}

func UnmarshalGatewayInfoResponse(data []byte) (*GatewayInfoResponse, error) {
	m := &GatewayInfoResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		switch num {
		case 1:
			m.HardwareVersion = uint32(varint)
		case 2:
			m.SoftwareVersion = uint32(varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

type GatewayNetInfoRequest struct{}

func (m *GatewayNetInfoRequest) Marshal() ([]byte, error) { return nil, nil }

type GatewayNetInfoResponse struct {
	SSID string
	IP   string
}

func UnmarshalGatewayNetInfoResponse(data []byte) (*GatewayNetInfoResponse, error) {
	m := &GatewayNetInfoResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		switch num {
		case 1:
			m.SSID = string(raw)
		case 2:
			m.IP = string(raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ESRegistryRequest requests the set of batteries known to the energy
// storage subsystem.
type ESRegistryRequest struct{}

func (m *ESRegistryRequest) Marshal() ([]byte, error) { return nil, nil }

type ESRegistryResponse struct {
	BatterySerials []uint64
}

func UnmarshalESRegistryResponse(data []byte) (*ESRegistryResponse, error) {
	m := &ESRegistryResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		if num == 1 {
			m.BatterySerials = append(m.BatterySerials, fixed64(raw))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

type ESDataRequest struct{}

func (m *ESDataRequest) Marshal() ([]byte, error) { return nil, nil }

type ESDataResponse struct {
	StateOfChargePercent uint32
	VoltageMillivolts    uint32
	CurrentMilliamps     int32
}

func UnmarshalESDataResponse(data []byte) (*ESDataResponse, error) {
	m := &ESDataResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		switch num {
		case 1:
			m.StateOfChargePercent = uint32(varint)
		case 2:
			m.VoltageMillivolts = uint32(varint)
		case 3:
			m.CurrentMilliamps = int32(varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// WorkingMode is a BMS working mode (Glossary): one of self-consumption,
// economic, backup, off-grid, force-charge, force-discharge, peak-shaving,
// time-of-use, numbered 1..8.
type WorkingMode int32

const (
	WorkingModeSelfConsumption WorkingMode = 1
	WorkingModeEconomic        WorkingMode = 2
	WorkingModeBackup          WorkingMode = 3
	WorkingModeOffGrid         WorkingMode = 4
	WorkingModeForceCharge     WorkingMode = 5
	WorkingModeForceDischarge  WorkingMode = 6
	WorkingModePeakShaving     WorkingMode = 7
	WorkingModeTimeOfUse       WorkingMode = 8
)

// TariffType is used in economic-mode time ranges (Glossary).
type TariffType int32

const (
	TariffPeak        TariffType = 1
	TariffOffPeak     TariffType = 2
	TariffPartialPeak TariffType = 3
)

// ESUserSetRequest writes the battery's working mode.
type ESUserSetRequest struct {
	WorkingMode WorkingMode
	TariffType  TariffType
}

func (m *ESUserSetRequest) Marshal() ([]byte, error) {
	var w Writer
	w.Varint(1, int64(m.WorkingMode))
	w.Varint(2, int64(m.TariffType))
	return w.Bytes(), nil
}

type ESUserSetResponse struct {
	ErrCode int32
}

func UnmarshalESUserSetResponse(data []byte) (*ESUserSetResponse, error) {
	m := &ESUserSetResponse{}
	r := NewReader(data)
	err := r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
		if num == 1 {
			m.ErrCode = int32(varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
