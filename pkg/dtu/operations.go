package dtu

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/suaveolent/hoymiles-wifi/pkg/dtu/schema"
)

// Action codes carried in a generic/cloud command payload's Action field.
// The device-side IDL file set is the authority for these; values are
// assigned distinct small integers in the absence of that file set, the
// same way the command ids in catalog.go are.
const (
	actionLimitPower int32 = 1
	actionAlarmList  int32 = 2
	actionDTUUpgrade int32 = 10
	actionDTUReboot  int32 = 11
	actionMIStart    int32 = 20
	actionMIShutdown int32 = 21
)

// nowFields returns the current time in the two forms every request
// schema populates (§4.5): epoch seconds, and a "YYYY-MM-DD HH:MM:SS"
// ASCII string.
func nowFields() (epoch int64, ymdhms string) {
	t := time.Now()
	return t.Unix(), t.Format("2006-01-02 15:04:05")
}

// call looks up cmdID's descriptor and performs one round trip.
func (c *Client) call(ctx context.Context, cmdID uint16, payload []byte) ([]byte, error) {
	desc, ok := catalog[cmdID]
	if !ok {
		return nil, fmt.Errorf("dtu: unknown command id %04x", cmdID)
	}
	return c.roundTrip(ctx, roundTripRequest{descriptor: desc, payload: payload})
}

// callExtended is like call but for extended-frame commands, where the
// caller controls the "number" parameter (§4.5).
func (c *Client) callExtended(ctx context.Context, cmdID uint16, number uint16, payload []byte) ([]byte, error) {
	desc, ok := catalog[cmdID]
	if !ok {
		return nil, fmt.Errorf("dtu: unknown command id %04x", cmdID)
	}
	return c.roundTrip(ctx, roundTripRequest{descriptor: desc, payload: payload, number: number})
}

// GetRealData reads live telemetry via the original (non-paginated) schema.
func (c *Client) GetRealData(ctx context.Context) (*schema.RealDataResponse, error) {
	epoch, ymdhms := nowFields()
	req := &schema.RealDataRequest{TimeYMDHMS: ymdhms, Time: epoch, Offset: timezoneOffsetSeconds}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, cmdRealDataResDTO, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalRealDataResponse(resp)
}

// GetRealDataNew reads live telemetry via the paginated schema, assembling
// all pages before returning (§4.4).
func (c *Client) GetRealDataNew(ctx context.Context) (*schema.RealDataNewResponse, error) {
	epoch, ymdhms := nowFields()

	fetch := func(ctx context.Context, cp int32) (*schema.RealDataNewResponse, error) {
		req := &schema.RealDataNewRequest{TimeYMDHMS: ymdhms, Offset: timezoneOffsetSeconds, Time: epoch, Cp: cp}
		payload, err := req.Marshal()
		if err != nil {
			return nil, err
		}
		resp, err := c.call(ctx, cmdRealResDTO, payload)
		if err != nil {
			return nil, err
		}
		return schema.UnmarshalRealDataNewResponse(resp)
	}
	pages := func(r *schema.RealDataNewResponse) (int32, int32) { return r.Ap, r.Cp }

	return paginate(ctx, fetch, pages, schema.MergeRealDataNewResponse)
}

// GetConfig reads the device's current configuration. The request
// timestamp is backdated by 60 seconds, matching
// original_source/hoymiles_wifi/dtu.py's async_get_config.
func (c *Client) GetConfig(ctx context.Context) (*schema.GetConfigResponse, error) {
	epoch, _ := nowFields()
	req := &schema.GetConfigRequest{Offset: timezoneOffsetSeconds, Time: epoch - 60}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, cmdGetConfig, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalGetConfigResponse(resp)
}

// setConfig reads the current configuration, lets mutate override the
// fields that are changing, and writes the whole set back (§4.5's
// read-modify-write convention, preserved from initialize_set_config).
func (c *Client) setConfig(ctx context.Context, mutate func(*schema.SetConfigRequest)) error {
	current, err := c.GetConfig(ctx)
	if err != nil {
		return err
	}
	req := schema.NewSetConfigRequest(current)
	mutate(req)

	epoch, _ := nowFields()
	req.Time = epoch
	req.Offset = timezoneOffsetSeconds

	payload, err := req.Marshal()
	if err != nil {
		return err
	}
	_, err = c.call(ctx, cmdSetConfig, payload)
	return err
}

// SetWiFi changes the device's upstream WiFi credentials, leaving every
// other configuration field untouched.
func (c *Client) SetWiFi(ctx context.Context, ssid, password string) error {
	return c.setConfig(ctx, func(r *schema.SetConfigRequest) {
		r.WifiSSID = []byte(ssid)
		r.WifiPassword = []byte(password)
	})
}

// GetNetworkInfo reads the device's current network configuration.
func (c *Client) GetNetworkInfo(ctx context.Context) (*schema.NetworkInfoResponse, error) {
	epoch, _ := nowFields()
	req := &schema.NetworkInfoRequest{Offset: timezoneOffsetSeconds, Time: epoch}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, cmdNetworkInfoRes, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalNetworkInfoResponse(resp)
}

// GetAppInfoData reads DTU/inverter hardware and software version info,
// including the encryption-capability bit used to decide whether a
// follow-up encrypted session makes sense (Glossary: EncRand).
func (c *Client) GetAppInfoData(ctx context.Context) (*schema.AppInfoDataResponse, error) {
	epoch, ymdhms := nowFields()
	req := &schema.AppInfoDataRequest{TimeYMDHMS: ymdhms, Offset: timezoneOffsetSeconds, Time: epoch}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, cmdAppInfoDataResDTO, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalAppInfoDataResponse(resp)
}

// GetInformationData is the legacy counterpart to GetAppInfoData: the
// original implementation's async_get_information_data issues the same
// CMD_APP_INFO_DATA_RES_DTO command under a distinct method name and
// response type alias (InfoDataResDTO vs. APPInfoDataResDTO), rather than
// a different command id.
func (c *Client) GetInformationData(ctx context.Context) (*schema.InfoDataResponse, error) {
	epoch, ymdhms := nowFields()
	req := &schema.InfoDataRequest{TimeYMDHMS: ymdhms, Offset: timezoneOffsetSeconds, Time: epoch}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, cmdAppInfoDataResDTO, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalInfoDataResponse(resp)
}

// GetHistoricalPower reads paginated historical power production for the
// given requested day (a small integer offset from today, device-defined).
func (c *Client) GetHistoricalPower(ctx context.Context, requestedDay int32) (*schema.AppGetHistPowerResponse, error) {
	epoch, _ := nowFields()

	fetch := func(ctx context.Context, cp int32) (*schema.AppGetHistPowerResponse, error) {
		req := &schema.AppGetHistPowerRequest{
			ControlPoint:  cp,
			Offset:        timezoneOffsetSeconds,
			RequestedTime: epoch,
			RequestedDay:  requestedDay,
		}
		payload, err := req.Marshal()
		if err != nil {
			return nil, err
		}
		resp, err := c.call(ctx, cmdAppGetHistPowerRes, payload)
		if err != nil {
			return nil, err
		}
		return schema.UnmarshalAppGetHistPowerResponse(resp)
	}
	pages := func(r *schema.AppGetHistPowerResponse) (int32, int32) { return r.Ap, r.Cp }

	return paginate(ctx, fetch, pages, schema.MergeAppGetHistPowerResponse)
}

// SetPowerLimit caps inverter output at percent (0..100) of rated power.
// percent is validated synchronously; out-of-range values never reach the
// wire (§7 Validation).
func (c *Client) SetPowerLimit(ctx context.Context, percent int) (*schema.CommandResponse, error) {
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("%w: power_limit %d out of range [0,100]", ErrValidation, percent)
	}
	epoch, _ := nowFields()
	req := &schema.CommandRequest{
		Time:       epoch,
		Action:     actionLimitPower,
		PackageNub: 1,
		Tid:        epoch,
		Data:       []byte(fmt.Sprintf("A:%d,B:0,C:0\r", percent*10)),
	}
	return c.sendCommand(ctx, cmdCommandResDTO, req)
}

// GetAlarmList requests the device's current alarm list via the generic
// command schema.
func (c *Client) GetAlarmList(ctx context.Context) (*schema.CommandResponse, error) {
	epoch, _ := nowFields()
	req := &schema.CommandRequest{Time: epoch, Action: actionAlarmList, Tid: epoch}
	return c.sendCommand(ctx, cmdCommandResDTO, req)
}

// UpgradeFirmware triggers a firmware update from url. If url is empty,
// the hard-coded default is used (§6). The trailing carriage return is
// preserved per §9's open-question resolution.
func (c *Client) UpgradeFirmware(ctx context.Context, url string) (*schema.CommandResponse, error) {
	if url == "" {
		url = defaultFirmwareURL
	}
	epoch, _ := nowFields()
	req := &schema.CommandRequest{
		Time:   epoch,
		Action: actionDTUUpgrade,
		Tid:    epoch,
		Data:   []byte(url + "\r"),
	}
	return c.sendCommand(ctx, cmdCloudCommandResDTO, req)
}

// Reboot power-cycles the DTU gateway.
func (c *Client) Reboot(ctx context.Context) (*schema.CommandResponse, error) {
	epoch, _ := nowFields()
	req := &schema.CommandRequest{Time: epoch, Action: actionDTUReboot, Tid: epoch}
	return c.sendCommand(ctx, cmdCloudCommandResDTO, req)
}

// parseInverterSerial converts the caller-facing hex serial string (e.g.
// "114172123456") to the wire's 64-bit unsigned integer form (§6).
func parseInverterSerial(hex string) (uint64, error) {
	sn, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid inverter serial %q: %v", ErrValidation, hex, err)
	}
	return sn, nil
}

// StartInverter turns a specific micro-inverter back on.
func (c *Client) StartInverter(ctx context.Context, serialHex string) (*schema.CommandResponse, error) {
	sn, err := parseInverterSerial(serialHex)
	if err != nil {
		return nil, err
	}
	epoch, _ := nowFields()
	req := &schema.CommandRequest{Time: epoch, Action: actionMIStart, Tid: epoch, MiToSn: []uint64{sn}}
	return c.sendCommand(ctx, cmdCloudCommandResDTO, req)
}

// ShutdownInverter turns a specific micro-inverter off.
func (c *Client) ShutdownInverter(ctx context.Context, serialHex string) (*schema.CommandResponse, error) {
	sn, err := parseInverterSerial(serialHex)
	if err != nil {
		return nil, err
	}
	epoch, _ := nowFields()
	req := &schema.CommandRequest{Time: epoch, Action: actionMIShutdown, Tid: epoch, MiToSn: []uint64{sn}}
	return c.sendCommand(ctx, cmdCloudCommandResDTO, req)
}

func (c *Client) sendCommand(ctx context.Context, cmdID uint16, req *schema.CommandRequest) (*schema.CommandResponse, error) {
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, cmdID, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalCommandResponse(resp)
}

// Heartbeat keeps the session alive from the caller's perspective; the
// device replies with a minimal acknowledgement (§8 S1).
func (c *Client) Heartbeat(ctx context.Context) (*schema.HeartbeatResponse, error) {
	epoch, ymdhms := nowFields()
	req := &schema.HeartbeatRequest{TimeYMDHMS: ymdhms, Offset: timezoneOffsetSeconds, Time: epoch}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, cmdHBResDTO, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalHeartbeatResponse(resp)
}

// GetGatewayInfo reads gateway hardware/software version info over an
// extended frame (§6 S6: "number" = 255, DTU serial unknown on a fresh
// session).
func (c *Client) GetGatewayInfo(ctx context.Context) (*schema.GatewayInfoResponse, error) {
	req := &schema.GatewayInfoRequest{}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.callExtended(ctx, cmdGWInfoResDTO, 0, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalGatewayInfoResponse(resp)
}

// GetGatewayNetInfo reads the gateway's network configuration over an
// extended frame.
func (c *Client) GetGatewayNetInfo(ctx context.Context) (*schema.GatewayNetInfoResponse, error) {
	req := &schema.GatewayNetInfoRequest{}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.callExtended(ctx, cmdGWNetInfoRes, 0, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalGatewayNetInfoResponse(resp)
}

// GetESRegistry reads the set of batteries registered with the energy
// storage subsystem.
func (c *Client) GetESRegistry(ctx context.Context) (*schema.ESRegistryResponse, error) {
	req := &schema.ESRegistryRequest{}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.callExtended(ctx, cmdESRegResDTO, 0, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalESRegistryResponse(resp)
}

// GetESData reads battery telemetry (state of charge, voltage, current).
func (c *Client) GetESData(ctx context.Context) (*schema.ESDataResponse, error) {
	req := &schema.ESDataRequest{}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.callExtended(ctx, cmdESDataDTO, 0, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalESDataResponse(resp)
}

// SetESWorkingMode writes the battery's BMS working mode and, for
// economic mode, the tariff type used to pick time ranges (Glossary).
func (c *Client) SetESWorkingMode(ctx context.Context, mode schema.WorkingMode, tariff schema.TariffType) (*schema.ESUserSetResponse, error) {
	if mode < schema.WorkingModeSelfConsumption || mode > schema.WorkingModeTimeOfUse {
		return nil, fmt.Errorf("%w: working mode %d out of range [1,8]", ErrValidation, mode)
	}
	req := &schema.ESUserSetRequest{WorkingMode: mode, TariffType: tariff}
	payload, err := req.Marshal()
	if err != nil {
		return nil, err
	}
	resp, err := c.callExtended(ctx, cmdESUserSetResDTO, 0, payload)
	if err != nil {
		return nil, err
	}
	return schema.UnmarshalESUserSetResponse(resp)
}
