package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/suaveolent/hoymiles-wifi/pkg/dtu"
	"github.com/suaveolent/hoymiles-wifi/pkg/dtu/schema"
)

// persistent flags shared by every subcommand (spec.md §6).
var (
	flagHost               string
	flagLocalAddr          string
	flagAsJSON             bool
	flagDisableInteractive bool
)

// noResponseErr marks a failure that reached the device transport and got
// nothing back, as opposed to a usage/validation error caught before any
// I/O happened. main() uses it to pick spec.md §6's exit code 2.
type noResponseErr struct{ err error }

func (e *noResponseErr) Error() string { return e.err.Error() }
func (e *noResponseErr) Unwrap() error { return e.err }

func isNoResponseErr(err error) bool {
	var nre *noResponseErr
	return errors.As(err, &nre)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hoymiles-wifi",
		Short:         "Talk to a Hoymiles/solar DTU gateway over its local TCP protocol",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&flagHost, "host", "", "DTU host (IPv4 or hostname)")
	root.PersistentFlags().StringVar(&flagLocalAddr, "local-addr", "", "local address to bind the outbound connection to")
	root.PersistentFlags().BoolVar(&flagAsJSON, "as-json", false, "print results as JSON")
	root.PersistentFlags().BoolVar(&flagDisableInteractive, "disable-interactive", false, "skip confirmation prompts for destructive operations")

	root.AddCommand(
		realDataCmd(),
		realDataNewCmd(),
		getConfigCmd(),
		setWiFiCmd(),
		networkInfoCmd(),
		appInfoDataCmd(),
		informationDataCmd(),
		histPowerCmd(),
		setPowerLimitCmd(),
		alarmListCmd(),
		firmwareUpdateCmd(),
		restartCmd(),
		turnOnInverterCmd(),
		turnOffInverterCmd(),
		heartbeatCmd(),
		gatewayInfoCmd(),
		gatewayNetInfoCmd(),
		esRegistryCmd(),
		esDataCmd(),
		esWorkingModeCmd(),
	)

	return root
}

// newClient builds a *dtu.Client from the persistent flags, requiring
// --host.
func newClient() (*dtu.Client, error) {
	if flagHost == "" {
		return nil, errors.New("--host is required")
	}
	opts := []dtu.ClientOption{dtu.WithLogger(slog.Default())}
	if flagLocalAddr != "" {
		opts = append(opts, dtu.WithLocalAddr(flagLocalAddr))
	}
	return dtu.NewClient(flagHost, opts...)
}

// printResult renders v either as JSON (--as-json) or via fmt.Printf's
// default struct formatting, matching the teacher's plain-text default.
func printResult(v any) {
	if flagAsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(v)
		return
	}
	fmt.Printf("%+v\n", v)
}

// confirm asks the user to answer "y" or "yes" before a destructive operation,
// following original_source/hoymiles_wifi/__main__.py's confirm-before-danger
// flow. Skipped entirely when --disable-interactive is set.
func confirm(action string) bool {
	if flagDisableInteractive {
		return true
	}
	fmt.Printf("%s. Continue? [y/N] ", action)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	switch line {
	case "y\n", "Y\n", "yes\n":
		return true
	default:
		return false
	}
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func wrapTransport(err error) error {
	if err == nil {
		return nil
	}
	return &noResponseErr{err: err}
}

func realDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "real-data",
		Short: "Read live telemetry (legacy non-paginated schema)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetRealData(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func realDataNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "real-data-new",
		Short: "Read live telemetry (paginated schema)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetRealDataNew(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func getConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-config",
		Short: "Read device configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetConfig(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func setWiFiCmd() *cobra.Command {
	var ssid, password string
	cmd := &cobra.Command{
		Use:   "set-wifi",
		Short: "Change the device's upstream WiFi credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ssid == "" {
				return errors.New("--ssid is required")
			}
			if !confirm(fmt.Sprintf("This will rewrite the device's WiFi credentials to %q", ssid)) {
				fmt.Println("Aborted.")
				return nil
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			if err := c.SetWiFi(ctx, ssid, password); err != nil {
				return wrapTransport(err)
			}
			fmt.Println("WiFi credentials updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&ssid, "ssid", "", "new WiFi SSID")
	cmd.Flags().StringVar(&password, "password", "", "new WiFi password")
	return cmd
}

func networkInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "network-info",
		Short: "Read the device's current network configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetNetworkInfo(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func appInfoDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "app-info-data",
		Short: "Read DTU/inverter hardware and software version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetAppInfoData(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func informationDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "information-data",
		Short: "Read DTU/inverter version info via the legacy information-data alias",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetInformationData(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func histPowerCmd() *cobra.Command {
	var requestedDay int
	cmd := &cobra.Command{
		Use:   "historical-power",
		Short: "Read paginated historical power production for a given day offset",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetHistoricalPower(ctx, int32(requestedDay))
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
	cmd.Flags().IntVar(&requestedDay, "day", 0, "day offset from today (device-defined)")
	return cmd
}

func setPowerLimitCmd() *cobra.Command {
	var percent int
	cmd := &cobra.Command{
		Use:   "set-power-limit",
		Short: "Cap inverter output at a percent of rated power (0-100)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm(fmt.Sprintf("This will cap inverter output at %d%%", percent)) {
				fmt.Println("Aborted.")
				return nil
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.SetPowerLimit(ctx, percent)
			if err != nil {
				if errors.Is(err, dtu.ErrValidation) {
					return err
				}
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
	cmd.Flags().IntVar(&percent, "percent", 100, "power limit percent, 0-100")
	return cmd
}

func alarmListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alarm-list",
		Short: "Request the device's current alarm list",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetAlarmList(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func firmwareUpdateCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "firmware-update",
		Short: "Trigger a firmware update from a URL (defaults to the built-in image)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm("This will trigger a firmware update on the device") {
				fmt.Println("Aborted.")
				return nil
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.UpgradeFirmware(ctx, url)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "firmware image URL (default: built-in Hoymiles URL)")
	return cmd
}

func restartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Power-cycle the DTU gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm("This will reboot the DTU gateway") {
				fmt.Println("Aborted.")
				return nil
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.Reboot(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func turnOnInverterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "turn-on [serial-hex]",
		Short: "Turn a specific micro-inverter back on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm(fmt.Sprintf("This will turn on inverter %s", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.StartInverter(ctx, args[0])
			if err != nil {
				if errors.Is(err, dtu.ErrValidation) {
					return err
				}
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
	return cmd
}

func turnOffInverterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "turn-off [serial-hex]",
		Short: "Turn a specific micro-inverter off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm(fmt.Sprintf("This will turn off inverter %s", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.ShutdownInverter(ctx, args[0])
			if err != nil {
				if errors.Is(err, dtu.ErrValidation) {
					return err
				}
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
	return cmd
}

func heartbeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat",
		Short: "Send a heartbeat and report the decoded reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.Heartbeat(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func gatewayInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gateway-info",
		Short: "Read gateway hardware/software version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetGatewayInfo(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func gatewayNetInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gateway-net-info",
		Short: "Read the gateway's network configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetGatewayNetInfo(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func esRegistryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "es-registry",
		Short: "Read the set of batteries registered with the energy storage subsystem",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetESRegistry(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func esDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "es-data",
		Short: "Read battery telemetry (state of charge, voltage, current)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.GetESData(ctx)
			if err != nil {
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
}

func esWorkingModeCmd() *cobra.Command {
	var mode int
	var tariff int
	cmd := &cobra.Command{
		Use:   "es-working-mode",
		Short: "Set the battery's BMS working mode (1-8)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm(fmt.Sprintf("This will set the battery working mode to %d", mode)) {
				fmt.Println("Aborted.")
				return nil
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout()
			defer cancel()
			resp, err := c.SetESWorkingMode(ctx, schema.WorkingMode(mode), schema.TariffType(tariff))
			if err != nil {
				if errors.Is(err, dtu.ErrValidation) {
					return err
				}
				return wrapTransport(err)
			}
			printResult(resp)
			return nil
		},
	}
	cmd.Flags().IntVar(&mode, "mode", 1, "BMS working mode, 1-8 (self-consumption, economic, backup, off-grid, force-charge, force-discharge, peak-shaving, time-of-use)")
	cmd.Flags().IntVar(&tariff, "tariff", 1, "tariff type for economic mode, 1-3 (peak, off-peak, partial-peak)")
	return cmd
}
