package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Hara602/devSentry/internal/control"
	"github.com/Hara602/devSentry/internal/model"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

const enumerateTimeout = 10 * time.Second

var nameFilter string

func init() {
	cmdDevicesList.Flags().StringVar(&nameFilter, "name", "", "only show devices whose name contains this text")
	cmdDevices.AddCommand(cmdDevicesList, cmdDevicesEnable, cmdDevicesDisable)
	rootCmd.AddCommand(cmdDevices)
}

var cmdDevices = &cobra.Command{
	Use:   "devices",
	Short: "List, enable or disable USB devices",
}

var cmdDevicesList = &cobra.Command{
	Use:   "list",
	Short: "List USB devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, store, err := openControl(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " Enumerating devices..."
		spin.Start()
		filter := model.USBDevices
		filter.Name = nameFilter
		devs, err := enumerate(cmd.Context(), svc, filter)
		spin.Stop()
		if err != nil {
			return err
		}

		if len(devs) == 0 {
			fmt.Fprintln(os.Stdout, "No USB devices found")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tNAME")
		for _, d := range devs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.DeviceID, d.Kind, d.DisplayName)
		}
		return w.Flush()
	},
}

var cmdDevicesEnable = &cobra.Command{
	Use:   "enable NAME|ID",
	Short: "Enable a USB device (requires root)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggle(cmd.Context(), args[0], true)
	},
}

var cmdDevicesDisable = &cobra.Command{
	Use:   "disable NAME|ID",
	Short: "Disable a USB device (requires root)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggle(cmd.Context(), args[0], false)
	},
}

func enumerate(ctx context.Context, svc *control.Service, filter model.DeviceFilter) ([]model.DeviceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, enumerateTimeout)
	defer cancel()
	return svc.Enumerate(ctx, filter)
}

func toggle(ctx context.Context, nameOrID string, enable bool) error {
	svc, store, err := openControl(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// 查找表来自最近一次枚举
	if _, err := enumerate(ctx, svc, model.USBDevices); err != nil {
		return err
	}
	err = svc.ToggleByName(ctx, nameOrID, enable)
	switch {
	case errors.Is(err, control.ErrPermissionDenied):
		return errors.New("this operation requires administrator privileges")
	case err != nil:
		return err
	}

	verb := "disabled"
	if enable {
		verb = "enabled"
	}
	fmt.Fprintf(os.Stdout, "Device %s %s\n", nameOrID, verb)
	return nil
}
