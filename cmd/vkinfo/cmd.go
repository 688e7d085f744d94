// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/devblok/hellovk/capture"
	"github.com/devblok/hellovk/config"
	"github.com/devblok/hellovk/core"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewCLI builds the vkinfo command tree
func NewCLI() *cobra.Command {
	var (
		cfg      config.Configuration
		from     string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:   "vkinfo",
		Short: "Inspect Vulkan devices and physical device selection",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded

			log.SetOutput(cmd.ErrOrStderr())
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			log.SetLevel(cfg.LogLevel)
			if logLevel != "" {
				level, err := log.ParseLevel(logLevel)
				if err != nil {
					return err
				}
				log.SetLevel(level)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "", "log level, overrides "+config.KeyLogLevel)
	rootCmd.PersistentFlags().StringVar(&from, "from", "", "read from a capture instead of the local Vulkan implementation")

	cobra.EnableCommandSorting = false

	withHost := func(run func(cmd *cobra.Command, h host) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			h, release, err := openHost(cfg, from)
			if err != nil {
				return err
			}
			defer release()
			return run(cmd, h)
		}
	}

	var asJSON bool
	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List physical devices and whether they are suitable",
		Args:  cobra.NoArgs,
		RunE: withHost(func(cmd *cobra.Command, h host) error {
			devices, err := h.PhysicalDevices()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), devices)
			}
			writeDevices(cmd.OutOrStdout(), devices, cfg.Selector)
			return nil
		}),
	}
	devicesCmd.Flags().BoolVar(&asJSON, "json", false, "print devices as JSON")

	layersCmd := &cobra.Command{
		Use:   "layers",
		Short: "List instance layers",
		Args:  cobra.NoArgs,
		RunE: withHost(func(cmd *cobra.Command, h host) error {
			layers, err := h.InstanceLayers()
			if err != nil {
				return err
			}
			writeLines(cmd.OutOrStdout(), layers)
			return nil
		}),
	}

	extensionsCmd := &cobra.Command{
		Use:   "extensions",
		Short: "List instance extensions",
		Args:  cobra.NoArgs,
		RunE: withHost(func(cmd *cobra.Command, h host) error {
			extensions, err := h.InstanceExtensions()
			if err != nil {
				return err
			}
			writeLines(cmd.OutOrStdout(), extensions)
			return nil
		}),
	}

	selectCmd := &cobra.Command{
		Use:   "select",
		Short: "Pick a physical device the way hellovk does",
		Args:  cobra.NoArgs,
		RunE: withHost(func(cmd *cobra.Command, h host) error {
			devices, err := h.PhysicalDevices()
			if err != nil {
				return errors.Wrap(err, "failed to enumerate physical devices")
			}
			selected, err := core.PickPhysicalDevice(devices, cfg.Selector)
			if err != nil {
				return err
			}
			family, _ := selected.Queues.Graphics()
			fmt.Fprintf(cmd.OutOrStdout(), "%s, graphics queue family %d\n", selected.Device, family)
			return nil
		}),
	}

	var (
		output string
		author string
	)
	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Save the devices, layers and extensions into a capture",
		Args:  cobra.NoArgs,
		RunE: withHost(func(cmd *cobra.Command, h host) error {
			snapshot, err := capture.TakeSnapshot(h, h)
			if err != nil {
				return err
			}

			file, err := os.Create(output)
			if err != nil {
				return err
			}
			written, err := snapshot.Save(file, author)
			if err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"file":    output,
				"devices": len(snapshot.Devices),
				"bytes":   written,
			}).Info("Capture written")
			return nil
		}),
	}
	captureCmd.Flags().StringVarP(&output, "output", "o", "", "capture file to write")
	captureCmd.Flags().StringVar(&author, "author", "", "author recorded in the capture")
	captureCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(
		devicesCmd,
		layersCmd,
		extensionsCmd,
		selectCmd,
		captureCmd,
	)

	return rootCmd
}

func writeDevices(w io.Writer, devices []core.PhysicalDevice, req core.DeviceRequirements) {
	var data [][]string
	for i, pd := range devices {
		family := "-"
		if index, ok := core.FindQueueFamilies(pd.QueueFamilies).Graphics(); ok {
			family = strconv.Itoa(int(index))
		}
		suitable := "yes"
		if ok, reason := core.IsDeviceSuitable(pd, req); !ok {
			suitable = "no: " + reason
		}
		data = append(data, []string{
			strconv.Itoa(i),
			pd.Name,
			core.DeviceTypeName(pd.Type),
			strconv.FormatBool(pd.Features.GeometryShader.B()),
			family,
			suitable,
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "NAME", "TYPE", "GEOMETRY SHADER", "GRAPHICS FAMILY", "SUITABLE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

func writeLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", bytes)
	return err
}
