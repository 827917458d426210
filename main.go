package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

const version = "1.00"

var ErrMissingFilename = errors.New("expecting a filename")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Diagnostics share stdout with the listing.
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := DefaultOptions()
	var patch string

	cmd := &cobra.Command{
		Use:   "dx7dump [flags] filename",
		Short: "Yamaha DX7 Sysex Dump",
		Long: `dx7dump formats a Yamaha DX7 32-voice bulk dump as human readable text.
The long listing is meant to be compared with diff.

Examples:
  dx7dump rom1a.syx
  dx7dump -l rom1a.syx
  dx7dump -f -o json rom1a.syx

A bank file named like a subcommand (help, receive, mcp) has to be
given with a path, e.g. ./help.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("patch") {
				n, err := cast.ToIntE(patch)
				if err != nil {
					return errors.Wrapf(err, "invalid patch number %q", patch)
				}
				opts.Patch = n
				opts.Long = true
			}
			if len(args) == 0 {
				return ErrMissingFilename
			}
			return runDump(cmd, args[0], opts)
		},
	}
	cmd.SetVersionTemplate("dx7dump {{.Version}}\nYamaha DX7 Sysex Dump\nCopyright 2012, Ted Felix (GPLv3+)\n")
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Errorf("Unexpected option (%v).  Try -h for help.", err)
	})

	f := cmd.Flags()
	f.BoolVarP(&opts.Long, "long", "l", false, "long listing")
	f.BoolVarP(&opts.FindDupes, "find-dupes", "f", false, "find duplicate patches")
	f.StringVarP(&patch, "patch", "p", "", "display patch x (implies --long)")
	f.StringVarP(&opts.Format, "format", "o", FormatText, "output format: text, json or yaml")
	f.StringVarP(&opts.ExportDir, "export-dir", "e", "", "also write one file per voice into this directory")

	cmd.AddCommand(newReceiveCmd(), newMCPCmd())
	return cmd
}

func runDump(cmd *cobra.Command, filename string, opts Options) error {
	bank, err := ReadBankFile(filename)
	if err != nil {
		return err
	}
	if err := Verify(bank); err != nil {
		return err
	}
	return emit(cmd, filename, bank, opts)
}

func emit(cmd *cobra.Command, filename string, bank *Bank, opts Options) error {
	if err := Render(cmd.OutOrStdout(), filename, bank, opts); err != nil {
		return err
	}
	if opts.ExportDir != "" {
		format := opts.Format
		if format == FormatText {
			format = FormatJSON
		}
		if _, err := ExportVoices(opts.ExportDir, bank, format); err != nil {
			return err
		}
	}
	return nil
}

func newReceiveCmd() *cobra.Command {
	opts := DefaultOptions()
	var (
		portName string
		channel  uint8
		request  bool
		timeout  time.Duration
		savePath string
	)

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Capture a bulk dump from a MIDI input and decode it",
		Long: `Listen on a MIDI input port for a 32-voice bulk dump, verify it and
print it like a bank file. With --request a dump request is sent first,
otherwise start the transfer on the instrument.

Example:
  dx7dump receive --port dx7 --request --save bank.syx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if channel < 1 || channel > 16 {
				return errors.Errorf("channel must be in range 1-16, got %d", channel)
			}

			defer midi.CloseDriver()

			inIdx, err := findInPort(portName)
			if err != nil {
				return err
			}

			var req func() error
			if request {
				outIdx, err := findOutPort(portName)
				if err != nil {
					return err
				}
				port, closer, err := OpenDX7Port(channel, outIdx)
				if err != nil {
					return errors.Wrap(err, "failed to open MIDI output")
				}
				defer closer()
				req = port.RequestBank
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			data, err := ReceiveBank(ctx, midi.GetInPorts()[inIdx], req)
			if err != nil {
				return err
			}

			if savePath != "" {
				if err := os.WriteFile(savePath, data, 0o644); err != nil {
					return errors.Wrapf(err, "saving %s", savePath)
				}
			}

			bank, err := ParseBank(clearChannel(data))
			if err != nil {
				return err
			}
			if err := Verify(bank); err != nil {
				return err
			}
			return emit(cmd, savePath, bank, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&portName, "port", "dx7", "part of the MIDI port name")
	f.Uint8Var(&channel, "channel", 1, "MIDI channel of the instrument (1-16)")
	f.BoolVar(&request, "request", false, "send a bulk dump request")
	f.DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the dump")
	f.StringVar(&savePath, "save", "", "write the received dump to this file")
	f.BoolVarP(&opts.Long, "long", "l", false, "long listing")
	f.BoolVarP(&opts.FindDupes, "find-dupes", "f", false, "find duplicate patches")
	f.StringVarP(&opts.Format, "format", "o", FormatText, "output format: text, json or yaml")
	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the decoder as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP()
		},
	}
}

func findOutPort(nameFragment string) (int, error) {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return -1, errors.New("no MIDI outputs available")
	}

	lower := strings.ToLower(nameFragment)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), lower) {
			return out.Number(), nil
		}
	}

	return -1, errors.Errorf("no MIDI output contains %q", nameFragment)
}

func findInPort(nameFragment string) (int, error) {
	ins := midi.GetInPorts()
	if len(ins) == 0 {
		return -1, errors.New("no MIDI inputs available")
	}

	lower := strings.ToLower(nameFragment)
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), lower) {
			return in.Number(), nil
		}
	}

	return -1, errors.Errorf("no MIDI input contains %q", nameFragment)
}
