package main

import (
	"context"
	"fmt"
	"net"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/benthiclabs/glf/pkg/glf"
)

func statusCmd() *cli.Command {
	var (
		statusLimit int
		asJSON      bool
	)

	return &cli.Command{
		Name:  "status",
		Usage: "Dump sonar status records from a GLF log",
		Flags: append([]cli.Flag{
			fileFlag(),
			&cli.IntFlag{Name: "limit", Usage: "limit status listing (0 = no limit)", Value: 50, Destination: &statusLimit},
			&cli.BoolFlag{Name: "json", Usage: "emit status records as JSON", Destination: &asJSON},
		}, loggingFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			applyLoggingConfig(c, LoadConfig())
			log := buildLogger()

			doc, err := openDocument(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = doc.Close() }()

			n := doc.StatusCount()
			if n == 0 {
				fmt.Println("(no status records)")
				return nil
			}

			if asJSON {
				return printStatusJSON(doc, statusLimit)
			}

			printed := 0
			for i := 0; i < n; i++ {
				st, err := doc.Status(i)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				printStatus(i, st)
				printed++
				if statusLimit > 0 && printed >= statusLimit {
					break
				}
			}
			if statusLimit > 0 && printed < n {
				fmt.Printf("... (%d shown of %d)\n", printed, n)
			}
			return nil
		},
	}
}

func printStatus(i int, st *glf.StatusRecord) {
	section(fmt.Sprintf("Status %d", i))
	row("time", st.Header.Time().Format("2006-01-02 15:04:05.000"))
	row("device", fmt.Sprintf("%d", st.DeviceID))
	row("bf_version", fmt.Sprintf("%d", st.BFVersion))
	row("da_version", fmt.Sprintf("%d", st.DAVersion))
	row("fpga_temp", fmt.Sprintf("%.1f C", st.FPGATemp))
	row("psu_temp", fmt.Sprintf("%.1f C", st.PSUTemp))
	row("die_temp", fmt.Sprintf("%.1f C", st.DieTemp))
	row("tx_temp", fmt.Sprintf("%.1f C", st.TxTemp))
	row("transducer_temp", fmt.Sprintf("%.1f C", st.TransducerTemp))
	row("link", fmt.Sprintf("type=%d quality=%d up=%.1f down=%.1f", st.LinkType, st.LinkQuality, st.UplinkSpeed, st.DownlinkSpeed))
	row("packets", fmt.Sprintf("rx=%d err=%d resent=%d dropped=%d", st.PacketCount, st.RecvErrorCount, st.ResentPacketCount, st.DroppedPacketCount))
	row("mac", net.HardwareAddr(st.MACAddress[:]).String())
	row("subnet", fmt.Sprintf("%d.%d.%d.%d", st.SubnetMask[0], st.SubnetMask[1], st.SubnetMask[2], st.SubnetMask[3]))
	if st.ShutdownStatus != 0 {
		row("shutdown", shutdownReason(st.ShutdownStatus))
	}
	row("net_adapter", fmt.Sprintf("%v", st.NetAdapterFound))
}

// shutdownReason decodes the shutdown status bits: bit 0 over-temperature,
// bit 1 out of water, bit 2 out-of-water indicator.
func shutdownReason(code uint16) string {
	var parts []string
	if code&1 != 0 {
		parts = append(parts, "over-temperature")
	}
	if code&2 != 0 {
		parts = append(parts, "out-of-water")
	}
	if code&4 != 0 {
		parts = append(parts, "out-of-water-indicator")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("code %d", code)
	}
	return strings.Join(parts, ", ")
}

func printStatusJSON(doc *glf.Document, limit int) error {
	type status struct {
		Index    int     `json:"index"`
		Time     string  `json:"time"`
		DeviceID uint16  `json:"device_id"`
		FPGATemp float64 `json:"fpga_temp"`
		PSUTemp  float64 `json:"psu_temp"`
		DieTemp  float64 `json:"die_temp"`
		TxTemp   float64 `json:"tx_temp"`
		Link     uint16  `json:"link_quality"`
		Shutdown uint16  `json:"shutdown_status"`
	}
	n := doc.StatusCount()
	out := make([]status, 0, n)
	for i := 0; i < n; i++ {
		st, err := doc.Status(i)
		if err != nil {
			return err
		}
		out = append(out, status{
			Index:    i,
			Time:     st.Header.Time().Format("2006-01-02T15:04:05.000Z07:00"),
			DeviceID: st.DeviceID,
			FPGATemp: st.FPGATemp,
			PSUTemp:  st.PSUTemp,
			DieTemp:  st.DieTemp,
			TxTemp:   st.TxTemp,
			Link:     st.LinkQuality,
			Shutdown: st.ShutdownStatus,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
