// fleetctl is the operator CLI: it inspects equipment catalogs and
// snapshot files offline, without touching a running simd.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/persistence/snapshot"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/catalogs"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fleetctl",
		Short: "Greenkeeper fleet inspection tool",
		Long: `Inspects greenkeeper-simulator equipment catalogs and session
snapshots without connecting to a running server.`,
	}
	rootCmd.AddCommand(templatesCmd(), reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func templatesCmd() *cobra.Command {
	var configDir string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List purchasable equipment templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := catalogs.Load(configDir)
			if err != nil {
				return err
			}

			title := color.New(color.FgCyan, color.Bold)
			title.Printf("Equipment catalog (%d templates, digest %.12s)\n\n", len(cats.Equipment.Order), cats.Equipment.Digest)

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"ID", "Name", "Tier", "Kind", "Cost", "Speed", "Autonomous", "Research"}),
			)
			for _, id := range cats.Equipment.Order {
				def := cats.Equipment.Defs[id]
				kind := "-"
				if k, ok := fleet.TypeForEquipment(id); ok {
					kind = string(k)
				}
				auto := "no"
				if def.Stats.Autonomous {
					auto = "yes"
				}
				research := "-"
				if def.ResearchCost > 0 {
					research = fmt.Sprintf("%.0f pts", def.ResearchCost)
				}
				table.Append([]string{
					def.ID,
					def.Name,
					fmt.Sprintf("%d", def.Tier),
					kind,
					fmt.Sprintf("%.0f", def.Stats.Cost),
					fmt.Sprintf("%.2f", def.Stats.Speed),
					auto,
					research,
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&configDir, "configs", "./configs", "config directory")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <snapshot.snap.zst>",
		Short: "Summarize a session snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.Read(args[0])
			if err != nil {
				return err
			}

			title := color.New(color.FgCyan, color.Bold)
			title.Printf("Session %s @ tick %d\n\n", snap.Header.SessionID, snap.Header.Tick)

			fmt.Printf("Course: %dx%d (seed %d), station (%.0f, %.0f)\n",
				snap.CourseWidth, snap.CourseHeight, snap.Seed, snap.StationX, snap.StationZ)
			fmt.Printf("Budget: %.2f\n", snap.Budget)
			fmt.Printf("Research: %.1f points, %d unlocked\n", snap.ResearchPoints, len(snap.ResearchUnlocked))
			fmt.Println()

			if len(snap.Units) == 0 {
				fmt.Println("No units in the fleet.")
				return nil
			}

			units := append([]snapshot.UnitV1(nil), snap.Units...)
			sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Unit", "Status", "Position", "Resource", "Target"}),
			)
			broken := 0
			for _, u := range units {
				target := "-"
				if u.Status == string(fleet.StatusMoving) {
					target = fmt.Sprintf("(%.1f, %.1f)", u.TargetX, u.TargetZ)
					if u.ToStation {
						target += " station"
					}
				}
				if u.Status == string(fleet.StatusBroken) {
					broken++
				}
				table.Append([]string{
					u.ID,
					statusColored(u.Status),
					fmt.Sprintf("(%.1f, %.1f)", u.X, u.Z),
					fmt.Sprintf("%.1f", u.Resource),
					target,
				})
			}
			table.Render()

			if broken > 0 {
				color.New(color.FgRed, color.Bold).Printf("\n%d unit(s) broken\n", broken)
			} else {
				color.New(color.FgGreen).Printf("\nAll %d units operational\n", len(units))
			}
			return nil
		},
	}
	return cmd
}

func statusColored(status string) string {
	switch fleet.Status(status) {
	case fleet.StatusWorking:
		return color.GreenString(status)
	case fleet.StatusMoving:
		return color.CyanString(status)
	case fleet.StatusCharging:
		return color.YellowString(status)
	case fleet.StatusBroken:
		return color.RedString(status)
	default:
		return status
	}
}
