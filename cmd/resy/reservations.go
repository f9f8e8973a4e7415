package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/brizzai/resy-client/internal/models"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showPast     bool
	showUpcoming bool
	outputFormat string
)

var reservationsCmd = &cobra.Command{
	Use:     "reservations",
	Aliases: []string{"res"},
	Short:   "List your reservations",
	Args:    cobra.NoArgs,
	RunE:    runReservations,
}

func init() {
	reservationsCmd.Flags().BoolVar(&showPast, "past", false, "Only reservations before today")
	reservationsCmd.Flags().BoolVar(&showUpcoming, "upcoming", false, "Only reservations from today on")
	reservationsCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table|json)")
	reservationsCmd.MarkFlagsMutuallyExclusive("past", "upcoming")
}

func runReservations(cmd *cobra.Command, args []string) error {
	if outputFormat != "table" && outputFormat != "json" {
		return fmt.Errorf("unsupported output format %q (table|json)", outputFormat)
	}

	_, agg, err := clientComponents(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var (
		resp  *models.ReservationsResponse
		title string
	)
	switch {
	case showPast:
		title = "Past reservations"
		resp, err = agg.GetPast(ctx)
	case showUpcoming:
		title = "Upcoming reservations"
		resp, err = agg.GetUpcoming(ctx)
	default:
		title = "Reservations"
		resp, err = agg.GetReservations(ctx)
	}
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	return renderReservations(title, resp.Reservations)
}

func renderReservations(title string, list []models.Reservation) error {
	pterm.Println(titleStyle.Render(title))
	if len(list) == 0 {
		pterm.Println(mutedStyle.Render("No reservations"))
		return nil
	}

	data := pterm.TableData{{"Date", "Time", "Venue", "Party", "Status"}}
	for _, r := range list {
		venue := r.VenueName
		if venue == "" {
			venue = fmt.Sprintf("venue %d", r.VenueID)
		}
		data = append(data, []string{r.Date, r.Time, venue, fmt.Sprint(r.PartySize), renderStatus(r.Status)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
